// Package validation provides centralized input validation for command parameters.
//
// SYSTEM ARCHITECTURE ROLE:
// Every surface (CLI, HTTP, TUI) reduces user input to a parameter map before it
// reaches the command layer. This package checks those maps against named schemas,
// converts values to their declared types and reports field-level failures.
//
// INTEGRATION POINTS:
// - internal/commands/types.go: CommandExecutor validates parameters before running a command
// - internal/validation/middleware.go: HTTP middleware validates requests and stores the result in the request context
// - internal/errors/errors.go: ValidationResult.ToAppError() converts failures to AppError format
//
// VALIDATION FLOW:
// 1. Input is converted to a parameter map
// 2. Fields are checked in name order against the schema
// 3. Custom validators may reject a value with their own AppError code (INVALID_FORMAT)
// 4. Valid parameters are type-converted and returned in ValidationResult.Data
//
// BUILT-IN SCHEMAS:
// render_template, count_tokens, get_skeleton, search_traits, get_reference, export_template
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dpshade/character-template/internal/errors"
	"github.com/dpshade/character-template/internal/models"
	"github.com/dpshade/character-template/internal/tokens"
)

// FieldValidator provides validation rules for individual fields
type FieldValidator struct {
	Name      string
	Required  bool
	Type      string
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Options   []string
	Custom    func(interface{}) error
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	Valid    bool                   `json:"valid"`
	Errors   []ValidationError      `json:"errors,omitempty"`
	Warnings []ValidationWarning    `json:"warnings,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`

	cause *errors.AppError
}

// ValidationWarning represents a field validation warning
type ValidationWarning struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Schema represents a validation schema
type Schema struct {
	Name   string
	Fields map[string]FieldValidator
	Rules  []func(map[string]interface{}) error
}

// Validator provides centralized validation functionality
type Validator struct {
	schemas map[string]*Schema
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := &Validator{
		schemas: make(map[string]*Schema),
	}

	v.registerBuiltinSchemas()

	return v
}

// RegisterSchema registers a validation schema
func (v *Validator) RegisterSchema(schema *Schema) {
	v.schemas[schema.Name] = schema
}

// HasSchema reports whether a schema is registered
func (v *Validator) HasSchema(name string) bool {
	_, ok := v.schemas[name]
	return ok
}

// Validate validates data against a schema. Parameters the schema does not
// declare are dropped from the result and reported as warnings.
func (v *Validator) Validate(schemaName string, data map[string]interface{}) *ValidationResult {
	schema, exists := v.schemas[schemaName]
	if !exists {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "schema",
				Code:    "SCHEMA_NOT_FOUND",
				Message: fmt.Sprintf("Validation schema '%s' not found", schemaName),
			}},
		}
	}

	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
		Data:     make(map[string]interface{}),
	}

	names := make([]string, 0, len(schema.Fields))
	for name := range schema.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, fieldName := range names {
		v.validateField(fieldName, schema.Fields[fieldName], data, result)
	}

	unknown := make([]string, 0)
	for key := range data {
		if _, ok := schema.Fields[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   key,
			Message: fmt.Sprintf("Unknown parameter '%s' ignored", key),
			Value:   data[key],
		})
	}

	for _, rule := range schema.Rules {
		if err := rule(result.Data); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   "schema",
				Code:    "SCHEMA_RULE_VIOLATION",
				Message: err.Error(),
			})
		}
	}

	return result
}

// validateField validates a single field
func (v *Validator) validateField(fieldName string, validator FieldValidator, data map[string]interface{}, result *ValidationResult) {
	value, exists := data[fieldName]

	if validator.Required && (!exists || value == nil || value == "") {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   fieldName,
			Code:    "REQUIRED_FIELD_MISSING",
			Message: fmt.Sprintf("Field '%s' is required", fieldName),
			cause:   errors.MissingFieldError(fieldName),
		})
		return
	}

	if !exists || value == nil {
		return
	}

	convertedValue, err := v.validateAndConvertType(fieldName, validator.Type, value)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   fieldName,
			Code:    "INVALID_TYPE",
			Message: err.Error(),
			Value:   value,
		})
		return
	}

	result.Data[fieldName] = convertedValue

	if validator.Type == "string" {
		strValue, ok := convertedValue.(string)
		if ok {
			length := len([]rune(strValue))
			if validator.MinLength > 0 && length < validator.MinLength {
				result.Valid = false
				result.Errors = append(result.Errors, ValidationError{
					Field:   fieldName,
					Code:    "MIN_LENGTH_VIOLATION",
					Message: fmt.Sprintf("Field '%s' must be at least %d characters long", fieldName, validator.MinLength),
					Value:   strValue,
				})
			}

			if validator.MaxLength > 0 && length > validator.MaxLength {
				result.Valid = false
				result.Errors = append(result.Errors, ValidationError{
					Field:   fieldName,
					Code:    "MAX_LENGTH_VIOLATION",
					Message: fmt.Sprintf("Field '%s' must be at most %d characters long", fieldName, validator.MaxLength),
					Value:   strValue,
				})
			}

			if validator.Pattern != nil && !validator.Pattern.MatchString(strValue) {
				result.Valid = false
				result.Errors = append(result.Errors, ValidationError{
					Field:   fieldName,
					Code:    "PATTERN_MISMATCH",
					Message: fmt.Sprintf("Field '%s' does not match required pattern", fieldName),
					Value:   strValue,
				})
			}

			if len(validator.Options) > 0 {
				validOption := false
				for _, option := range validator.Options {
					if strings.EqualFold(strValue, option) {
						validOption = true
						result.Data[fieldName] = option
						break
					}
				}
				if !validOption {
					result.Valid = false
					result.Errors = append(result.Errors, ValidationError{
						Field:   fieldName,
						Code:    "INVALID_OPTION",
						Message: fmt.Sprintf("Field '%s' must be one of: %s", fieldName, strings.Join(validator.Options, ", ")),
						Value:   strValue,
					})
				}
			}
		}
	}

	if validator.Custom != nil {
		if err := validator.Custom(convertedValue); err != nil {
			verr := ValidationError{
				Field:   fieldName,
				Code:    "CUSTOM_VALIDATION_FAILED",
				Message: fmt.Sprintf("Field '%s': %s", fieldName, err.Error()),
				Value:   convertedValue,
			}
			if errors.IsAppError(err) {
				verr.cause = errors.GetAppError(err)
				verr.Code = string(verr.cause.Code)
				verr.Message = fmt.Sprintf("Field '%s': %s", fieldName, verr.cause.Message)
			}
			result.Valid = false
			result.Errors = append(result.Errors, verr)
		}
	}
}

// validateAndConvertType validates and converts value to the specified type
func (v *Validator) validateAndConvertType(fieldName, expectedType string, value interface{}) (interface{}, error) {
	switch expectedType {
	case "string":
		if str, ok := value.(string); ok {
			return str, nil
		}
		return fmt.Sprintf("%v", value), nil

	case "int":
		switch val := value.(type) {
		case int:
			return val, nil
		case float64:
			return int(val), nil
		case string:
			if intVal, err := strconv.Atoi(val); err == nil {
				return intVal, nil
			}
		}
		return nil, fmt.Errorf("field '%s' must be an integer", fieldName)

	case "bool":
		switch val := value.(type) {
		case bool:
			return val, nil
		case string:
			if boolVal, err := strconv.ParseBool(val); err == nil {
				return boolVal, nil
			}
		}
		return nil, fmt.Errorf("field '%s' must be a boolean", fieldName)

	default:
		return value, nil
	}
}

// validFormat accepts "" so optional format fields may be left blank; required
// fields are rejected earlier by the Required check.
func validFormat(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	_, err := models.ParseFormat(s)
	return err
}

func validCharacterType(value interface{}) error {
	s, _ := value.(string)
	_, err := models.ParseCharacterType(s)
	return err
}

func validStrategy(value interface{}) error {
	s, _ := value.(string)
	_, err := tokens.New(s)
	return err
}

// registerBuiltinSchemas registers the command parameter schemas
func (v *Validator) registerBuiltinSchemas() {
	v.RegisterSchema(&Schema{
		Name: "render_template",
		Fields: map[string]FieldValidator{
			"name": {
				Name: "name",
				Type: "string",
			},
			"format": {
				Name:     "format",
				Type:     "string",
				Required: true,
				Custom:   validFormat,
			},
			"example": {
				Name: "example",
				Type: "bool",
			},
			"character_type": {
				Name:   "character_type",
				Type:   "string",
				Custom: validCharacterType,
			},
			"output": {
				Name:    "output",
				Type:    "string",
				Options: []string{"text", "json", "document"},
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: "count_tokens",
		Fields: map[string]FieldValidator{
			"text": {
				Name: "text",
				Type: "string",
			},
			"strategy": {
				Name:   "strategy",
				Type:   "string",
				Custom: validStrategy,
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: "get_skeleton",
		Fields: map[string]FieldValidator{
			"format": {
				Name:     "format",
				Type:     "string",
				Required: true,
				Custom:   validFormat,
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: "search_traits",
		Fields: map[string]FieldValidator{
			"query": {
				Name:      "query",
				Type:      "string",
				MaxLength: 100,
			},
			"category": {
				Name:    "category",
				Type:    "string",
				Options: []string{"positive", "neutral", "negative"},
			},
			"limit": {
				Name: "limit",
				Type: "int",
			},
		},
		Rules: []func(map[string]interface{}) error{
			func(data map[string]interface{}) error {
				if limit, ok := data["limit"].(int); ok && limit < 0 {
					return fmt.Errorf("limit must not be negative")
				}
				return nil
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: "get_reference",
		Fields: map[string]FieldValidator{
			"section": {
				Name:    "section",
				Type:    "string",
				Options: []string{"usage", "traits", "appearance", "guides"},
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: "export_template",
		Fields: map[string]FieldValidator{
			"text": {
				Name:      "text",
				Type:      "string",
				Required:  true,
				MinLength: 1,
			},
			"name": {
				Name: "name",
				Type: "string",
			},
			"path": {
				Name:      "path",
				Type:      "string",
				MaxLength: 4096,
			},
			"with_meta": {
				Name: "with_meta",
				Type: "bool",
			},
			"format": {
				Name:   "format",
				Type:   "string",
				Custom: validFormat,
			},
			"example": {
				Name: "example",
				Type: "bool",
			},
			"character_type": {
				Name:   "character_type",
				Type:   "string",
				Custom: validCharacterType,
			},
		},
	})
}

// ToAppError converts validation result to AppError. A field rejected by its own
// typed error (such as INVALID_FORMAT) keeps that error's code.
func (result *ValidationResult) ToAppError() *errors.AppError {
	if result.Valid {
		return nil
	}

	if len(result.Errors) == 0 {
		return errors.ValidationError("Validation failed")
	}

	firstError := result.Errors[0]
	var appErr *errors.AppError
	if firstError.cause != nil {
		appErr = errors.NewAppError(firstError.cause.Code, firstError.cause.Message)
		for k, v := range firstError.cause.Context {
			appErr.WithContext(k, v)
		}
	} else {
		appErr = errors.ValidationError(firstError.Message)
	}

	var details []string
	for _, validationErr := range result.Errors {
		msg := validationErr.Message
		if validationErr.cause != nil && validationErr.cause.Details != "" {
			msg = validationErr.cause.Details
		}
		details = append(details, fmt.Sprintf("%s: %s", validationErr.Field, msg))
	}

	appErr.WithDetails(strings.Join(details, "; "))

	appErr.WithContext("validation_errors", result.Errors)
	if len(result.Warnings) > 0 {
		appErr.WithContext("validation_warnings", result.Warnings)
	}

	return appErr
}

// GetValidatedData returns the validated and converted data
func (result *ValidationResult) GetValidatedData() map[string]interface{} {
	if !result.Valid {
		return nil
	}
	return result.Data
}
