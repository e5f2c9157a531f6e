// Package validation/middleware provides HTTP request validation middleware.
//
// HTTP VALIDATION FLOW:
// 1. HTTP request arrives at a middleware-wrapped handler
// 2. Query parameters, path values and the JSON or form body are merged into one map
// 3. The map is validated against the named schema
// 4. Invalid requests are answered with the standard error envelope (400, or the field's own code)
// 5. Valid requests proceed with the converted data stored in the request context
package validation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/dpshade/character-template/internal/errors"
)

type contextKey struct{}

// MaxBodyBytes bounds request bodies read by the middleware
const MaxBodyBytes = 1 << 20

// RequestValidator provides middleware for HTTP request validation
type RequestValidator struct {
	validator  *Validator
	errHandler *errors.HTTPErrorHandler
	pathParams map[string]string
}

// NewRequestValidator creates a new request validator middleware. pathParams maps
// route wildcard names to parameter names, e.g. "code" to "format".
func NewRequestValidator(log *zap.Logger, includeDetails bool, pathParams map[string]string) *RequestValidator {
	return &RequestValidator{
		validator:  NewValidator(),
		errHandler: errors.NewHTTPErrorHandler(log, includeDetails),
		pathParams: pathParams,
	}
}

// ValidateRequest middleware validates HTTP requests based on schema
func (rv *RequestValidator) ValidateRequest(schemaName string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			data, err := rv.extractRequestData(r)
			if err != nil {
				rv.errHandler.WriteHTTPError(w, err)
				return
			}

			result := rv.validator.Validate(schemaName, data)
			if !result.Valid {
				rv.errHandler.WriteHTTPError(w, result.ToAppError())
				return
			}

			next(w, r.WithContext(WithData(r.Context(), result.GetValidatedData())))
		}
	}
}

// WithData stores validated parameters in ctx
func WithData(ctx context.Context, data map[string]interface{}) context.Context {
	return context.WithValue(ctx, contextKey{}, data)
}

// DataFromContext returns the parameters stored by ValidateRequest
func DataFromContext(ctx context.Context) map[string]interface{} {
	data, _ := ctx.Value(contextKey{}).(map[string]interface{})
	if data == nil {
		return map[string]interface{}{}
	}
	return data
}

// extractRequestData extracts data from HTTP request based on method and content type
func (rv *RequestValidator) extractRequestData(r *http.Request) (map[string]interface{}, error) {
	data := make(map[string]interface{})

	for key, values := range r.URL.Query() {
		if len(values) == 1 {
			data[key] = values[0]
		} else if len(values) > 1 {
			data[key] = values
		}
	}

	for wildcard, param := range rv.pathParams {
		if value := r.PathValue(wildcard); value != "" {
			data[param] = value
		}
	}

	if r.Method == http.MethodPost || r.Method == http.MethodPut {
		contentType := r.Header.Get("Content-Type")

		if strings.Contains(contentType, "application/x-www-form-urlencoded") {
			formData, err := rv.extractFormBody(r)
			if err != nil {
				return nil, err
			}
			for key, value := range formData {
				data[key] = value
			}
		} else {
			bodyData, err := rv.extractJSONBody(r)
			if err != nil {
				return nil, err
			}
			for key, value := range bodyData {
				data[key] = value
			}
		}
	}

	return data, nil
}

// extractJSONBody extracts data from JSON request body
func (rv *RequestValidator) extractJSONBody(r *http.Request) (map[string]interface{}, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, errors.ValidationError("Failed to read request body")
	}
	if len(body) > MaxBodyBytes {
		return nil, errors.ValidationError("Request body too large")
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return make(map[string]interface{}), nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.ValidationError("Invalid JSON in request body").WithDetails(err.Error())
	}

	return data, nil
}

// extractFormBody extracts data from form-encoded request body
func (rv *RequestValidator) extractFormBody(r *http.Request) (map[string]interface{}, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return nil, errors.ValidationError("Failed to parse form data")
	}

	data := make(map[string]interface{})
	for key, values := range r.PostForm {
		if len(values) == 1 {
			data[key] = values[0]
		} else if len(values) > 1 {
			data[key] = values
		}
	}

	return data, nil
}

// SanitizeString removes control characters except newlines and tabs. Leading and
// trailing whitespace is kept because template text is whitespace-sensitive.
func SanitizeString(input string) string {
	var result strings.Builder
	for _, r := range input {
		if r == '\n' || r == '\t' || r == '\r' || r >= 32 {
			result.WriteRune(r)
		}
	}
	return result.String()
}
