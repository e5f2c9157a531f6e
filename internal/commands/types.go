// Package commands implements the unified command execution system.
//
// SYSTEM ARCHITECTURE ROLE:
// This module is the coordination layer between the user interfaces (CLI, HTTP, TUI)
// and the service layer. Each operation is a Command looked up by name, fed a
// validated parameter map and answered with a CommandResult, so all surfaces share
// one set of semantics and one error shape.
//
// INTEGRATION POINTS:
// - internal/cli: subcommands build parameter maps from flags and print CommandResult.Data
// - internal/api/server.go: every endpoint executes a command and writes the result envelope
// - internal/ui/model.go: reference overlay and trait search run through the executor
// - internal/validation/validator.go: parameters are checked against the schema mapped in getValidationSchema()
// - internal/errors/errors.go: failures are converted to ErrorInfo via AppError
//
// COMMAND FLOW:
// 1. Interface converts input to a parameter map
// 2. CommandExecutor validates parameters against the command's schema
// 3. A fresh command instance receives the service and the converted parameters
// 4. The command runs and returns a CommandResult
package commands

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/dpshade/character-template/internal/errors"
	"github.com/dpshade/character-template/internal/service"
	"github.com/dpshade/character-template/internal/validation"
)

// CommandResult represents the result of executing a command
type CommandResult struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Success bool        `json:"success"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo provides structured error information
type ErrorInfo struct {
	Code     string                 `json:"code"`
	Message  string                 `json:"message"`
	Details  string                 `json:"details,omitempty"`
	Category string                 `json:"category,omitempty"`
	Severity string                 `json:"severity,omitempty"`
	Context  map[string]interface{} `json:"context,omitempty"`
}

// AppError rebuilds an AppError from the info so surfaces can map it to a status
func (e *ErrorInfo) AppError() *errors.AppError {
	appErr := errors.NewAppError(errors.ErrorCode(e.Code), e.Message).WithDetails(e.Details)
	for k, v := range e.Context {
		appErr.WithContext(k, v)
	}
	return appErr
}

// Err returns the result's failure as an error, or nil on success
func (r *CommandResult) Err() error {
	if r == nil || r.Success || r.Error == nil {
		return nil
	}
	return r.Error.AppError()
}

// Command represents a unified command interface
type Command interface {
	Execute(ctx context.Context) (*CommandResult, error)
	Validate() error
	GetName() string
	GetDescription() string
}

// ParameterizedCommand interface for commands that accept parameters
type ParameterizedCommand interface {
	SetParameters(params map[string]interface{}) error
}

// ServiceAwareCommand interface for commands that need service access
type ServiceAwareCommand interface {
	SetService(svc *service.Service)
}

// CommandRegistry manages available commands
type CommandRegistry struct {
	commands map[string]func() Command
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]func() Command),
	}
}

// Register adds a command factory to the registry
func (r *CommandRegistry) Register(name string, factory func() Command) {
	r.commands[name] = factory
}

// Get retrieves a command factory by name
func (r *CommandRegistry) Get(name string) (func() Command, bool) {
	factory, exists := r.commands[name]
	return factory, exists
}

// List returns all available command names, sorted
func (r *CommandRegistry) List() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CommandExecutor provides a unified way to execute commands
type CommandExecutor struct {
	service   *service.Service
	registry  *CommandRegistry
	validator *validation.Validator
	log       *zap.Logger
}

// NewCommandExecutor creates a new command executor
func NewCommandExecutor(svc *service.Service) *CommandExecutor {
	executor := &CommandExecutor{
		service:   svc,
		registry:  NewCommandRegistry(),
		validator: validation.NewValidator(),
		log:       svc.Logger(),
	}

	executor.registerCommands()

	return executor
}

// Commands lists the registered command names
func (e *CommandExecutor) Commands() []string {
	return e.registry.List()
}

// Execute runs a command by name with the given parameters. Failures are reported
// in the result; the returned error is reserved for a cancelled context.
func (e *CommandExecutor) Execute(ctx context.Context, commandName string, params map[string]interface{}) (*CommandResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	factory, exists := e.registry.Get(commandName)
	if !exists {
		return errorResult(errors.CommandNotFoundError(commandName)), nil
	}

	if params == nil {
		params = make(map[string]interface{})
	}

	if validationSchema := e.getValidationSchema(commandName); validationSchema != "" {
		validationResult := e.validator.Validate(validationSchema, params)
		if !validationResult.Valid {
			appErr := validationResult.ToAppError()
			e.log.Debug("command parameters rejected",
				zap.String("command", commandName),
				zap.String("code", string(appErr.Code)),
				zap.String("details", appErr.Details),
			)
			return errorResult(appErr), nil
		}
		params = validationResult.GetValidatedData()
	}

	cmd := factory()

	if serviceAware, ok := cmd.(ServiceAwareCommand); ok {
		serviceAware.SetService(e.service)
	}

	if parameterized, ok := cmd.(ParameterizedCommand); ok {
		if err := parameterized.SetParameters(params); err != nil {
			return errorResult(toAppError(err)), nil
		}
	}

	if err := cmd.Validate(); err != nil {
		return errorResult(toAppError(err)), nil
	}

	result, err := cmd.Execute(ctx)
	if err != nil {
		appErr := errors.GetAppError(err)
		e.log.Debug("command failed",
			zap.String("command", commandName),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
		)
		return errorResult(appErr), nil
	}

	return result, nil
}

func toAppError(err error) *errors.AppError {
	if errors.IsAppError(err) {
		return errors.GetAppError(err)
	}
	return errors.ValidationError(err.Error())
}

func errorResult(appErr *errors.AppError) *CommandResult {
	return &CommandResult{
		Success: false,
		Error: &ErrorInfo{
			Code:     string(appErr.Code),
			Message:  appErr.Message,
			Details:  appErr.Details,
			Category: string(appErr.Category),
			Severity: string(appErr.Severity),
			Context:  publicContext(appErr.Context),
		},
	}
}

// publicContext drops entries that only make sense inside the process
func publicContext(ctx map[string]interface{}) map[string]interface{} {
	if len(ctx) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(ctx))
	for k, v := range ctx {
		if k == "validation_errors" || k == "validation_warnings" {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// getValidationSchema returns the validation schema name for a command
func (e *CommandExecutor) getValidationSchema(commandName string) string {
	switch commandName {
	case "render":
		return "render_template"
	case "count":
		return "count_tokens"
	case "skeleton":
		return "get_skeleton"
	case "traits", "search-traits":
		return "search_traits"
	case "reference":
		return "get_reference"
	case "export":
		return "export_template"
	default:
		return ""
	}
}

// registerCommands registers all available commands
func (e *CommandExecutor) registerCommands() {
	e.registry.Register("render", func() Command { return &RenderCommand{} })
	e.registry.Register("count", func() Command { return &CountTokensCommand{} })
	e.registry.Register("formats", func() Command { return &ListFormatsCommand{} })
	e.registry.Register("skeleton", func() Command { return &SkeletonCommand{} })
	e.registry.Register("export", func() Command { return &ExportCommand{} })
	e.registry.Register("traits", func() Command { return &ListTraitsCommand{} })
	e.registry.Register("search-traits", func() Command { return &SearchTraitsCommand{} })
	e.registry.Register("appearance", func() Command { return &AppearanceCommand{} })
	e.registry.Register("reference", func() Command { return &ReferenceCommand{} })
	e.registry.Register("health", func() Command { return &HealthCheckCommand{} })
}

// Parameter helpers

func stringParam(params map[string]interface{}, key string) string {
	s, _ := params[key].(string)
	return s
}

func boolParam(params map[string]interface{}, key string) bool {
	b, _ := params[key].(bool)
	return b
}

func intParam(params map[string]interface{}, key string) int {
	n, _ := params[key].(int)
	return n
}
