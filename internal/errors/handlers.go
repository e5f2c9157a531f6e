// Package errors/handlers provides interface-specific error handling implementations.
//
// SYSTEM ARCHITECTURE ROLE:
// This module implements the interface layer of the error handling system, providing
// customized error formatting for the CLI, the HTTP API and the TUI.
//
// ERROR FLOW:
// 1. Core or service code returns an AppError (for example INVALID_FORMAT)
// 2. The interface-specific handler logs it through zap
// 3. The handler formats it for display or writes the HTTP response
//
// USAGE PATTERNS:
// - CLI: Create CLIErrorHandler and use HandleError()
// - HTTP: Use WriteHTTPError() for direct response writing
// - TUI: Use GetErrorStyle() for styling information
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// ErrorHandler provides interface-specific error handling
type ErrorHandler interface {
	HandleError(err error) error
	FormatError(err error) string
}

// CLIErrorHandler handles errors for CLI interface
type CLIErrorHandler struct {
	Verbose bool
	log     *zap.Logger
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler(log *zap.Logger, verbose bool) *CLIErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CLIErrorHandler{
		Verbose: verbose,
		log:     log,
	}
}

// HandleError handles errors for CLI interface
func (h *CLIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)

	if h.Verbose {
		fields := []zap.Field{
			zap.String("code", string(appErr.Code)),
			zap.String("severity", string(appErr.Severity)),
		}
		if appErr.Details != "" {
			fields = append(fields, zap.String("details", appErr.Details))
		}
		if appErr.Cause != nil {
			fields = append(fields, zap.NamedError("cause", appErr.Cause))
		}
		h.log.Warn(appErr.Message, fields...)
	}

	return fmt.Errorf("%s", h.FormatError(appErr))
}

// FormatError formats an error for CLI display
func (h *CLIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	message := appErr.Message
	if appErr.Details != "" {
		message = fmt.Sprintf("%s: %s", message, appErr.Details)
	}

	switch appErr.Severity {
	case SeverityCritical:
		return fmt.Sprintf("❌ CRITICAL: %s", message)
	case SeverityError:
		return fmt.Sprintf("❌ ERROR: %s", message)
	case SeverityWarning:
		return fmt.Sprintf("⚠️  WARNING: %s", message)
	case SeverityInfo:
		return fmt.Sprintf("ℹ️  INFO: %s", message)
	default:
		return fmt.Sprintf("❌ %s", message)
	}
}

// HTTPErrorHandler handles errors for HTTP interface
type HTTPErrorHandler struct {
	IncludeDetails bool
	log            *zap.Logger
}

// NewHTTPErrorHandler creates a new HTTP error handler
func NewHTTPErrorHandler(log *zap.Logger, includeDetails bool) *HTTPErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPErrorHandler{
		IncludeDetails: includeDetails,
		log:            log,
	}
}

// HandleError handles errors for HTTP interface
func (h *HTTPErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)

	fields := []zap.Field{
		zap.String("code", string(appErr.Code)),
		zap.String("severity", string(appErr.Severity)),
	}
	if appErr.Cause != nil {
		fields = append(fields, zap.NamedError("cause", appErr.Cause))
	}
	if appErr.Severity == SeverityCritical || appErr.Severity == SeverityError {
		h.log.Error(appErr.Message, fields...)
	} else {
		h.log.Info(appErr.Message, fields...)
	}

	return appErr
}

// FormatError formats an error for HTTP response
func (h *HTTPErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	body := map[string]interface{}{
		"code":      appErr.Code,
		"message":   appErr.Message,
		"timestamp": appErr.Timestamp,
	}
	if h.IncludeDetails && appErr.Details != "" {
		body["details"] = appErr.Details
	}
	if h.IncludeDetails && appErr.Context != nil {
		body["context"] = appErr.Context
	}

	jsonBytes, _ := json.Marshal(map[string]interface{}{
		"success": false,
		"error":   body,
	})
	return string(jsonBytes)
}

// WriteHTTPError writes an error response to HTTP
func (h *HTTPErrorHandler) WriteHTTPError(w http.ResponseWriter, err error) {
	appErr := GetAppError(err)

	h.HandleError(appErr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(appErr))
	w.Write([]byte(h.FormatError(appErr)))
}

// StatusCode maps error codes to HTTP status codes
func StatusCode(appErr *AppError) int {
	switch appErr.Code {
	case ErrCodeValidation, ErrCodeInvalidInput, ErrCodeMissingField, ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeFileNotFound, ErrCodeCommandNotFound:
		return http.StatusNotFound
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrCodeNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// TUIErrorHandler handles errors for TUI interface
type TUIErrorHandler struct {
	ShowDetails bool
	log         *zap.Logger
}

// NewTUIErrorHandler creates a new TUI error handler. The logger should write to a
// file; anything written to the terminal would corrupt the alt screen.
func NewTUIErrorHandler(log *zap.Logger, showDetails bool) *TUIErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TUIErrorHandler{
		ShowDetails: showDetails,
		log:         log,
	}
}

// HandleError handles errors for TUI interface
func (h *TUIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)
	h.log.Warn(appErr.Message,
		zap.String("code", string(appErr.Code)),
		zap.String("category", string(appErr.Category)),
		zap.Any("context", appErr.Context),
	)
	return appErr
}

// FormatError formats an error for TUI display
func (h *TUIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	message := appErr.Message
	if h.ShowDetails && appErr.Details != "" {
		message = fmt.Sprintf("%s\nDetails: %s", message, appErr.Details)
	}

	return message
}

// GetErrorStyle returns styling information for TUI based on error severity
func (h *TUIErrorHandler) GetErrorStyle(err error) (string, string) {
	appErr := GetAppError(err)

	switch appErr.Severity {
	case SeverityCritical:
		return "🔥", "#ff0000"
	case SeverityError:
		return "❌", "#ff6b6b"
	case SeverityWarning:
		return "⚠️", "#feca57"
	case SeverityInfo:
		return "ℹ️", "#48cae4"
	default:
		return "❌", "#ff6b6b"
	}
}
