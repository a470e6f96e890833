package output

import "errors"

// Exit codes following sysexits.h where one fits
const (
	ExitOK                = 0  // Success
	ExitGeneral           = 1  // General error
	ExitUsage             = 2  // Invalid usage / bad arguments
	ExitNotFound          = 4  // Resource not found
	ExitConfigError       = 10 // signcfg's own configuration is broken
	ExitDataError         = 65 // Malformed properties file (EX_DATAERR)
	ExitIOError           = 74 // Properties file unreadable (EX_IOERR)
	ExitMissingCredential = 78 // Signing credential absent (EX_CONFIG)
)

// CLIError represents a structured error with exit code and optional hint
type CLIError struct {
	ExitCode int
	Message  string
	Hint     string
	Err      error
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError
func NewCLIError(code int, msg string) *CLIError {
	return &CLIError{
		ExitCode: code,
		Message:  msg,
	}
}

// WithHint adds a user-facing hint to the error
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// Wrap attaches the underlying cause
func (e *CLIError) Wrap(err error) *CLIError {
	e.Err = err
	return e
}

// Report prints err and its hint through formatter and returns the exit code
func Report(formatter Formatter, err error) int {
	var cliErr *CLIError
	if !errors.As(err, &cliErr) {
		formatter.PrintError(err)
		return ExitGeneral
	}

	formatter.PrintError(cliErr)
	if cliErr.Hint != "" {
		formatter.PrintHint(cliErr.Hint)
	}
	return cliErr.ExitCode
}
