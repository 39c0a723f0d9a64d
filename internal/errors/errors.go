// Package errors contains helper functions for wrapping errors with stack traces, configuration
// error classification, exit codes and panic recovery.
package errors

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// Process exit codes.
const (
	ExitSuccess      = 0 // No test failed
	ExitTestFailures = 1 // At least one test failed
	ExitConfigError  = 2 // The run could not start
)

// ConfigError reports a problem that prevents a run from starting, such as a missing root
// or an invalid pattern.
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Config creates a configuration error with a stack trace.
func Config(message string, cause error) error {
	return goerrors.Wrap(&ConfigError{Message: message, Cause: cause}, 1)
}

// Configf creates a formatted configuration error with a stack trace.
func Configf(format string, args ...interface{}) error {
	return goerrors.Wrap(&ConfigError{Message: fmt.Sprintf(format, args...)}, 1)
}

// IsConfigError reports whether err carries a ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// ErrorWithExitCode is a custom error that is used to specify the app exit code.
type ErrorWithExitCode struct {
	Err      error
	ExitCode int
}

func (err ErrorWithExitCode) Error() string {
	if err.Err == nil {
		return fmt.Sprintf("exit status %d", err.ExitCode)
	}
	return err.Err.Error()
}

func (err ErrorWithExitCode) Unwrap() error {
	return err.Err
}

// ExitCode returns the process exit code to use for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var withCode ErrorWithExitCode
	if errors.As(err, &withCode) {
		return withCode.ExitCode
	}
	if IsConfigError(err) {
		return ExitConfigError
	}
	return ExitTestFailures
}

// Errorf creates a new error and wraps in an Error type that contains the stack trace.
func Errorf(message string, args ...interface{}) error {
	return goerrors.Wrap(fmt.Errorf(message, args...), 1)
}

// WithStackTrace wraps the given error in an Error type that contains the stack trace. If the given error already has a stack trace,
// it is used directly. If the given error is nil, return nil.
func WithStackTrace(err error) error {
	if err == nil {
		return nil
	}

	return goerrors.Wrap(err, 1)
}

// WithStackTraceAndPrefix wraps the given error in an Error type that contains the stack trace and has the given message prepended.
func WithStackTraceAndPrefix(err error, message string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	return goerrors.WrapPrefix(err, fmt.Sprintf(message, args...), 1)
}

// ErrorWithStackTrace returns a string that contains both the error message and the callstack.
func ErrorWithStackTrace(err error) string {
	if err == nil {
		return ""
	}

	return goError(err).ErrorStack()
}

// StackTrace returns the callstack formatted the same way that go does in runtime/debug.Stack().
func StackTrace(err error) string {
	if err == nil {
		return ""
	}

	return string(goError(err).Stack())
}

func goError(err error) *goerrors.Error {
	goerr := &goerrors.Error{Err: err}

	for {
		if goError := new(goerrors.Error); errors.As(err, &goError) {
			goerr = goError
		}

		if err = errors.Unwrap(err); err == nil {
			break
		}
	}

	return goerr
}

// Recover tries to recover from panics, and if it succeeds, calls the given onPanic function with an error that
// explains the cause of the panic. This function should only be called from a defer statement.
func Recover(onPanic func(cause error)) {
	if rec := recover(); rec != nil {
		err, isError := rec.(error)
		if !isError {
			err = fmt.Errorf("%v", rec)
		}

		onPanic(goerrors.Wrap(err, 2))
	}
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
