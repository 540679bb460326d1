// Package errors provides error values that carry a gRPC status code, a
// stack trace, and an optional public message. It can be used wherever the
// builtin error interface is expected, and interoperates with the standard
// library's Is/As/Unwrap chain.
//
// The status code is how failures are classified across the module: fatal
// configuration problems carry codes.InvalidArgument or
// codes.FailedPrecondition, authentication denials carry
// codes.Unauthenticated, and so on.
package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"reflect"
	"runtime"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// The maximum number of stackframes on any error.
var MaxStackDepth = 50

// Error is an error with an attached stacktrace and status code. It can be
// used wherever the builtin error interface is expected.
type Error struct {
	Err    error
	stack  []uintptr
	frames []StackFrame
	prefix string

	// gRPC status code to associate with an error response.
	code codes.Code

	// Error message safe to return to a client.
	publicMessage string
}

// New makes an Error from the given value. If that value is already an error
// then it will be used directly, if not, it will be passed to
// fmt.Errorf("%v"). The stacktrace will point to the line of code that
// called New.
func New(e interface{}) *Error {
	return newErr(e, codes.Unknown, 1)
}

// NewC makes an Error with a status code defined.
func NewC(e interface{}, code codes.Code) *Error {
	return newErr(e, code, 1)
}

// Codef creates an Error with a status code and a formatted message.
func Codef(code codes.Code, format string, a ...interface{}) *Error {
	return newErr(fmt.Errorf(format, a...), code, 1)
}

// Errorf creates a new error with the given message. You can use it as a
// drop-in replacement for fmt.Errorf() to provide descriptive errors in
// return values.
func Errorf(format string, a ...interface{}) *Error {
	return newErr(fmt.Errorf(format, a...), codes.Unknown, 1)
}

func newErr(e interface{}, code codes.Code, skip int) *Error {
	var err error
	switch e := e.(type) {
	case error:
		err = e
	default:
		err = fmt.Errorf("%v", e)
	}

	stack := make([]uintptr, MaxStackDepth)
	length := runtime.Callers(2+skip, stack[:])
	return &Error{
		Err:   err,
		stack: stack[:length],
		code:  code,
	}
}

// Wrap makes an Error from the given value. If that value is already an
// *Error it is returned unchanged. The skip parameter indicates how far up
// the stack to start the stacktrace. 0 is from the current call, 1 from its
// caller, etc.
func Wrap(e interface{}, skip int) *Error {
	if e == nil {
		return nil
	}
	if err, ok := e.(*Error); ok {
		return err
	}
	return newErr(e, codes.Unknown, 1+skip)
}

// Mark takes an error and sets the stack trace from the point it was called,
// overriding any previous stack trace that may have been set. Useful when
// returning sentinel errors so the trace points at the return site.
func Mark(e interface{}, skip int) *Error {
	if e == nil {
		return nil
	}
	if err, ok := e.(*Error); ok {
		stack := make([]uintptr, MaxStackDepth)
		length := runtime.Callers(2+skip, stack[:])
		return &Error{
			Err:           err.Err,
			stack:         stack[:length],
			code:          err.code,
			publicMessage: err.publicMessage,
			prefix:        err.prefix,
		}
	}
	return Wrap(e, 1+skip)
}

// WithCode takes an error and adds a status code to it. If the error is not
// already an *Error, it will be wrapped in one.
func WithCode(err error, code codes.Code) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, 1).WithCode(code)
}

// Is reports whether any error in err's chain matches target. Re-exported so
// callers don't need to import both this package and the standard library.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Error returns the underlying error's message.
func (err *Error) Error() string {
	msg := err.Err.Error()
	if err.prefix != "" {
		msg = fmt.Sprintf("%s: %s", err.prefix, msg)
	}
	return msg
}

// Append adds additional context to the error message.
func (err *Error) Append(msg string) *Error {
	return &Error{
		Err:           fmt.Errorf("%w: %s", err.Err, msg),
		stack:         err.stack,
		code:          err.code,
		publicMessage: err.publicMessage,
		prefix:        err.prefix,
	}
}

// Stack returns the callstack formatted the same way that go does in
// runtime/debug.Stack().
func (err *Error) Stack() []byte {
	buf := bytes.Buffer{}
	for _, frame := range err.StackFrames() {
		buf.WriteString(frame.String())
	}
	return buf.Bytes()
}

// ErrorStack returns a string that contains both the error message and the
// callstack.
func (err *Error) ErrorStack() string {
	return err.TypeName() + " " + err.Error() + "\n" + string(err.Stack())
}

// StackFrames returns an array of frames containing information about the
// stack.
func (err *Error) StackFrames() []StackFrame {
	if err.frames == nil {
		err.frames = make([]StackFrame, len(err.stack))
		for i, pc := range err.stack {
			err.frames[i] = NewStackFrame(pc)
		}
	}
	return err.frames
}

// TypeName returns the type of this error. e.g. *errors.stringError.
func (err *Error) TypeName() string {
	return reflect.TypeOf(err.Err).String()
}

// Unwrap the error (implements api for As function).
func (err *Error) Unwrap() error {
	return err.Err
}

// Code returns the gRPC status code associated with the error.
func (err *Error) Code() codes.Code {
	return err.code
}

// WithCode sets the gRPC status code associated with the error.
func (err *Error) WithCode(code codes.Code) *Error {
	err.code = code
	return err
}

// PublicMessage returns the error string that should be returned to the
// client.
func (err *Error) PublicMessage() string {
	if err.publicMessage != "" {
		return err.publicMessage
	}
	return err.Error()
}

// WithPublicMessage sets the error string that should be returned to the
// client.
func (err *Error) WithPublicMessage(publicMessage string) *Error {
	err.publicMessage = publicMessage
	return err
}

// GRPCStatus returns a gRPC status object for the error.
func (err *Error) GRPCStatus() *status.Status {
	return status.New(err.Code(), err.PublicMessage())
}

// Code returns a gRPC status code for an error. If the error is nil, it
// returns codes.OK. If the error exposes a `Code()` method, that is returned.
// Otherwise codes.Unknown is returned.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if e, ok := err.(codedError); ok {
		return e.Code()
	}
	return codes.Unknown
}

type codedError interface {
	Code() codes.Code
}
