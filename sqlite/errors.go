package sqlite

// Error is the failure result of a primitive. It carries the status
// code the VM receives, the name of the failing operation, and a
// human-readable message. Primitives return it by value rather than
// mutating shared state; the adapter in primitives.go copies it into
// the call Context for programs that read the error slot.
type Error struct {
	Code    Code
	Op      string
	Message string
}

func (e *Error) Error() string {
	return "sqlite::" + e.Op + ": " + e.Message
}

// invalidArg builds a transport-tier error: the stack contract was
// violated before any native call was attempted.
func invalidArg(op, detail string) *Error {
	return &Error{Code: CodeInvalidArgument, Op: op, Message: detail}
}

// nativeErr wraps a native-engine failure, keeping the engine's own
// diagnostic text.
func nativeErr(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Message: err.Error()}
}
