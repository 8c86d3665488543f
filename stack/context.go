package stack

// Context is the per-call state a primitive receives: the operand stack
// plus the error slot the VM inspects after a non-zero primitive return.
// The slot holds only the most recent failure; a new failure overwrites
// the previous one. Each VM thread owns its own Context.
type Context struct {
	Stack *Stack

	errCode int
	errMsg  string
}

// NewContext returns a Context with a fresh empty stack.
func NewContext() *Context {
	return &Context{Stack: New()}
}

// SetError records a failure code and message, replacing any previous
// failure.
func (c *Context) SetError(code int, msg string) {
	c.errCode = code
	c.errMsg = msg
}

// ClearError resets the error slot.
func (c *Context) ClearError() {
	c.errCode = 0
	c.errMsg = ""
}

// ErrorCode returns the code of the most recent failure, or 0.
func (c *Context) ErrorCode() int {
	return c.errCode
}

// ErrorMessage returns the message of the most recent failure, or "".
func (c *Context) ErrorMessage() string {
	return c.errMsg
}

// Primitive is one native operation exposed to the VM. It returns 0
// when no transport-level failure occurred; a non-zero return is an
// error code, with detail recorded in the Context error slot.
type Primitive func(*Context) int

// Registrar is implemented by hosts that accept primitive registration.
type Registrar interface {
	RegisterPrimitive(name string, fn Primitive)
}
