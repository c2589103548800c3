package errx

import (
	"fmt"
	"sync"
)

// Code is a fully qualified error code such as "RESUME.NOT_FOUND".
type Code string

func (c Code) String() string { return string(c) }

type definition struct {
	errType    Type
	httpStatus int
	message    string
}

// Registry holds the error codes of one domain.
type Registry struct {
	prefix string

	mu   sync.RWMutex
	defs map[Code]definition
}

func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix: prefix,
		defs:   make(map[Code]definition),
	}
}

// Register declares a code. It panics on duplicates since registration
// happens during package initialization.
func (r *Registry) Register(code string, t Type, httpStatus int, message string) Code {
	full := Code(r.prefix + "." + code)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[full]; exists {
		panic(fmt.Sprintf("errx: duplicate error code %s", full))
	}
	r.defs[full] = definition{errType: t, httpStatus: httpStatus, message: message}
	return full
}

func (r *Registry) New(code Code) *Error {
	r.mu.RLock()
	def, ok := r.defs[code]
	r.mu.RUnlock()

	if !ok {
		return &Error{
			Type:       TypeInternal,
			Code:       string(code),
			Message:    "unregistered error code",
			HTTPStatus: TypeInternal.HTTPStatus(),
		}
	}

	return &Error{
		Type:       def.errType,
		Code:       string(code),
		Message:    def.message,
		HTTPStatus: def.httpStatus,
	}
}

func (r *Registry) NewWithCause(code Code, cause error) *Error {
	return r.New(code).WithCause(cause)
}

func (r *Registry) NewWithMessage(code Code, message string) *Error {
	return r.New(code).WithMessage(message)
}

func (r *Registry) Prefix() string { return r.prefix }
