package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates which stage produced the error
type Phase string

const (
	PhaseResolve Phase = "resolve" // schema freeze and validation
	PhaseLayout  Phase = "layout"  // struct/table layout
	PhaseMap     Phase = "map"     // accessor strategy selection
	PhasePlan    Phase = "plan"    // key lookup planning and orchestration
	PhaseVerify  Phase = "verify"  // buffer contract verification
	PhaseLoad    Phase = "load"    // schema document loading
	PhaseRead    Phase = "read"    // plan-driven buffer reads
	PhaseMutate  Phase = "mutate"  // in-place buffer mutation
	PhaseExport  Phase = "export"  // plan export
)

// Kind categorizes the error
type Kind string

const (
	KindDuplicateKey   Kind = "duplicate_key"
	KindInvalidKeyType Kind = "invalid_key_type"
	KindStructCycle    Kind = "struct_cycle"
	KindUnknownType    Kind = "unknown_type"
	KindDuplicateName  Kind = "duplicate_name"
	KindTypeMismatch   Kind = "type_mismatch"
	KindSizeMismatch   Kind = "size_mismatch"
	KindInvalidDefault Kind = "invalid_default"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindInvalidData    Kind = "invalid_data"
	KindUnsupported    Kind = "unsupported"
	KindFrozen         Kind = "frozen"
	KindNotFound       Kind = "not_found"
	KindInvalidInput   Kind = "invalid_input"
	KindContract       Kind = "contract"
)

// Error is the structured error type used throughout the engine
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsSchemaError reports whether err is a fatal schema error raised while
// resolving or laying out a model, before any accessor plan exists.
func IsSchemaError(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Phase == PhaseResolve || e.Phase == PhaseLayout
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the schema path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the schema type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// DuplicateKey creates an error for a type declaring more than one key field
func DuplicateKey(path []string, typeName, first, second string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindDuplicateKey,
		Path:   path,
		Type:   typeName,
		Detail: fmt.Sprintf("fields %q and %q are both marked as key", first, second),
	}
}

// InvalidKeyType creates an error for a key field that is neither scalar nor string
func InvalidKeyType(path []string, fieldType string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindInvalidKeyType,
		Path:   path,
		Type:   fieldType,
		Detail: "key field must be a scalar or a string",
	}
}

// StructCycle creates an error for a fixed struct that contains itself
func StructCycle(cycle []string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindStructCycle,
		Path:   cycle,
		Detail: "fixed struct contains itself: " + strings.Join(cycle, " -> "),
	}
}

// UnknownType creates an unresolved type reference error
func UnknownType(phase Phase, path []string, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownType,
		Path:   path,
		Type:   name,
		Detail: fmt.Sprintf("type %q is not declared", name),
	}
}

// TypeMismatch creates an error for a type used where another kind is required
func TypeMismatch(phase Phase, path []string, typeName, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Type:   typeName,
		Detail: detail,
	}
}

// InvalidDefault creates an error for a default literal that does not fit its type
func InvalidDefault(path []string, typeName, literal string, cause error) *Error {
	return &Error{
		Phase:  PhaseMap,
		Kind:   KindInvalidDefault,
		Path:   path,
		Type:   typeName,
		Detail: fmt.Sprintf("invalid default %q", literal),
		Value:  literal,
		Cause:  cause,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Contract creates a buffer contract violation error
func Contract(path []string, detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseVerify,
		Kind:   KindContract,
		Path:   path,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Load creates a schema document loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}
