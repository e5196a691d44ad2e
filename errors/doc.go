// Package errors provides structured error types for the flatlayout engine.
//
// Errors are categorized by Phase (which stage produced them) and Kind (error
// category). The Error type carries the schema path of the offending field,
// the type name involved, a detail message and an optional cause.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindDuplicateKey).
//		Path("Monster").
//		Type("Monster").
//		Detail("fields %q and %q are both keys", "id", "name").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownType(errors.PhaseResolve, path, "Vec4")
//	err := errors.OutOfBounds(errors.PhaseRead, path, 10, 5)
//
// Field absence, a key search that finds nothing and a refused mutation of an
// absent field are ordinary results and never surface as errors.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
