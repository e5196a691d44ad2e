// Package schema holds the resolved, immutable type graph the layout engine
// consumes.
//
// A Model is produced once by a Builder and frozen. Types are a closed tagged
// variant (Scalar, String, StructRef, TableRef, Vector, UnionRef, EnumRef);
// code that must handle every variant implements Visitor, so adding a variant
// breaks compilation instead of reaching a runtime fallback.
//
// References between named types are stored by name and resolved through the
// Model on demand. Tables and unions may therefore refer to each other
// cyclically; fixed structs may not, and Freeze rejects such cycles.
//
// # Slots
//
// Table fields receive their vtable slot from declaration order. Deprecated
// fields keep their slot. A union field owns an implicit uint8 companion
// field named "<field>_type" declared immediately before it; Freeze inserts
// it when the front end did not.
package schema
