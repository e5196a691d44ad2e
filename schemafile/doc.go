// Package schemafile loads resolved schema documents into a frozen
// schema.Model.
//
// A document lists enums, unions, structs and tables with their fields.
// Field types are written as strings:
//
//	int, uint, short, ubyte, float, double, ...   scalars (int32, uint8, ... also accepted)
//	string
//	[T]                                            vector of T
//	Vec3, Monster, Color, Equipment                declared types by name
//
// YAML, TOML and JSON encodings share the same shape and are picked by file
// extension in Load. Documents are validated before resolution; type errors
// found while freezing are returned as schema errors.
package schemafile
