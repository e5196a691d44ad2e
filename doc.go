// Package flatlayout maps a resolved schema onto the access logic of a
// zero-copy, little-endian flat buffer wire format.
//
// Given a frozen schema model, the engine decides for every field exactly how
// it is read and written: at which static offset or vtable slot, with which
// default, which numeric mask and carrier, and through how many indirections.
// Emitting source text for a target language is left to an external stage that
// consumes the published plans.
//
// # Architecture Overview
//
//	flatlayout/          Root package with the Memory interfaces buffers live in
//	├── schema/          Immutable resolved type graph (builder, then freeze)
//	├── layout/          Struct offsets and padding, table slots and write order
//	├── accessor/        Per-field access strategy and plan-driven reads/mutation
//	├── keyindex/        Binary search plans for vectors sorted by a key field
//	├── wire/            Buffer contract: root, size prefix, identifier, vtables
//	├── plan/            Orchestration, contract verification and plan export
//	├── schemafile/      YAML/TOML/JSON resolved schema documents
//	├── wasmmem/         wazero linear memory as a buffer backing
//	├── errors/          Structured error types
//	└── cmd/flatplan/    Command line front end and interactive plan browser
//
// # Data Flow
//
//	schema.Model ─→ layout.Resolver ─→ accessor.Mapper ─→ plan.Set ─→ emitter
//	                                          └─→ keyindex.Planner ─┘
//
// Every stage reads the model without mutating it, and every published output
// is immutable, so independent emission passes may share one plan.Set across
// goroutines without locking.
//
// plan.BuildContext records each build as an OpenTelemetry span, and
// schemafile.Watch reloads a schema document whenever it changes on disk.
//
// # Quick Start
//
//	b := schema.NewBuilder()
//	b.AddTable(&schema.StructDef{
//	    Name: "Monster",
//	    Fields: []*schema.Field{
//	        {Name: "hp", Type: schema.Scalar{Base: schema.Int16}, Default: "100"},
//	        {Name: "name", Type: schema.String{}, Key: true},
//	    },
//	})
//	b.SetRoot("Monster")
//	model, err := b.Freeze()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	set, err := plan.Build(model, plan.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, p := range set.Type("Monster").Accessors {
//	    fmt.Println(p.Field, p.Strategy, p.VTableOffset)
//	}
//
// # Preconditions
//
// Plans assume well-formed buffers. Readers in the wire and accessor packages
// only surface bounds errors from the underlying Memory; they never validate
// buffer structure.
package flatlayout
