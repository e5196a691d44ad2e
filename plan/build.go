package plan

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/wippyai/flatlayout/accessor"
	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/keyindex"
	"github.com/wippyai/flatlayout/layout"
	"github.com/wippyai/flatlayout/schema"
)

// Options tune a Build. Nil overrides keep the model's own options.
type Options struct {
	MutableBuffer *bool
	Nullable      *schema.NullableStyle
	OneFile       *bool
	// EnumDensity is the average value gap at or above which enums get no
	// names table. Zero means accessor.DefaultEnumDensity; values above
	// MaxEnumDensity are rejected.
	EnumDensity uint64
}

// MaxEnumDensity is the largest accepted EnumDensity. No names table is
// longer than accessor.MaxEnumNames, so larger thresholds change nothing.
const MaxEnumDensity = accessor.MaxEnumNames

func (o Options) apply(base schema.Options) schema.Options {
	if o.MutableBuffer != nil {
		base.MutableBuffer = *o.MutableBuffer
	}
	if o.Nullable != nil {
		base.Nullable = *o.Nullable
	}
	if o.OneFile != nil {
		base.OneFile = *o.OneFile
	}
	return base
}

func (o Options) density() uint64 {
	if o.EnumDensity == 0 {
		return accessor.DefaultEnumDensity
	}
	return o.EnumDensity
}

// Build runs every stage over model and returns the verified Set.
func Build(model *schema.Model, opts Options) (*Set, error) {
	return BuildContext(context.Background(), model, opts)
}

// BuildContext is Build with a span recorded on the global tracer provider.
func BuildContext(ctx context.Context, model *schema.Model, opts Options) (*Set, error) {
	_, span := otel.Tracer("flatlayout.plan").Start(ctx, "plan.Build")
	defer span.End()

	set, err := build(model, opts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("types", len(set.types)),
		attribute.Int("enums", len(set.enums)),
		attribute.Int("unions", len(set.unions)),
		attribute.String("root", set.root),
	)
	span.SetStatus(codes.Ok, "")
	return set, nil
}

func build(model *schema.Model, opts Options) (*Set, error) {
	if model == nil {
		return nil, errors.InvalidInput(errors.PhasePlan, "nil model")
	}
	global := opts.apply(model.Options())
	switch global.Nullable {
	case schema.NullableNone, schema.NullableAnnotations:
	default:
		return nil, errors.InvalidInput(errors.PhasePlan, "unknown nullable style "+string(global.Nullable))
	}
	if opts.EnumDensity > MaxEnumDensity {
		return nil, errors.InvalidInput(errors.PhasePlan,
			fmt.Sprintf("enum density %d exceeds %d", opts.EnumDensity, MaxEnumDensity))
	}

	resolver := layout.NewResolver(model)
	mapper := accessor.NewMapper(resolver, global)

	set := &Set{
		types:          make(map[string]*TypePlan),
		enums:          make(map[string]*EnumPlan),
		unions:         make(map[string]*UnionPlan),
		root:           model.Root(),
		fileIdentifier: model.FileIdentifier(),
		fileExtension:  model.FileExtension(),
		options:        global,
	}

	for _, def := range model.Structs() {
		tp, err := buildType(resolver, mapper, def)
		if err != nil {
			return nil, err
		}
		set.types[def.Name] = tp
		set.typeOrder = append(set.typeOrder, def.Name)
		Logger().Debug("type planned",
			zap.String("type", def.Name),
			zap.Bool("fixed", def.Fixed),
			zap.Uint32("size", tp.Layout.Size),
			zap.Uint32("align", tp.Layout.Align),
			zap.Int("slots", tp.Layout.SlotCount))
	}

	planKeyLookups(set)

	for _, e := range model.Enums() {
		set.enums[e.Name] = buildEnum(model, e, opts.density())
		set.enumOrder = append(set.enumOrder, e.Name)
	}
	for _, u := range model.Unions() {
		set.unions[u.Name] = buildUnion(u)
		set.unionOrder = append(set.unionOrder, u.Name)
	}

	if err := VerifyContract(set); err != nil {
		return nil, err
	}

	Logger().Debug("plan set built",
		zap.Int("types", len(set.types)),
		zap.Int("enums", len(set.enums)),
		zap.Int("unions", len(set.unions)),
		zap.String("root", set.root))
	return set, nil
}

func buildType(r *layout.Resolver, m *accessor.Mapper, def *schema.StructDef) (*TypePlan, error) {
	accessors, err := m.Map(def.Name)
	if err != nil {
		return nil, err
	}
	tp := &TypePlan{
		Name:      def.Name,
		Doc:       def.Doc,
		Accessors: accessors,
		Fixed:     def.Fixed,
	}

	if def.Fixed {
		sl, err := r.Struct(def.Name)
		if err != nil {
			return nil, err
		}
		tp.Layout = LayoutPlan{Size: sl.Size, Align: sl.Align}
		tp.Params = layout.Flatten(sl)
		tp.WriteSequence = layout.WriteSequence(sl)
		return tp, nil
	}

	tl, err := r.Table(def.Name)
	if err != nil {
		return nil, err
	}
	tp.Layout = LayoutPlan{
		SlotCount:   len(tl.Slots),
		VTableSize:  tl.VTableSize,
		WriteGroups: tl.WriteGroups,
		SortBySize:  tl.SortBySize,
	}
	_, tp.HasKey = def.KeyField()
	return tp, nil
}

// planKeyLookups runs after every type is mapped, since a vector's lookup
// needs the accessor plans of its element table.
func planKeyLookups(set *Set) {
	planner := keyindex.NewPlanner()
	for _, name := range set.typeOrder {
		tp := set.types[name]
		for _, p := range tp.Accessors {
			if p.Strategy != accessor.VectorOfStruct || !p.Indirect || p.Deprecated {
				continue
			}
			elem, ok := set.types[p.Elem]
			if !ok || !elem.HasKey {
				continue
			}
			if lp, ok := planner.Plan(p, elem.Accessors); ok {
				tp.KeyLookups = append(tp.KeyLookups, lp)
			}
		}
	}
}

func buildEnum(model *schema.Model, e *schema.EnumDef, density uint64) *EnumPlan {
	ep := &EnumPlan{
		Name:       e.Name,
		Underlying: e.Underlying,
		BitFlags:   e.BitFlags,
		Names:      accessor.EnumNames(e, density),
		Values:     make([]EnumValue, len(e.Values)),
	}
	for i, v := range e.Values {
		ep.Values[i] = EnumValue{Name: v.Name, Value: v.Value}
	}
	if lo, ok := e.Min(); ok {
		ep.Min = lo.Value
	}
	_, ep.Union = model.Union(e.Name)
	return ep
}

func buildUnion(u *schema.UnionDef) *UnionPlan {
	up := &UnionPlan{Name: u.Name, Members: make([]UnionMember, len(u.Members))}
	for i, m := range u.Members {
		up.Members[i] = UnionMember{
			Name: m.Name,
			Type: m.Type.String(),
			Kind: m.Type.Kind(),
			Tag:  m.Tag,
		}
	}
	return up
}
