package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/flatlayout/accessor"
	"github.com/wippyai/flatlayout/plan"
	"github.com/wippyai/flatlayout/schema"
	"github.com/wippyai/flatlayout/schemafile"
)

type config struct {
	schemaFile string
	format     string
	output     string
	mutable    *bool
	density    uint64
	watch      bool
}

func main() {
	var (
		schemaFile  = flag.String("schema", "", "Path to schema document (.yaml, .toml, .json)")
		format      = flag.String("format", "", "Export format: json, yaml, msgpack (default from -o, else summary)")
		output      = flag.String("o", "", "Write the export to this file instead of stdout")
		mutable     = flag.Bool("mutable", false, "Plan in-place mutation regardless of the schema options")
		density     = flag.Uint64("density", 0, "Enum density threshold for names tables (default 5)")
		watch       = flag.Bool("watch", false, "Re-plan whenever the schema file changes")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *schemaFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: flatplan -schema <file> [-format json|yaml|msgpack] [-o out]")
		fmt.Fprintln(os.Stderr, "       flatplan -schema <file> -watch -o out.json")
		fmt.Fprintln(os.Stderr, "       flatplan -schema <file> -i  (interactive mode)")
		os.Exit(1)
	}
	if *density > plan.MaxEnumDensity {
		fmt.Fprintf(os.Stderr, "Error: -density must be at most %d\n", plan.MaxEnumDensity)
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		plan.SetLogger(logger.Named("plan"))
		schemafile.SetLogger(logger.Named("schemafile"))
	}

	cfg := config{
		schemaFile: *schemaFile,
		format:     *format,
		output:     *output,
		density:    *density,
		watch:      *watch,
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "mutable" {
			cfg.mutable = mutable
		}
	})

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (c config) planOptions() plan.Options {
	return plan.Options{MutableBuffer: c.mutable, EnumDensity: c.density}
}

func run(cfg config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	model, err := schemafile.Load(cfg.schemaFile)
	if err != nil {
		return err
	}
	if err := emit(ctx, cfg, model); err != nil {
		return err
	}
	if !cfg.watch {
		return nil
	}

	fmt.Fprintf(os.Stderr, "Watching %s (ctrl+c to stop)\n", cfg.schemaFile)
	return schemafile.Watch(ctx, cfg.schemaFile, func(m *schema.Model, err error) {
		if err == nil {
			err = emit(ctx, cfg, m)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(os.Stderr, "Re-planned %s\n", cfg.schemaFile)
	})
}

func emit(ctx context.Context, cfg config, model *schema.Model) error {
	set, err := plan.BuildContext(ctx, model, cfg.planOptions())
	if err != nil {
		return err
	}

	name := cfg.format
	if name == "" && cfg.output != "" {
		name = filepath.Ext(cfg.output)
	}
	if name == "" {
		return summarize(os.Stdout, set)
	}

	format, err := plan.ParseFormat(name)
	if err != nil {
		return err
	}
	data, err := plan.Encode(set, format)
	if err != nil {
		return err
	}
	if cfg.output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(cfg.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cfg.output, err)
	}
	return nil
}

func summarize(w io.Writer, set *plan.Set) error {
	fmt.Fprintf(w, "Root: %s", orNone(set.Root()))
	if id := set.FileIdentifier(); id != "" {
		fmt.Fprintf(w, "  identifier %q", id)
	}
	fmt.Fprintln(w)

	for _, tp := range set.Types() {
		fmt.Fprintf(w, "\n%s\n", typeHeader(tp))
		for _, p := range tp.Accessors {
			fmt.Fprintf(w, "  %s\n", accessorLine(p))
		}
		for _, k := range tp.KeyLookups {
			fmt.Fprintf(w, "  lookup %s by %s.%s (%s)\n", k.Field, k.Elem, k.Key.Field, k.Compare)
		}
	}

	if enums := set.Enums(); len(enums) > 0 {
		fmt.Fprintln(w, "\nEnums:")
		for _, e := range enums {
			fmt.Fprintf(w, "  %s\n", enumLine(e))
		}
	}
	return nil
}

func typeHeader(tp *plan.TypePlan) string {
	if tp.Fixed {
		return fmt.Sprintf("struct %s  size %d align %d", tp.Name, tp.Layout.Size, tp.Layout.Align)
	}
	return fmt.Sprintf("table %s  %d slots, vtable %d bytes", tp.Name, tp.Layout.SlotCount, tp.Layout.VTableSize)
}

func accessorLine(p *accessor.Plan) string {
	var b strings.Builder
	if p.Addressing == accessor.Static {
		fmt.Fprintf(&b, "@%-4d", p.Offset)
	} else {
		fmt.Fprintf(&b, "#%-2d/%-3d", p.Slot, p.VTableOffset)
	}
	fmt.Fprintf(&b, " %-16s %-18s", p.Field, p.Strategy)
	if p.Base.Valid() {
		fmt.Fprintf(&b, " %s", p.Base)
	}
	if p.Elem != "" {
		fmt.Fprintf(&b, " %s", p.Elem)
	}
	if p.Default.Literal != "" {
		fmt.Fprintf(&b, " = %s", p.Default.Literal)
	}
	var flags []string
	for _, f := range []struct {
		on   bool
		name string
	}{
		{p.Required, "required"},
		{p.Deprecated, "deprecated"},
		{p.Key, "key"},
		{p.Nullable, "nullable"},
		{p.Mutable, "mutable"},
	} {
		if f.on {
			flags = append(flags, f.name)
		}
	}
	if len(flags) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(flags, ","))
	}
	return b.String()
}

func enumLine(e *plan.EnumPlan) string {
	var vals []string
	for _, v := range e.Values {
		vals = append(vals, fmt.Sprintf("%s=%d", v.Name, v.Value))
	}
	kind := "enum"
	if e.Union {
		kind = "union tag"
	}
	table := "names table"
	if e.Names == nil {
		table = "sparse"
	}
	return fmt.Sprintf("%s %s : %s {%s} %s", kind, e.Name, e.Underlying, strings.Join(vals, ", "), table)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
