package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	shapejson "github.com/reoring/shapejson"
	"github.com/reoring/shapejson/internal/gen"
	"github.com/reoring/shapejson/internal/ir"
	"github.com/reoring/shapejson/shapefile"
)

var (
	errUsage  = errors.New("usage")
	errFailed = errors.New("failed")
)

type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	color          bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, color: isTerminal(stdout)}
	var err error
	switch args[0] {
	case "validate":
		err = a.validateCmd(ctx, args[1:])
	case "fmt":
		err = a.fmtCmd(ctx, args[1:])
	case "diff":
		err = a.diffCmd(ctx, args[1:])
	case "gen":
		err = a.genCmd(args[1:])
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		usage(stderr)
		return 2
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return 2
	case errors.Is(err, errFailed):
		return 1
	}
	fmt.Fprintf(stderr, "shapejson: %v\n", err)
	return 1
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `shapejson CLI

Usage:
  shapejson validate [-shapes defs.yaml -shape Name] [options] SRC...
  shapejson fmt      [-shapes defs.yaml -shape Name] [-w] [options] SRC...
  shapejson diff     [-shapes defs.yaml -shape Name] [options] SRC SRC
  shapejson gen      -shapes defs.yaml [-pkg name] [-only A,B] [-o out.go]

SRC is a file path, an http(s) URL or - for stdin.

Options:
  -dup ignore|warn|error   duplicate member handling (default ignore)
  -max-depth N             maximum nesting depth
  -max-bytes N             maximum input size
  -stdlib                  use the encoding/json driver (reports byte offsets)
  -v                       debug logging on stderr`)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *app) paint(attr color.Attribute, s string) string {
	if !a.color {
		return s
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(s)
}

// common holds the flags shared by the document commands.
type common struct {
	shapes   string
	shape    string
	dup      string
	maxDepth int
	maxBytes int64
	stdlib   bool
	verbose  bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.shapes, "shapes", "", "YAML shape definitions")
	fs.StringVar(&c.shape, "shape", "", "shape to validate against")
	fs.StringVar(&c.dup, "dup", "ignore", "duplicate member handling: ignore, warn or error")
	fs.IntVar(&c.maxDepth, "max-depth", 0, "maximum nesting depth")
	fs.Int64Var(&c.maxBytes, "max-bytes", 0, "maximum input size in bytes")
	fs.BoolVar(&c.stdlib, "stdlib", false, "use the encoding/json driver")
	fs.BoolVar(&c.verbose, "v", false, "enable debug logs")
}

// setup applies the global settings and resolves the target shape.
func (c *common) setup(stderr io.Writer) (target, shapejson.ParseOpt, error) {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	shapejson.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	if c.stdlib {
		shapejson.UseStdlibJSONDriver()
	} else {
		shapejson.UseDefaultJSONDriver()
	}

	opt := shapejson.ParseOpt{MaxDepth: c.maxDepth, MaxBytes: c.maxBytes}
	switch c.dup {
	case "ignore":
	case "warn":
		opt.Strictness.OnDuplicateKey = shapejson.Warn
	case "error":
		opt.Strictness.OnDuplicateKey = shapejson.Error
	default:
		return nil, opt, fmt.Errorf("-dup must be ignore, warn or error, got %q", c.dup)
	}

	if c.shape == "" {
		return genericTarget{}, opt, nil
	}
	if c.shapes == "" {
		return nil, opt, errors.New("-shape needs -shapes")
	}
	reg, err := shapefile.LoadFile(c.shapes)
	if err != nil {
		return nil, opt, err
	}
	if s, ok := reg.Object(c.shape); ok {
		return objectTarget{s}, opt, nil
	}
	if s, ok := reg.List(c.shape); ok {
		return listTarget{s}, opt, nil
	}
	return nil, opt, fmt.Errorf("shape %q not defined in %s", c.shape, c.shapes)
}

// target decodes documents, generically or through a shape.
type target interface {
	parse(data []byte, opt shapejson.ParseOpt) (any, error)
	fromFile(path string, opt shapejson.ParseOpt) (any, error)
	fromURL(ctx context.Context, url string, opt shapejson.ParseOpt) (any, error)
}

type genericTarget struct{}

func (genericTarget) parse(data []byte, opt shapejson.ParseOpt) (any, error) {
	return shapejson.Parse(data, opt)
}

func (genericTarget) fromFile(path string, opt shapejson.ParseOpt) (any, error) {
	return shapejson.FromFile(path, opt)
}

func (genericTarget) fromURL(ctx context.Context, url string, opt shapejson.ParseOpt) (any, error) {
	return shapejson.FromURL(ctx, url, opt)
}

type objectTarget struct{ s *shapejson.ObjectShape }

func (t objectTarget) parse(data []byte, opt shapejson.ParseOpt) (any, error) {
	return t.s.Parse(data, opt)
}

func (t objectTarget) fromFile(path string, opt shapejson.ParseOpt) (any, error) {
	return t.s.FromFile(path, opt)
}

func (t objectTarget) fromURL(ctx context.Context, url string, opt shapejson.ParseOpt) (any, error) {
	return t.s.FromURL(ctx, url, opt)
}

type listTarget struct{ s *shapejson.ListShape }

func (t listTarget) parse(data []byte, opt shapejson.ParseOpt) (any, error) {
	return t.s.Parse(data, opt)
}

func (t listTarget) fromFile(path string, opt shapejson.ParseOpt) (any, error) {
	return t.s.FromFile(path, opt)
}

func (t listTarget) fromURL(ctx context.Context, url string, opt shapejson.ParseOpt) (any, error) {
	return t.s.FromURL(ctx, url, opt)
}

func (a *app) decode(ctx context.Context, t target, opt shapejson.ParseOpt, src string) (any, error) {
	switch {
	case src == "-":
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, err
		}
		return t.parse(data, opt)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return t.fromURL(ctx, src, opt)
	}
	return t.fromFile(src, opt)
}

func (a *app) report(src string, err error) {
	fmt.Fprintf(a.stdout, "%s %s\n", a.paint(color.FgRed, "FAIL"), src)
	iss, ok := shapejson.AsIssues(err)
	if !ok {
		fmt.Fprintf(a.stdout, "  %v\n", err)
		return
	}
	for _, it := range iss {
		line := fmt.Sprintf("  %s at %s: %s", it.Code, it.Path, it.Message)
		if it.Offset >= 0 {
			line += fmt.Sprintf(" (offset %d)", it.Offset)
		}
		fmt.Fprintln(a.stdout, line)
	}
}

func (a *app) validateCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	var c common
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}
	t, opt, err := c.setup(a.stderr)
	if err != nil {
		return err
	}
	failed := false
	for _, src := range fs.Args() {
		if _, err := a.decode(ctx, t, opt, src); err != nil {
			a.report(src, err)
			failed = true
			continue
		}
		fmt.Fprintf(a.stdout, "%s %s\n", a.paint(color.FgGreen, "ok"), src)
	}
	if failed {
		return errFailed
	}
	return nil
}

func (a *app) fmtCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	var c common
	var write bool
	c.register(fs)
	fs.BoolVar(&write, "w", false, "write the result back to the source file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}
	t, opt, err := c.setup(a.stderr)
	if err != nil {
		return err
	}
	for _, src := range fs.Args() {
		v, err := a.decode(ctx, t, opt, src)
		if err != nil {
			a.report(src, err)
			return errFailed
		}
		if write && src != "-" && !strings.Contains(src, "://") {
			if err := shapejson.ToFile(v, src); err != nil {
				return err
			}
			continue
		}
		out, err := shapejson.ToJSON(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, out)
	}
	return nil
}

func (a *app) diffCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diff", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	var c common
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errUsage
	}
	t, opt, err := c.setup(a.stderr)
	if err != nil {
		return err
	}
	var texts [2]string
	for i, src := range fs.Args() {
		v, err := a.decode(ctx, t, opt, src)
		if err != nil {
			a.report(src, err)
			return errFailed
		}
		if texts[i], err = shapejson.ToJSON(v); err != nil {
			return err
		}
	}
	if texts[0] == texts[1] {
		return nil
	}
	dmp := diffpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(texts[0], texts[1], false))
	if a.color {
		fmt.Fprintln(a.stdout, dmp.DiffPrettyText(diffs))
		return errFailed
	}
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		case diffpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		default:
			b.WriteString(d.Text)
		}
	}
	fmt.Fprintln(a.stdout, b.String())
	return errFailed
}

func (a *app) genCmd(args []string) error {
	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	var shapes, pkg, only, out string
	var verbose bool
	fs.StringVar(&shapes, "shapes", "", "YAML shape definitions")
	fs.StringVar(&pkg, "pkg", "shapes", "package name of the generated file")
	fs.StringVar(&only, "only", "", "comma-separated shape names to generate (default all)")
	fs.StringVar(&out, "o", "", "output filename (default stdout)")
	fs.BoolVar(&verbose, "v", false, "enable debug logs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if shapes == "" {
		fs.Usage()
		return errUsage
	}
	logf := func(format string, args ...any) {
		if verbose {
			fmt.Fprintf(a.stderr, format+"\n", args...)
		}
	}

	reg, err := shapefile.LoadFile(shapes)
	if err != nil {
		return err
	}
	names := reg.Names()
	if only != "" {
		names = splitCSV(only)
	}
	nodes := make([]ir.Schema, 0, len(names))
	for _, name := range names {
		if s, ok := reg.Object(name); ok {
			nodes = append(nodes, ir.FromObjectShape(s))
			continue
		}
		if s, ok := reg.List(name); ok {
			nodes = append(nodes, ir.FromListShape(s))
			continue
		}
		return fmt.Errorf("shape %q not defined in %s", name, shapes)
	}
	logf("gen: %d shapes from %s into package %s", len(nodes), shapes, pkg)
	code, err := gen.RenderFile(pkg, nodes)
	if err != nil {
		return err
	}
	if out == "" {
		_, err := a.stdout.Write(code)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(out, code, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	logf("wrote generated file: %s", out)
	return nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
