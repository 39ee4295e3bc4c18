// Package replcore is a read-infer-print loop over already-parsed
// expressions: it never reads source text itself (an external reader
// hands it ast.Expr/ast.TypeExpr values), and exists purely to drive
// the generator and solver interactively, printing each expression's
// inferred type and effect. Styled after the teacher's own REPL —
// liner-backed line editing, colorized output, a `:`-prefixed command
// set — retargeted from program evaluation to type inspection.
package replcore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/peterh/liner"

	"github.com/sunholo/ailang-infer/internal/alias"
	"github.com/sunholo/ailang-infer/internal/ast"
	"github.com/sunholo/ailang-infer/internal/constraint"
	"github.com/sunholo/ailang-infer/internal/fresh"
	"github.com/sunholo/ailang-infer/internal/infer"
	"github.com/sunholo/ailang-infer/internal/manifest"
	"github.com/sunholo/ailang-infer/internal/solve"
	"github.com/sunholo/ailang-infer/internal/subst"
	"github.com/sunholo/ailang-infer/internal/types"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	dim   = color.New(color.Faint).SprintFunc()
)

// Source supplies one parsed expression at a time. An external reader
// (outside this package's scope) implements it over whatever concrete
// syntax it accepts; replcore only ever sees the resulting ast.Expr.
type Source interface {
	// Next returns the next expression to infer, or io.EOF when the
	// input is exhausted.
	Next() (ast.Expr, error)
}

// REPL drives Source through the generator and solver, reporting each
// expression's principal type.
type REPL struct {
	freshSrc   *fresh.Source
	aliases    *alias.Table
	env        map[string]*types.Scheme
	manifest   *manifest.Manifest
	history    []string
	watchFile  string
	engineVers string
}

// New builds a REPL with no external environment.
func New() *REPL {
	return &REPL{
		freshSrc: fresh.NewSource(),
		aliases:  mustEmptyTable(),
		env:      map[string]*types.Scheme{},
	}
}

func mustEmptyTable() *alias.Table {
	t, err := alias.NewTable(nil)
	if err != nil {
		// An empty declaration list cannot fail cycle or construction
		// checks; a non-nil error here would be a bug in alias.NewTable.
		panic(err)
	}
	return t
}

// LoadManifest installs m as the external environment: its primitives
// become resolvable free variables and its aliases become expandable
// type names. path is remembered for WatchManifest.
func (r *REPL) LoadManifest(path string, m *manifest.Manifest) error {
	decls, err := m.AliasDecls()
	if err != nil {
		return err
	}
	table, err := alias.NewTable(decls)
	if err != nil {
		return err
	}
	if err := table.CheckCycles(); err != nil {
		return err
	}
	schemes, err := m.Schemes(r.freshSrc, table)
	if err != nil {
		return err
	}
	r.aliases = table
	r.env = schemes
	r.manifest = m
	r.watchFile = path
	return nil
}

// InferOne infers expr's type against the REPL's current environment
// and prints the result to out.
func (r *REPL) InferOne(expr ast.Expr, out io.Writer) {
	gen := infer.New(r.freshSrc, r.aliases)
	result := gen.Infer(expr, map[string]bool{})

	cs := result.Constraints
	var unresolved []string
	for _, a := range result.Assumptions {
		if s, ok := r.env[a.Name]; ok {
			cs = append(cs, constraint.ExplicitInstance{Use: a.Type, Scheme: s, Location: a.Location})
			continue
		}
		unresolved = append(unresolved, a.Name)
	}

	sub, err := solve.Solve(r.freshSrc, cs)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("type error"), err)
		return
	}

	t := subst.Apply(sub, result.Node.Info().Type)
	eff := defaultedEffect(sub, result.Node.Info().Effect)

	fmt.Fprintf(out, "%s %s\n", cyan("::"), green(types.Print(t)))
	if _, isEmpty := eff.(types.RowEmpty); !isEmpty {
		fmt.Fprintf(out, "   %s %s\n", dim("effect"), types.Print(eff))
	}
	if len(unresolved) > 0 {
		fmt.Fprintf(out, "   %s %s\n", dim("unresolved:"), strings.Join(unresolved, ", "))
	}
}

// defaultedEffect applies sub and, if the result is still a bare
// unconstrained variable, defaults it to the empty row before display
// — a closed top-level expression with no remaining effect evidence
// performs no effects, mirroring the teacher's defaulting pass for
// numeric type classes.
func defaultedEffect(sub subst.Substitution, eff types.Monotype) types.Monotype {
	applied := subst.Apply(sub, eff)
	if _, ok := applied.(types.Var); ok {
		return types.RowEmpty{}
	}
	return applied
}

// Start runs the interactive loop, reading lines with liner and
// handing each to src for parsing. src.Next is expected to read from
// the same underlying line source Start feeds it via stdin prompts;
// this package only orchestrates the prompt/print cycle, not parsing.
func (r *REPL) Start(src Source, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()

	historyFile := filepath.Join(os.TempDir(), ".ailang_infer_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))

	for {
		input, err := line.Prompt("τ> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("Goodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("error"), err)
			continue
		}
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		r.history = append(r.history, input)

		switch strings.TrimSpace(input) {
		case ":quit", ":q":
			return
		case ":help":
			fmt.Fprintln(out, "  :quit    exit")
			fmt.Fprintln(out, "  :history show entered expressions")
			continue
		case ":history":
			for i, h := range r.history {
				fmt.Fprintf(out, "  %d: %s\n", i+1, h)
			}
			continue
		}

		expr, err := src.Next()
		if err != nil {
			if err == io.EOF {
				fmt.Fprintln(out, green("Goodbye!"))
				return
			}
			fmt.Fprintf(out, "%s: %v\n", red("parse error"), err)
			continue
		}
		r.InferOne(expr, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// WatchManifest blocks, reloading the manifest passed to LoadManifest
// whenever its backing file changes on disk, until ctx-equivalent stop
// is requested by closing done. Reload failures are reported on out
// but leave the previous environment in place.
func (r *REPL) WatchManifest(out io.Writer, done <-chan struct{}) error {
	if r.watchFile == "" {
		return fmt.Errorf("replcore: no manifest loaded to watch")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("replcore: starting watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(r.watchFile)); err != nil {
		return fmt.Errorf("replcore: watching %s: %w", r.watchFile, err)
	}

	for {
		select {
		case <-done:
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(r.watchFile) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			m, err := manifest.Load(r.watchFile, r.engineVers)
			if err != nil {
				fmt.Fprintf(out, "%s: %v\n", red("manifest reload failed"), err)
				continue
			}
			if err := r.LoadManifest(r.watchFile, m); err != nil {
				fmt.Fprintf(out, "%s: %v\n", red("manifest reload failed"), err)
				continue
			}
			fmt.Fprintln(out, dim("manifest reloaded"))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "%s: %v\n", red("watch error"), err)
		}
	}
}
