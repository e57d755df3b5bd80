package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/handspring/internal/config"
	"github.com/toyz/handspring/internal/errors"
	"github.com/toyz/handspring/internal/generator"
	"github.com/toyz/handspring/internal/models"
	"github.com/toyz/handspring/internal/scanner"
	"github.com/toyz/handspring/internal/utils"
	"github.com/toyz/handspring/pkg/handspring"
)

// Summary counts what the last command found and produced
type Summary struct {
	Namespace     string
	TypesFound    int
	Controllers   int
	Services      int
	Interfaces    int
	Routes        int
	Problems      []error
	GeneratedFile string
	RemovedFiles  []string
}

// Runner executes the CLI commands. Results go to out, progress and
// problems to the diagnostics system.
type Runner struct {
	cfg      Config
	diag     *utils.DiagnosticSystem
	out      io.Writer
	resolver *ModuleResolver
	summary  Summary
}

// NewRunner creates a runner
func NewRunner(cfg Config, diag *utils.DiagnosticSystem, out io.Writer) *Runner {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.ConfigFile == "" {
		cfg.ConfigFile = config.DefaultFile
	}
	return &Runner{
		cfg:      cfg,
		diag:     diag,
		out:      out,
		resolver: NewModuleResolver(),
	}
}

// Summary returns the counts of the last command
func (r *Runner) Summary() Summary {
	return r.summary
}

// Scan prints every discovered type with its markers
func (r *Runner) Scan() error {
	result, err := r.scan()
	if err != nil {
		return err
	}

	for _, td := range result.Types {
		var kinds []string
		for _, m := range td.Markers {
			kinds = append(kinds, m.Type.String())
		}
		label := td.Kind.String()
		if len(kinds) > 0 {
			label = strings.Join(kinds, ",")
		}
		fmt.Fprintf(r.out, "%s [%s] %s\n", td.QualifiedName, label, td.Position())

		if td.IsComponent() {
			fmt.Fprintf(r.out, "  bean: %s\n", td.BeanName())
		}
		for _, f := range td.InjectionPoints() {
			fmt.Fprintf(r.out, "  inject %s <- '%s'\n", f.Name, f.TargetName())
		}
		for _, m := range td.Routes() {
			fmt.Fprintf(r.out, "  map %s -> %s\n", m.Mapping.Path(), m.Name)
		}
	}
	return nil
}

// Routes prints the route table derived from declarations alone
func (r *Runner) Routes() error {
	result, err := r.scan()
	if err != nil {
		return err
	}

	contextPath := r.contextPath()
	routes, problems := handspring.PlanRoutes(result.Types)
	r.report(problems)
	r.summary.Routes = len(routes)

	for _, route := range routes {
		fmt.Fprintf(r.out, "%-32s %s.%s  (%s)\n", contextPath+route.Pattern, route.BeanName, route.Method, route.Location)
	}
	return nil
}

// Gen writes the catalog file
func (r *Runner) Gen() error {
	result, err := r.scan()
	if err != nil {
		return err
	}

	out := r.cfg.Out
	if out == "" {
		out = filepath.Join(r.cfg.Root, utils.GeneratedFileName)
	}
	outDir := filepath.Dir(out)

	rel, err := filepath.Rel(r.cfg.Root, outDir)
	if err != nil {
		return errors.WrapFileSystemError("resolve", outDir, err)
	}
	modulePath, err := r.resolver.ResolveImportPath(r.cfg.ModuleName, r.cfg.Root)
	if err != nil {
		return errors.WrapGenerateError("catalog", err)
	}
	pkg, err := r.resolver.PackageName(outDir, "main")
	if err != nil {
		return errors.WrapFileSystemError("read", outDir, err)
	}
	r.diag.Verbose("module path %s, package %s", modulePath, pkg)

	gen := generator.New(generator.Options{
		Package:    pkg,
		ModulePath: modulePath,
		Namespace:  r.summary.Namespace,
		Dir:        rel,
		FileName:   filepath.Base(out),
	})
	code, err := gen.Generate(result.Types)
	if err != nil {
		return err
	}
	r.report(gen.Problems())

	if err := os.WriteFile(out, code, 0o644); err != nil {
		return errors.WrapFileSystemError("write", out, err)
	}
	r.summary.GeneratedFile = out
	r.diag.PhaseItem("wrote %s", out)
	return nil
}

// Clean removes generated catalog files under the root
func (r *Runner) Clean() error {
	removed, err := utils.CleanGeneratedFiles(r.cfg.Root)
	r.summary.RemovedFiles = removed
	for _, f := range removed {
		r.diag.List("removed %s", f)
	}
	if err != nil {
		return errors.WrapFileSystemError("clean", r.cfg.Root, err)
	}
	return nil
}

func (r *Runner) configPath() string {
	if filepath.IsAbs(r.cfg.ConfigFile) {
		return r.cfg.ConfigFile
	}
	return filepath.Join(r.cfg.Root, r.cfg.ConfigFile)
}

func (r *Runner) loadConfig() (*config.Source, error) {
	return config.Load(r.configPath())
}

func (r *Runner) contextPath() string {
	src, err := r.loadConfig()
	if err != nil {
		return ""
	}
	return handspring.NewDispatcher(nil, src.GetOr(config.KeyContextPath, ""), nil).ContextPath()
}

func (r *Runner) scan() (*scanner.Result, error) {
	src, err := r.loadConfig()
	if err != nil {
		return nil, err
	}
	namespace, err := src.Require(config.KeyScanPackage)
	if err != nil {
		return nil, err
	}
	r.summary.Namespace = namespace
	r.diag.Verbose("scanning '%s' under %s", namespace, r.cfg.Root)

	result, err := scanner.Scan(os.DirFS(r.cfg.Root), namespace)
	if err != nil {
		return nil, err
	}
	r.report(result.Problems)

	r.summary.TypesFound = len(result.Types)
	for _, td := range result.Types {
		switch {
		case td.IsController():
			r.summary.Controllers++
		case td.IsService():
			r.summary.Services++
		case td.Kind == models.KindInterface:
			r.summary.Interfaces++
		}
	}
	return result, nil
}

func (r *Runner) report(problems []error) {
	for _, p := range problems {
		r.diag.Problem(p)
	}
	r.summary.Problems = append(r.summary.Problems, problems...)
}
