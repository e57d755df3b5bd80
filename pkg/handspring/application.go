package handspring

import (
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/toyz/handspring/internal/config"
	"github.com/toyz/handspring/internal/errors"
	"github.com/toyz/handspring/internal/scanner"
	"github.com/toyz/handspring/internal/utils"
)

// Diagnostics is the leveled console logger used by the runtime
type Diagnostics = utils.DiagnosticSystem

// Config is the flat key/value source the application boots from
type Config = config.Source

// Configuration keys read at boot and by servers
const (
	KeyScanPackage  = config.KeyScanPackage
	KeyContextPath  = config.KeyContextPath
	KeyServerAddr   = config.KeyServerAddr
	KeyServerEngine = config.KeyServerEngine
	KeyDebug        = config.KeyDebug
	KeyLogLevel     = config.KeyLogLevel
)

// NewDiagnostics creates a colorless logger for the named level
// (silent, error, warn, info, verbose, debug) writing to out and errOut.
// A nil out discards; a nil errOut shares out.
func NewDiagnostics(level string, out, errOut io.Writer) *Diagnostics {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = out
	}
	return utils.NewDiagnosticSystemWithWriters(utils.ParseDiagnosticLevel(level), out, errOut)
}

// Application runs the boot pipeline exactly once: load configuration, scan
// the configured namespace, register beans, inject, build the route table.
type Application struct {
	catalog    *Catalog
	configFile string
	config     *config.Source
	sources    fs.FS
	diag       *utils.DiagnosticSystem

	once       sync.Once
	container  *Container
	dispatcher *Dispatcher
	problems   []error
	err        error
}

// Option configures an Application
type Option func(*Application)

// WithConfigFile loads configuration from path on disk
func WithConfigFile(path string) Option {
	return func(a *Application) {
		a.configFile = path
	}
}

// WithConfig uses literal configuration values instead of a file
func WithConfig(values map[string]string) Option {
	return func(a *Application) {
		a.config = config.FromMap(values)
	}
}

// WithSources scans fsys instead of the working directory
func WithSources(fsys fs.FS) Option {
	return func(a *Application) {
		a.sources = fsys
	}
}

// WithDiagnostics routes boot and dispatch logging through d
func WithDiagnostics(d *Diagnostics) Option {
	return func(a *Application) {
		a.diag = d
	}
}

// New creates an application over catalog
func New(catalog *Catalog, opts ...Option) *Application {
	a := &Application{catalog: catalog}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Boot runs the pipeline on the first call; every call returns the same
// dispatcher and error. Non-fatal problems are available from Problems.
func (a *Application) Boot() (*Dispatcher, error) {
	a.once.Do(func() {
		a.dispatcher, a.err = a.boot()
	})
	return a.dispatcher, a.err
}

// Container returns the bean registry, nil before Boot
func (a *Application) Container() *Container {
	return a.container
}

// Problems returns the recoverable errors reported during Boot
func (a *Application) Problems() []error {
	return append([]error(nil), a.problems...)
}

// Config returns the loaded configuration, nil before Boot
func (a *Application) Config() *Config {
	return a.config
}

// Diagnostics returns the logger in use, nil before Boot
func (a *Application) Diagnostics() *Diagnostics {
	return a.diag
}

// FrontController boots the application and wraps its dispatcher
func (a *Application) FrontController() (*FrontController, error) {
	d, err := a.Boot()
	if err != nil {
		return nil, err
	}
	return NewFrontController(d,
		WithDebug(a.config.Bool(config.KeyDebug, false)),
		WithFrontDiagnostics(a.diag),
	), nil
}

func (a *Application) boot() (*Dispatcher, error) {
	src, err := a.loadConfig()
	if err != nil {
		a.fallbackDiagnostics().Problem(err)
		return nil, err
	}
	a.config = src

	if a.diag == nil {
		a.diag = utils.NewDiagnosticSystem(utils.ParseDiagnosticLevel(src.GetOr(config.KeyLogLevel, "info")))
	}
	diag := a.diag
	diag.Section("Booting handspring")

	scanPackage, err := src.Require(config.KeyScanPackage)
	if err != nil {
		diag.Problem(err)
		return nil, err
	}
	diag.PhaseItem("configuration loaded from %s", src.Path())

	sources := a.sources
	if sources == nil {
		sources = os.DirFS(".")
	}

	result, err := scanner.Scan(sources, scanPackage)
	if err != nil {
		diag.Problem(err)
		return nil, err
	}
	a.report(result.Problems)
	diag.PhaseItem("scanned '%s': %d types", scanPackage, len(result.Types))

	a.container = NewContainer(a.catalog, diag)
	a.report(a.container.RegisterAll(result.Types))
	diag.PhaseItem("registered %d beans", a.container.Len())

	a.report(Inject(a.container))
	diag.PhaseItem("injected dependencies")

	table, problems := BuildRoutes(a.container)
	a.report(problems)
	diag.PhaseItem("mapped %d routes", table.Len())

	dispatcher := NewDispatcher(table, src.GetOr(config.KeyContextPath, ""), diag)

	diag.Summary("Boot complete", map[string]interface{}{
		"beans":    a.container.Len(),
		"routes":   table.Len(),
		"problems": len(a.problems),
	})

	return dispatcher, nil
}

func (a *Application) loadConfig() (*config.Source, error) {
	switch {
	case a.config != nil:
		return a.config, nil
	case a.configFile != "":
		return config.Load(a.configFile)
	case a.sources != nil:
		if _, err := fs.Stat(a.sources, config.DefaultFile); err == nil {
			return config.LoadFS(a.sources, config.DefaultFile)
		}
	}
	return config.Load(config.DefaultFile)
}

// report records problems that were already logged where they occurred,
// scanner problems excepted
func (a *Application) report(problems []error) {
	for _, p := range problems {
		if errors.CodeOf(p) == errors.ScanEntryErrorCode || errors.CodeOf(p) == errors.AnnotationSyntaxErrorCode {
			a.diag.Problem(p)
		}
		a.problems = append(a.problems, p)
	}
}

func (a *Application) fallbackDiagnostics() *utils.DiagnosticSystem {
	if a.diag != nil {
		return a.diag
	}
	return utils.NewQuietDiagnostics()
}
