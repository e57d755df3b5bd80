package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/handspring/internal/config"
	"github.com/toyz/handspring/internal/errors"
	"github.com/toyz/handspring/internal/utils"
)

var project = map[string]string{
	"go.mod":           "module example.com/hello\n\ngo 1.25\n",
	"main.go":          "package main\n\nfunc main() {}\n",
	"application.yaml": "scan-package: web\ncontext-path: /app\n",
	"web/controller/index.go": `package controller

import "example.com/hello/web/service"

//hand::controller
//hand::mapping index
type IndexController struct {
	//hand::autowired
	iService service.IService
}

//hand::mapping /getName
func (c *IndexController) GetName() string { return c.iService.GetName() }

//hand::mapping broken
func (c *IndexController) Broken(x int) string { return "" }
`,
	"web/service/service.go": `package service

type IService interface {
	GetName() string
}

//hand::service iService
type IndexService struct{}

func (s *IndexService) GetName() string { return "index" }
`,
}

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range project {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func runner(t *testing.T, cfg Config) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, logs bytes.Buffer
	diag := utils.NewDiagnosticSystemWithWriters(utils.DiagnosticVerbose, &logs, &logs)
	return NewRunner(cfg, diag, &out), &out, &logs
}

func TestRunner_Scan(t *testing.T) {
	r, out, _ := runner(t, Config{Root: writeProject(t)})

	require.NoError(t, r.Scan())

	text := out.String()
	assert.Contains(t, text, "web.controller.IndexController [controller,mapping] web/controller/index.go:")
	assert.Contains(t, text, "  bean: indexController")
	assert.Contains(t, text, "  inject iService <- 'iService'")
	assert.Contains(t, text, "  map /getName -> GetName")
	assert.Contains(t, text, "web.service.IService [interface]")
	assert.Contains(t, text, "  bean: iService")

	s := r.Summary()
	assert.Equal(t, "web", s.Namespace)
	assert.Equal(t, 3, s.TypesFound)
	assert.Equal(t, 1, s.Controllers)
	assert.Equal(t, 1, s.Services)
	assert.Equal(t, 1, s.Interfaces)
}

func TestRunner_Routes(t *testing.T) {
	r, out, logs := runner(t, Config{Root: writeProject(t)})

	require.NoError(t, r.Routes())

	assert.Contains(t, out.String(), "/app/index/getName")
	assert.Contains(t, out.String(), "indexController.GetName")
	assert.NotContains(t, out.String(), "Broken")
	assert.Equal(t, 1, r.Summary().Routes)
	require.Len(t, r.Summary().Problems, 1)
	assert.Contains(t, logs.String(), "handlers take no arguments")
}

func TestRunner_GenAndClean(t *testing.T) {
	root := writeProject(t)
	r, _, _ := runner(t, Config{Root: root})

	require.NoError(t, r.Gen())

	generated := filepath.Join(root, utils.GeneratedFileName)
	assert.Equal(t, generated, r.Summary().GeneratedFile)

	code, err := os.ReadFile(generated)
	require.NoError(t, err)
	assert.Contains(t, string(code), "package main")
	assert.Contains(t, string(code), `"example.com/hello/web/controller"`)
	assert.Contains(t, string(code), `Provide("web.service.IndexService", handspring.Zero[service.IndexService]())`)
	assert.Contains(t, string(code), `Interface("web.service.IService", handspring.InterfaceOf[service.IService]())`)

	cleaner, _, _ := runner(t, Config{Root: root})
	require.NoError(t, cleaner.Clean())
	assert.Equal(t, []string{generated}, cleaner.Summary().RemovedFiles)
	assert.NoFileExists(t, generated)
}

func TestRunner_GenWithCustomModuleAndOut(t *testing.T) {
	root := writeProject(t)
	out := filepath.Join(root, "web", "autogen_catalog.go")
	r, _, _ := runner(t, Config{Root: root, Out: out, ModuleName: "corp.example/custom"})

	require.NoError(t, r.Gen())

	code, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(code), "package main", "empty output directory falls back to main")
	assert.Contains(t, string(code), `"corp.example/custom/web/service"`)
}

func TestRunner_MissingConfig(t *testing.T) {
	r, _, _ := runner(t, Config{Root: t.TempDir()})

	err := r.Scan()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConfigLoad)
}

func TestRunner_ConfigWithoutScanPackage(t *testing.T) {
	root := writeProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "other.env"), []byte("DEBUG=true\n"), 0o644))

	r, _, _ := runner(t, Config{Root: root, ConfigFile: "other.env"})
	err := r.Routes()
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.KeyScanPackage)
}
