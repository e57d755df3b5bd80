// Package config loads the key/value source the application boots from.
package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/toyz/handspring/internal/errors"
)

// Well-known keys
const (
	KeyScanPackage  = "scan-package"
	KeyContextPath  = "context-path"
	KeyServerAddr   = "server.addr"
	KeyServerEngine = "server.engine"
	KeyDebug        = "debug"
	KeyLogLevel     = "log.level"
)

// Defaults for the optional keys
const (
	DefaultServerAddr   = ":8080"
	DefaultServerEngine = "gin"
)

// EnvPrefix prefixes environment variables that override file values
const EnvPrefix = "HANDSPRING_"

// DefaultFile is loaded when no configuration file is given
const DefaultFile = "application.yaml"

// Source is a flat, read-only key/value store loaded once at startup
type Source struct {
	path   string
	values map[string]string
}

// Load reads and parses a configuration file from disk
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigLoad(path, err).
			WithSuggestion("pass -config or create " + DefaultFile)
	}
	return Parse(path, data)
}

// LoadFS reads and parses a configuration file from fsys
func LoadFS(fsys fs.FS, path string) (*Source, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.ConfigLoad(path, err)
	}
	return Parse(path, data)
}

// Parse decodes data by the extension of name: YAML for .yaml and .yml,
// KEY=VALUE lines for anything else.
func Parse(name string, data []byte) (*Source, error) {
	var (
		values map[string]string
		err    error
	)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		values, err = parseYAML(data)
	default:
		values, err = godotenv.Unmarshal(normalizeEnvKeys(string(data)))
	}
	if err != nil {
		return nil, errors.ConfigLoad(name, err)
	}

	return &Source{path: name, values: values}, nil
}

// FromMap builds a source from literal values
func FromMap(values map[string]string) *Source {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Source{path: "<memory>", values: copied}
}

// Path returns the file the source was loaded from
func (s *Source) Path() string {
	return s.path
}

// Get looks key up. The environment variable HANDSPRING_<KEY> wins over the
// file; in the file the key is tried as written, then with '-' as '.', then
// in env style (a_b_c, A_B_C).
func (s *Source) Get(key string) (string, bool) {
	if v, ok := os.LookupEnv(EnvName(key)); ok {
		return v, true
	}
	if s == nil {
		return "", false
	}
	for _, candidate := range candidates(key) {
		if v, ok := s.values[candidate]; ok {
			return v, true
		}
	}
	return "", false
}

// GetOr returns the value of key or def when absent or blank
func (s *Source) GetOr(key, def string) string {
	if v, ok := s.Get(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

// Bool returns key parsed as a boolean, def when absent or unparsable
func (s *Source) Bool(key string, def bool) bool {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// Require returns the value of key or a ConfigLoad error when absent or blank
func (s *Source) Require(key string) (string, error) {
	v, ok := s.Get(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", errors.MissingConfigKey(s.Path(), key)
	}
	return strings.TrimSpace(v), nil
}

// Keys returns the file keys in sorted order
func (s *Source) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EnvName returns the environment variable that overrides key
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(envStyle(key))
}

func envStyle(key string) string {
	return strings.NewReplacer("-", "_", ".", "_").Replace(key)
}

func candidates(key string) []string {
	out := []string{key}
	seen := map[string]bool{key: true}
	for _, c := range []string{
		strings.ReplaceAll(key, "-", "."),
		envStyle(key),
		strings.ToUpper(envStyle(key)),
	} {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func parseYAML(data []byte) (map[string]string, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	values := make(map[string]string)
	if doc == nil {
		return values, nil
	}

	root, ok := doc.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("top level must be a mapping, got %T", doc)
	}
	flatten("", root, values)
	return values, nil
}

// flatten joins nested mapping keys with dots; sequences become comma lists
func flatten(prefix string, node map[string]interface{}, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		case []interface{}:
			parts := make([]string, len(val))
			for i, item := range val {
				parts[i] = fmt.Sprint(item)
			}
			out[key] = strings.Join(parts, ",")
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// normalizeEnvKeys rewrites '-' in key names to '_' so properties-style
// keys such as scan-package survive the dotenv parser.
func normalizeEnvKeys(src string) string {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		end := strings.IndexAny(line, "=:")
		if end < 0 {
			continue
		}
		lines[i] = strings.ReplaceAll(line[:end], "-", "_") + line[end:]
	}
	return strings.Join(lines, "\n")
}
