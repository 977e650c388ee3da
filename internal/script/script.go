// Package script runs YAML assertion scripts through chifir chains.
// A script is a list of cases; each case names a value and the chain of
// steps to check it with. Scripts back `chifir run` and `chifir watch`.
package script

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/artie-owlet/chifir/internal/logging"
)

// Script is a collection of assertion cases.
type Script struct {
	Version int    `yaml:"version"`
	Cases   []Case `yaml:"cases"`

	// Path is the file the script was loaded from.
	Path string `yaml:"-"`
}

// Case is a single value and the steps that check it.
type Case struct {
	ID    string `yaml:"id"`
	Value any    `yaml:"value,omitempty"`
	File  string `yaml:"file,omitempty"` // YAML or JSON document, relative to the script
	Async bool   `yaml:"async,omitempty"`
	Steps []Step `yaml:"steps"`
}

// Load reads a YAML script file from disk, resolves case files and
// validates every step.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path

	dir := filepath.Dir(path)
	for i := range s.Cases {
		c := &s.Cases[i]
		if c.File == "" {
			continue
		}
		v, err := loadValue(filepath.Join(dir, c.File))
		if err != nil {
			return nil, fmt.Errorf("%s: case %s: %w", path, c.ID, err)
		}
		c.Value = v
	}
	logging.ScriptDebug("loaded %s: %d cases", path, len(s.Cases))
	return s, nil
}

// Parse decodes a script and validates it.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script YAML: %w", err)
	}

	seen := make(map[string]bool, len(s.Cases))
	for i := range s.Cases {
		c := &s.Cases[i]
		if c.ID == "" {
			c.ID = fmt.Sprintf("case-%d", i+1)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate case id %q", c.ID)
		}
		seen[c.ID] = true

		if c.File != "" && c.Value != nil {
			return nil, fmt.Errorf("case %s: value and file are mutually exclusive", c.ID)
		}
		if _, err := compile[syncChain](c.Steps); err != nil {
			return nil, fmt.Errorf("case %s: %w", c.ID, err)
		}
	}
	return &s, nil
}

func loadValue(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// JSON is valid YAML.
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return v, nil
}

// LoadAll loads scripts concurrently and returns them in the order given.
func LoadAll(ctx context.Context, paths []string) ([]*Script, error) {
	scripts := make([]*Script, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := Load(p)
			if err != nil {
				return err
			}
			scripts[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scripts, nil
}

// Expand resolves files and directories into the script files they hold.
// Directories are walked for *.yaml and *.yml files.
func Expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && IsScriptFile(path) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// IsScriptFile reports whether path has a script extension.
func IsScriptFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// DefaultScriptDir returns the canonical script directory for a workspace.
func DefaultScriptDir(workspace string) string {
	return filepath.Join(workspace, ".chifir", "scripts")
}
