// Package loader reads toolchain declaration files and registers what
// they declare.
//
// A declaration file is YAML (.yaml, .yml) or JSON with comments
// (.json, .jsonc). Both are decoded into a yaml.Node tree so every
// declaration keeps the line it was written at.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goplus/kiss/internal/toolchain"
	"github.com/qiniu/x/errors"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// File is the content of one declaration file.
type File struct {
	Path      string
	Compilers []*toolchain.Compiler
	Targets   []*toolchain.Target
}

// SyntaxError reports a malformed declaration.
type SyntaxError struct {
	Loc toolchain.Location
	Msg string
}

func (e *SyntaxError) Error() string {
	return e.Loc.String() + ": " + e.Msg
}

// IsDeclFile reports whether name has the extension of a declaration file.
func IsDeclFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json", ".jsonc":
		return true
	}
	return false
}

// Parse decodes data, the content of the file at path. The extension of
// path selects the format.
func Parse(path string, data []byte) (*File, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f := &File{Path: path}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return f, nil
	}
	p := &parser{file: path}
	if err := p.parseFile(doc.Content[0], f); err != nil {
		return nil, err
	}
	return f, nil
}

// LoadFile reads and parses the declaration file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read toolchain file: %w", err)
	}
	return Parse(path, data)
}

// Register adds every declaration of f to reg, or none of them if one
// of its names is already registered.
func Register(reg *toolchain.Registry, f *File) error {
	for _, c := range f.Compilers {
		if old, ok := reg.Compiler(c.Name); ok {
			return &toolchain.DuplicateNameError{Kind: "compiler", Name: c.Name, First: old.Loc, Second: c.Loc}
		}
	}
	for _, t := range f.Targets {
		if old, ok := reg.Target(t.Name); ok {
			return &toolchain.DuplicateNameError{Kind: "target", Name: t.Name, First: old.Loc, Second: t.Loc}
		}
	}
	for _, c := range f.Compilers {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	for _, t := range f.Targets {
		if err := reg.RegisterTarget(t); err != nil {
			return err
		}
	}
	return nil
}

// LoadDirs loads every declaration file found directly in dirs into reg.
// Directories that do not exist are skipped. Files are read in name
// order. A bad file does not stop the others from loading: every failure
// is reported. It returns the paths of the files loaded.
func LoadDirs(reg *toolchain.Registry, dirs ...string) ([]string, error) {
	var loaded []string
	var errs errors.List
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			errs.Add(fmt.Errorf("failed to read toolchain directory: %w", err))
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !IsDeclFile(e.Name()) {
				continue
			}
			path := filepath.Join(dir, e.Name())
			f, err := LoadFile(path)
			if err != nil {
				errs.Add(err)
				continue
			}
			if err := Register(reg, f); err != nil {
				errs.Add(err)
				continue
			}
			loaded = append(loaded, path)
		}
	}
	return loaded, errs.ToError()
}
