package manager

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"veritor-hq/veritor/pkg/pcl/ast"
	"veritor-hq/veritor/pkg/pcl/parser"
)

// LoaderConfig controls how policy files are discovered and validated.
type LoaderConfig struct {
	// MaxFileSize is the largest definition file accepted, in bytes.
	MaxFileSize int64

	// AllowedExtensions lists the file extensions treated as policy
	// definitions.
	AllowedExtensions []string

	// SkipHidden controls whether dotfiles and dot-directories are
	// ignored during directory walks.
	SkipHidden bool
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		MaxFileSize:       1 << 20, // 1 MiB
		AllowedExtensions: []string{".yaml", ".yml"},
		SkipHidden:        true,
	}
}

// Loader reads policy definitions from the file system.
type Loader struct {
	config *LoaderConfig
}

// NewLoader creates a loader with the given configuration.
func NewLoader(config *LoaderConfig) *Loader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	return &Loader{config: config}
}

// LoadFile reads and decodes a single policy definition. The raw bytes
// are returned alongside the decoded policy so callers can persist the
// source as loaded.
func (l *Loader) LoadFile(path string) (*ast.Policy, []byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, &LoadError{FilePath: path, Message: "file not found", Cause: err}
		}
		return nil, nil, &LoadError{FilePath: path, Message: "failed to access file", Cause: err}
	}
	if !info.Mode().IsRegular() {
		return nil, nil, &LoadError{FilePath: path, Message: "not a regular file"}
	}
	if info.Size() > l.config.MaxFileSize {
		return nil, nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), l.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &LoadError{FilePath: path, Message: "failed to read file", Cause: err}
	}
	if !utf8.Valid(data) {
		return nil, nil, &LoadError{FilePath: path, Message: "file contains invalid UTF-8 encoding"}
	}

	policy, err := parser.ParsePolicy(data, path)
	if err != nil {
		return nil, nil, &LoadError{FilePath: path, Message: "definition decoding failed", Cause: err}
	}
	return policy, data, nil
}

// LoadDirectory reads every policy definition under dir recursively.
// It returns the successfully decoded policies plus an *ErrorList when
// some files failed; only a fully failed load returns no policies.
func (l *Loader) LoadDirectory(dir string) ([]*ast.Policy, map[string][]byte, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, &LoadError{FilePath: dir, Message: "directory not found", Cause: err}
		}
		return nil, nil, &LoadError{FilePath: dir, Message: "failed to access directory", Cause: err}
	}
	if !info.IsDir() {
		return nil, nil, &LoadError{FilePath: dir, Message: "not a directory"}
	}

	files, err := l.collectFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, &LoadError{FilePath: dir, Message: "no policy files found in directory"}
	}

	var policies []*ast.Policy
	sources := make(map[string][]byte)
	errList := &ErrorList{}
	for _, path := range files {
		policy, data, err := l.LoadFile(path)
		if err != nil {
			errList.Add(err)
			continue
		}
		policies = append(policies, policy)
		sources[policy.ID] = data
	}

	if len(policies) == 0 && errList.HasErrors() {
		return nil, nil, errList
	}
	if errList.HasErrors() {
		return policies, sources, errList
	}
	return policies, sources, nil
}

// collectFiles walks dir and returns every policy file path, sorted for
// deterministic load order.
func (l *Loader) collectFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if l.config.SkipHidden && strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !l.hasValidExtension(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, &LoadError{FilePath: dir, Message: "failed to walk directory", Cause: err}
	}

	return files, nil
}

func (l *Loader) hasValidExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, valid := range l.config.AllowedExtensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}
