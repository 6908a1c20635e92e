// Package paths provides centralized path handling for kiln.
// Fingerprint identities, build tree layout, and config file discovery
// all go through here so that keys stay stable across runs.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/kiln/pkg/errors"
)

// Well-known file names inside a kiln project.
// These are part of kiln's on-disk contract and are not user-configurable.
const (
	// ConfigFile is the primary project configuration file
	ConfigFile = "kiln.toml"

	// HiddenConfigFile is the dotted variant of the configuration file
	HiddenConfigFile = ".kiln.toml"

	// FingerprintDBFile is the per-variant fingerprint baseline
	FingerprintDBFile = "fingerprints.json"

	// CompileDBFile is the clang compilation database
	CompileDBFile = "compile_commands.json"
)

// Paths resolves locations inside a single kiln project
type Paths struct {
	root string
}

// New creates a Paths anchored at the given project root.
// An empty root means the current working directory.
func New(root string) (*Paths, error) {
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot determine working directory")
		}
		root = cwd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid project root %q", root)
	}
	return &Paths{root: abs}, nil
}

// Root returns the absolute project root
func (p *Paths) Root() string {
	return p.root
}

// Normalize converts a path into its canonical fingerprint identity:
// cleaned, slash-separated, and relative to the project root when the
// path lives inside it. Identities must be byte-stable across runs or
// every run spuriously invalidates the baseline.
func (p *Paths) Normalize(path string) string {
	cleaned := filepath.Clean(path)
	if filepath.IsAbs(cleaned) {
		if rel, err := filepath.Rel(p.root, cleaned); err == nil && !strings.HasPrefix(rel, "..") {
			cleaned = rel
		}
	}
	return filepath.ToSlash(cleaned)
}

// OnDisk converts a fingerprint identity back to a filesystem path,
// resolving project-relative identities against root.
func OnDisk(root, identity string) string {
	p := filepath.FromSlash(identity)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// ConfigPath returns the first project config file that exists,
// or an empty string when the project has none.
func (p *Paths) ConfigPath() string {
	for _, name := range []string{HiddenConfigFile, ConfigFile} {
		candidate := filepath.Join(p.root, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// VariantDir returns the build subdirectory for a variant,
// e.g. build/release.
func (p *Paths) VariantDir(buildPath, variant string) string {
	return filepath.Join(p.root, buildPath, variant)
}

// FingerprintDBPath returns the fingerprint database location for a variant
func (p *Paths) FingerprintDBPath(buildPath, variant string) string {
	return filepath.Join(p.VariantDir(buildPath, variant), FingerprintDBFile)
}

// CompileDBPath returns the compilation database location.
// It sits at the top of the build tree, shared by all variants,
// which is where clangd expects to find it.
func (p *Paths) CompileDBPath(buildPath string) string {
	return filepath.Join(p.root, buildPath, CompileDBFile)
}
