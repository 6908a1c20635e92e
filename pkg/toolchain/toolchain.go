// Package toolchain models C/C++ compilation units and turns them into
// the dependency tree the resolver works on. It is the only place that
// knows what a compiler command line looks like; the core treats the
// resulting command strings as opaque text.
package toolchain

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/kiln/pkg/config"
	"github.com/arthur-debert/kiln/pkg/depfile"
	"github.com/arthur-debert/kiln/pkg/paths"
	"github.com/arthur-debert/kiln/pkg/types"
)

// ObjectUnit is one source file compiled to an object file
type ObjectUnit struct {
	Source  string // project-relative source path
	Object  string // project-relative object path
	Headers []string

	compiler  string
	args      []string
	sourceDir string
}

// Command returns the compile command as an argument vector
func (u *ObjectUnit) Command() []string {
	cmd := []string{u.compiler}
	cmd = append(cmd, u.args...)
	cmd = append(cmd, "-I", u.sourceDir)
	cmd = append(cmd, "-c", u.Source)
	cmd = append(cmd, "-o", u.Object)
	return cmd
}

// TargetUnit is the linked target produced from the object files
type TargetUnit struct {
	Objects     []*ObjectUnit
	Libraries   []string
	LibraryDirs []string
	Target      string // project-relative target path

	compiler string
	args     []string
}

// Command returns the link command as an argument vector
func (u *TargetUnit) Command() []string {
	cmd := []string{u.compiler}
	cmd = append(cmd, u.args...)
	for _, o := range u.Objects {
		cmd = append(cmd, o.Object)
	}
	for _, dir := range u.LibraryDirs {
		cmd = append(cmd, "-L"+dir)
	}
	for _, lib := range u.Libraries {
		cmd = append(cmd, "-l:"+lib)
	}
	cmd = append(cmd, "-o", u.Target)
	return cmd
}

// Project is the full set of build units for one variant
type Project struct {
	Target  *TargetUnit
	Objects []*ObjectUnit
}

// FromConfig lays out the build units for a variant: one object per
// source, objects mirrored under build/<variant>/, and one link target.
func FromConfig(cfg *config.Config, variantName string, variant config.Variant, sources []string) *Project {
	variantDir := filepath.ToSlash(filepath.Join(cfg.BuildPath, variantName))

	objects := make([]*ObjectUnit, 0, len(sources))
	for _, s := range sources {
		objects = append(objects, &ObjectUnit{
			Source:    filepath.ToSlash(filepath.Join(cfg.SourcePath, s)),
			Object:    filepath.ToSlash(filepath.Join(variantDir, swapExt(s, ".o"))),
			compiler:  cfg.Compiler,
			args:      variant.Args,
			sourceDir: cfg.SourcePath,
		})
	}

	target := &TargetUnit{
		Objects:     objects,
		Libraries:   cfg.Libraries,
		LibraryDirs: cfg.LibraryDirs,
		Target:      filepath.ToSlash(filepath.Join(variantDir, cfg.Target)),
		compiler:    cfg.Compiler,
		args:        variant.Args,
	}

	return &Project{Target: target, Objects: objects}
}

// LoadDepfiles merges compiler-discovered header dependencies into each
// object unit. Before the first compile no depfiles exist and the units
// stay as they are.
func (p *Project) LoadDepfiles(root string) error {
	for _, obj := range p.Objects {
		rules, err := depfile.Read(paths.OnDisk(root, obj.Object))
		if err != nil {
			return err
		}
		if headers, ok := rules[obj.Object]; ok {
			obj.Headers = headers
		}
	}
	return nil
}

// BuildTree converts the units into the dependency tree: each object
// depends on its source and discovered headers, the target depends on
// every object.
func (p *Project) BuildTree() *types.Node {
	objectNodes := make([]*types.Node, 0, len(p.Objects))
	for _, obj := range p.Objects {
		deps := []*types.Node{types.Input(obj.Source)}
		for _, h := range obj.Headers {
			deps = append(deps, types.Input(filepath.ToSlash(filepath.Clean(h))))
		}
		objectNodes = append(objectNodes, &types.Node{
			Path:    obj.Object,
			Command: strings.Join(obj.Command(), " "),
			Deps:    deps,
		})
	}

	return &types.Node{
		Path:    p.Target.Target,
		Command: strings.Join(p.Target.Command(), " "),
		Deps:    objectNodes,
	}
}

// OutputDirs returns every directory an output lands in, for creation
// before the build runs.
func (p *Project) OutputDirs(root string) []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(outPath string) {
		dir := filepath.Dir(paths.OnDisk(root, outPath))
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	for _, obj := range p.Objects {
		add(obj.Object)
	}
	add(p.Target.Target)
	return dirs
}

// swapExt replaces a path's extension
func swapExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
