// Package compiledb writes the clang compilation database
// (compile_commands.json) for a project, so clangd and friends see the
// exact commands kiln would run. It is a side artifact: produced from
// the same units as the dependency tree, independent of what actually
// gets rebuilt.
package compiledb

import (
	"encoding/json"
	"path/filepath"

	"github.com/arthur-debert/kiln/pkg/errors"
	"github.com/arthur-debert/kiln/pkg/paths"
	"github.com/arthur-debert/kiln/pkg/toolchain"
)

// Entry is one compilation database record
type Entry struct {
	Directory string   `json:"directory"`
	Arguments []string `json:"arguments"`
	File      string   `json:"file"`
}

// Entries builds the database records for a project: one per object,
// plus the link step keyed on its first object.
func Entries(root string, project *toolchain.Project) []Entry {
	entries := make([]Entry, 0, len(project.Objects)+1)
	for _, obj := range project.Objects {
		entries = append(entries, Entry{
			Directory: root,
			Arguments: obj.Command(),
			File:      filepath.Join(root, filepath.FromSlash(obj.Source)),
		})
	}
	if len(project.Objects) > 0 {
		entries = append(entries, Entry{
			Directory: root,
			Arguments: project.Target.Command(),
			File:      paths.OnDisk(root, project.Objects[0].Object),
		})
	}
	return entries
}

// Encode renders the entries as indented JSON
func Encode(entries []Entry) ([]byte, error) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot encode compilation database")
	}
	return append(data, '\n'), nil
}
