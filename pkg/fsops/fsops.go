// Package fsops funnels kiln's own filesystem mutations (build tree
// creation, database and compilation database writes) through synthfs
// pipelines. Build commands mutate the filesystem on their own; this
// package covers everything kiln writes directly.
package fsops

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/kiln/pkg/errors"
	"github.com/arthur-debert/kiln/pkg/logging"
	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/core"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/arthur-debert/synthfs/pkg/synthfs/operations"
	"github.com/rs/zerolog"
)

// Ops executes kiln filesystem operations using synthfs
type Ops struct {
	logger     zerolog.Logger
	filesystem synthfs.FileSystem
}

// New creates a new synthfs-backed Ops
func New() *Ops {
	return &Ops{
		logger:     logging.GetLogger("fsops"),
		filesystem: filesystem.NewOSFileSystem("/"),
	}
}

// MkdirAll creates every directory in dirs, parents included
func (o *Ops) MkdirAll(dirs ...string) error {
	synthOps := make([]synthfs.Operation, 0, len(dirs))
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInvalidInput, "invalid directory path %q", dir)
		}
		if _, err := os.Stat(abs); err == nil {
			continue
		}
		relPath, err := filepath.Rel("/", abs)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInvalidInput, "failed to convert path: %s", abs)
		}

		opID := core.OperationID(fmt.Sprintf("create-dir-%s", abs))
		createOp := operations.NewCreateDirectoryOperation(opID, relPath)
		createOp.SetItem(&directoryItem{path: relPath, mode: 0755})
		synthOps = append(synthOps, synthfs.NewOperationsPackageAdapter(createOp))
	}

	if err := o.run(synthOps); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to create build directories")
	}
	return nil
}

// WriteFile writes data to path through a synthfs pipeline,
// creating or replacing the file.
func (o *Ops) WriteFile(path string, data []byte, mode os.FileMode) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "invalid file path %q", path)
	}
	// synthfs create operations do not replace existing files
	if _, err := os.Lstat(abs); err == nil {
		if err := os.Remove(abs); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot replace %s", abs)
		}
	}
	relPath, err := filepath.Rel("/", abs)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "failed to convert path: %s", abs)
	}

	o.logger.Debug().
		Str("target", abs).
		Int("contentLen", len(data)).
		Msg("Creating write file operation")

	opID := core.OperationID(fmt.Sprintf("write-file-%s", abs))
	createOp := operations.NewCreateFileOperation(opID, relPath)
	createOp.SetItem(&fileItem{path: relPath, content: data, mode: mode})

	if err := o.run([]synthfs.Operation{synthfs.NewOperationsPackageAdapter(createOp)}); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", abs)
	}
	return nil
}

// WriteFileAtomic writes data next to path and renames it into place,
// so readers never observe a half-written file.
func (o *Ops) WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	tmp := path + ".tmp"
	if err := o.WriteFile(tmp, data, mode); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to replace %s", path)
	}
	return nil
}

// run executes the given operations through a synthfs pipeline
func (o *Ops) run(synthOps []synthfs.Operation) error {
	if len(synthOps) == 0 {
		return nil
	}

	pipeline := synthfs.NewMemPipeline()
	for _, op := range synthOps {
		if err := pipeline.Add(op); err != nil {
			return fmt.Errorf("failed to add operation to pipeline: %w", err)
		}
	}

	executor := synthfs.NewExecutor()
	result := executor.Run(context.Background(), pipeline, o.filesystem)
	if result.GetError() != nil {
		o.logger.Error().Err(result.GetError()).Msg("Pipeline execution failed")
		return result.GetError()
	}
	return nil
}

// fileItem implements the interface needed for file operations
type fileItem struct {
	path    string
	content []byte
	mode    fs.FileMode
}

func (f *fileItem) Path() string       { return f.path }
func (f *fileItem) Type() string       { return "file" }
func (f *fileItem) Content() []byte    { return f.content }
func (f *fileItem) Mode() fs.FileMode  { return f.mode }
func (f *fileItem) IsDir() bool        { return false }
func (f *fileItem) ModTime() time.Time { return time.Now() }
func (f *fileItem) Size() int64        { return int64(len(f.content)) }

// directoryItem implements the interface needed for directory operations
type directoryItem struct {
	path string
	mode fs.FileMode
}

func (d *directoryItem) Path() string       { return d.path }
func (d *directoryItem) Type() string       { return "directory" }
func (d *directoryItem) Mode() fs.FileMode  { return d.mode }
func (d *directoryItem) IsDir() bool        { return true }
func (d *directoryItem) ModTime() time.Time { return time.Now() }
func (d *directoryItem) Size() int64        { return 0 }
