// internal/cli/commands_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Filesystem (temp dirs), sh
// PURPOSE: Test the CLI commands end to end against a toy project

package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/kiln/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeCompiler = `#!/bin/sh
out=""; src=""
while [ $# -gt 0 ]; do
  case "$1" in
    -o) out=$2; shift 2 ;;
    -c) src=$2; shift 2 ;;
    *) shift ;;
  esac
done
if [ -n "$src" ]; then cp "$src" "$out"; else : > "$out"; fi
`

// chdirProject creates a toy project and makes it the working
// directory for the duration of the test
func chdirProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(root, "mycc"), []byte(fakeCompiler), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.cpp"), []byte("int main() {}\n"), 0644))

	configContent := `
target = "demo"
compiler = "./mycc"

[variants.release]
args = []

[variants.debug]
args = []
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "kiln.toml"), []byte(configContent), 0644))

	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(root))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := cli.NewRootCmd()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBuildCommand(t *testing.T) {
	root := chdirProject(t)

	out, err := run(t, "build", "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, out, "Done. 3 commands for release.")
	assert.FileExists(t, filepath.Join(root, "build", "release", "demo"))
}

func TestBuildCommandIsIdempotent(t *testing.T) {
	chdirProject(t)

	_, err := run(t, "build", "--format", "text")
	require.NoError(t, err)

	out, err := run(t, "build", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to do for release.")
}

func TestBuildCommandVariantArg(t *testing.T) {
	root := chdirProject(t)

	out, err := run(t, "build", "debug", "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, out, "for debug.")
	assert.FileExists(t, filepath.Join(root, "build", "debug", "demo"))
}

func TestBuildCommandUnknownVariant(t *testing.T) {
	chdirProject(t)

	_, err := run(t, "build", "profile", "--format", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile")
}

func TestBuildCommandDryRun(t *testing.T) {
	root := chdirProject(t)

	out, err := run(t, "build", "--dry-run", "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, out, "would build")
	assert.Contains(t, out, "Would run 3 commands for release.")
	assert.NoFileExists(t, filepath.Join(root, "build", "release", "demo"))
}

func TestCleanCommand(t *testing.T) {
	root := chdirProject(t)

	_, err := run(t, "build", "--format", "text")
	require.NoError(t, err)

	out, err := run(t, "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed")
	assert.NoDirExists(t, filepath.Join(root, "build"))
}

func TestCleanCommandSingleVariant(t *testing.T) {
	root := chdirProject(t)

	_, err := run(t, "build", "release", "--format", "text")
	require.NoError(t, err)
	_, err = run(t, "build", "debug", "--format", "text")
	require.NoError(t, err)

	_, err = run(t, "clean", "debug")
	require.NoError(t, err)

	assert.NoDirExists(t, filepath.Join(root, "build", "debug"))
	assert.DirExists(t, filepath.Join(root, "build", "release"))
}

func TestCleanCommandUnknownVariant(t *testing.T) {
	chdirProject(t)

	_, err := run(t, "clean", "profile")
	require.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	root := t.TempDir()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(root))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})

	out, err := run(t, "init", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "kiln.toml")

	data, err := os.ReadFile(filepath.Join(root, "kiln.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `target = 'hello'`)

	// A second init must not clobber the existing config
	_, err = run(t, "init", "hello")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "kiln version")
}

func TestHelpTopics(t *testing.T) {
	out, err := run(t, "help", "topics")
	require.NoError(t, err)
	assert.Contains(t, out, "variants")
	assert.Contains(t, out, "fingerprints")
}

func TestHelpTopicContent(t *testing.T) {
	out, err := run(t, "help", "variants")
	require.NoError(t, err)
	assert.Contains(t, out, "variant")
}
