// pkg/paths/paths_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Filesystem (temp dirs)
// PURPOSE: Test identity normalization and build tree layout

package paths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/kiln/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	root := t.TempDir()
	p, err := paths.New(root)
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"relative_stays_relative", "src/main.cpp", "src/main.cpp"},
		{"dot_segments_cleaned", "src/./sub/../main.cpp", "src/main.cpp"},
		{"absolute_inside_root_becomes_relative", filepath.Join(root, "src", "main.cpp"), "src/main.cpp"},
		{"absolute_outside_root_stays_absolute", "/usr/include/stdio.h", "/usr/include/stdio.h"},
		{"trailing_slash_cleaned", "src/", "src"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Normalize(tt.in))
		})
	}
}

func TestNormalizeIsStable(t *testing.T) {
	p, err := paths.New(t.TempDir())
	require.NoError(t, err)

	// Two spellings of the same file must map to one identity.
	a := p.Normalize("build/release/../../src/main.cpp")
	b := p.Normalize("src/main.cpp")
	assert.Equal(t, a, b)
}

func TestOnDisk(t *testing.T) {
	assert.Equal(t, filepath.Join("/proj", "src", "main.cpp"), paths.OnDisk("/proj", "src/main.cpp"))
	assert.Equal(t, "/usr/include/stdio.h", paths.OnDisk("/proj", "/usr/include/stdio.h"))
}

func TestConfigPath(t *testing.T) {
	root := t.TempDir()
	p, err := paths.New(root)
	require.NoError(t, err)

	assert.Empty(t, p.ConfigPath(), "no config yet")

	require.NoError(t, os.WriteFile(filepath.Join(root, paths.ConfigFile), []byte("target = \"main\"\n"), 0644))
	assert.Equal(t, filepath.Join(root, paths.ConfigFile), p.ConfigPath())

	// The hidden variant wins when both exist
	require.NoError(t, os.WriteFile(filepath.Join(root, paths.HiddenConfigFile), []byte("target = \"main\"\n"), 0644))
	assert.Equal(t, filepath.Join(root, paths.HiddenConfigFile), p.ConfigPath())
}

func TestBuildTreeLayout(t *testing.T) {
	root := t.TempDir()
	p, err := paths.New(root)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "build", "debug"), p.VariantDir("build", "debug"))
	assert.Equal(t, filepath.Join(root, "build", "release", "fingerprints.json"), p.FingerprintDBPath("build", "release"))
	assert.Equal(t, filepath.Join(root, "build", "compile_commands.json"), p.CompileDBPath("build"))
}
