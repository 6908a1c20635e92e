// pkg/fingerprint/store_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Filesystem (temp dirs)
// PURPOSE: Test digest computation and baseline load/save semantics

package fingerprint_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/kiln/pkg/fingerprint"
	"github.com/arthur-debert/kiln/pkg/fsops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// md5("") — the digest every absent file maps to
const emptyDigest = "d41d8cd98f00b204e9800998ecf8427e"

func TestFileDigest(t *testing.T) {
	dir := t.TempDir()
	d := fingerprint.NewMD5()

	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	got, err := d.File(path)
	require.NoError(t, err)
	assert.Len(t, got, 32, "MD5 hex digest is 32 chars")

	same, err := d.File(path)
	require.NoError(t, err)
	assert.Equal(t, got, same, "digest must be deterministic")

	require.NoError(t, os.WriteFile(path, []byte("y"), 0644))
	changed, err := d.File(path)
	require.NoError(t, err)
	assert.NotEqual(t, got, changed)
}

func TestFileDigestAbsent(t *testing.T) {
	d := fingerprint.NewMD5()

	got, err := d.File(filepath.Join(t.TempDir(), "missing.o"))
	require.NoError(t, err, "absent is a value, not an error")
	assert.Equal(t, emptyDigest, got)
}

func TestFileDigestDirectory(t *testing.T) {
	d := fingerprint.NewMD5()

	// A directory has no content to digest; treated like absent
	got, err := d.File(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, emptyDigest, got)
}

func TestCommandDigest(t *testing.T) {
	d := fingerprint.NewMD5()

	a := d.Command("clang++ -c main.cpp")
	b := d.Command("clang++ -c main.cpp")
	c := d.Command("clang++ -c main.cpp -O2")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, emptyDigest, d.Command(""))
}

func TestLoadMissingDatabase(t *testing.T) {
	store, err := fingerprint.Load(filepath.Join(t.TempDir(), "fingerprints.json"))
	require.NoError(t, err)
	assert.Empty(t, store.Files)
	assert.Empty(t, store.Commands)
}

func TestLoadMalformedDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fingerprints.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := fingerprint.Load(path)
	require.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fingerprints.json")
	ops := fsops.New()

	store := fingerprint.NewStore()
	store.SetFileDigest("src/main.cpp", "abc123")
	store.SetCommandDigest("build/release/main.o", "def456")

	require.NoError(t, store.Save(path, ops))

	loaded, err := fingerprint.Load(path)
	require.NoError(t, err)

	d, ok := loaded.FileDigest("src/main.cpp")
	assert.True(t, ok)
	assert.Equal(t, "abc123", d)

	d, ok = loaded.CommandDigest("build/release/main.o")
	assert.True(t, ok)
	assert.Equal(t, "def456", d)

	_, ok = loaded.FileDigest("never-seen")
	assert.False(t, ok)
}

func TestSaveReplacesPriorContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fingerprints.json")
	ops := fsops.New()

	first := fingerprint.NewStore()
	first.SetFileDigest("stale-entry", "000")
	require.NoError(t, first.Save(path, ops))

	second := fingerprint.NewStore()
	second.SetFileDigest("fresh-entry", "111")
	require.NoError(t, second.Save(path, ops))

	loaded, err := fingerprint.Load(path)
	require.NoError(t, err)
	_, ok := loaded.FileDigest("stale-entry")
	assert.False(t, ok, "save is a full rewrite, not a merge")
}

func TestRefresh(t *testing.T) {
	dir := t.TempDir()
	d := fingerprint.NewMD5()
	store := fingerprint.NewStore()

	out := filepath.Join(dir, "main.o")
	require.NoError(t, os.WriteFile(out, []byte("object code"), 0644))

	require.NoError(t, store.Refresh("main.o", out, "cc -c main.c", d))

	fileDigest, ok := store.FileDigest("main.o")
	require.True(t, ok)
	want, err := d.File(out)
	require.NoError(t, err)
	assert.Equal(t, want, fileDigest)

	cmdDigest, ok := store.CommandDigest("main.o")
	require.True(t, ok)
	assert.Equal(t, d.Command("cc -c main.c"), cmdDigest)
}
