// pkg/display/styles/styles_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test style registry loading from YAML

package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedStylesLoad(t *testing.T) {
	// init() already ran; the registry must hold the semantic names the
	// renderer relies on
	for _, name := range []string{"Header", "Success", "Error", "Muted", "Command", "FilePath"} {
		_, ok := StyleRegistry[name]
		assert.True(t, ok, "missing style %q", name)
	}
}

func TestLoadStylesFromData(t *testing.T) {
	data := []byte(`
colors:
  accent:
    light: "#000000"
    dark: "#FFFFFF"
styles:
  Fancy:
    bold: true
    foreground: accent
`)
	require.NoError(t, LoadStylesFromData(data))
	t.Cleanup(func() {
		require.NoError(t, LoadStylesFromData(embeddedStyles))
	})

	style, ok := StyleRegistry["Fancy"]
	require.True(t, ok)
	assert.True(t, style.GetBold())
}

func TestLoadStylesFromDataMalformed(t *testing.T) {
	assert.Error(t, LoadStylesFromData([]byte("styles: [not a map")))
}

func TestGetStyleUnknownName(t *testing.T) {
	// Unknown names style nothing rather than failing
	assert.Equal(t, "plain", GetStyle("NoSuchStyle").Render("plain"))
}
