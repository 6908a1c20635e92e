package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/kiln/pkg/errors"
	"github.com/arthur-debert/kiln/pkg/paths"
)

// starterConfig is what `kiln init` writes for a new project
type starterConfig struct {
	Target         string   `toml:"target"`
	Compiler       string   `toml:"compiler"`
	BuildPath      string   `toml:"build_path"`
	SourcePath     string   `toml:"source_path"`
	SourcesPattern string   `toml:"sources_pattern"`
	Libraries      []string `toml:"libraries"`
}

// WriteStarter creates a kiln.toml for a new project. It refuses to
// overwrite an existing config.
func WriteStarter(p *paths.Paths, target string) (string, error) {
	if existing := p.ConfigPath(); existing != "" {
		return "", errors.Newf(errors.ErrConfigValid, "project already has a config at %s", existing)
	}
	if target == "" {
		target = "main"
	}

	starter := starterConfig{
		Target:         target,
		Compiler:       "clang++",
		BuildPath:      "build",
		SourcePath:     "src",
		SourcesPattern: "**/*.cpp",
		Libraries:      []string{},
	}
	data, err := toml.Marshal(starter)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "cannot encode starter config")
	}

	configPath := filepath.Join(p.Root(), paths.ConfigFile)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", configPath)
	}
	return configPath, nil
}
