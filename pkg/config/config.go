// Package config loads and validates the project configuration that
// drives a kiln build: where sources live, which compiler and flags to
// use, and what to link.
package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/kiln/pkg/errors"
	"github.com/arthur-debert/kiln/pkg/logging"
	"github.com/arthur-debert/kiln/pkg/paths"
)

var log = logging.GetLogger("config")

// DefaultVariant is the variant built when none is named
const DefaultVariant = "release"

// Variant holds the per-variant compiler arguments
type Variant struct {
	Args []string `koanf:"args"`
}

// Config is a fully merged project configuration
type Config struct {
	BuildPath      string             `koanf:"build_path"`
	SourcePath     string             `koanf:"source_path"`
	Target         string             `koanf:"target"`
	Compiler       string             `koanf:"compiler"`
	Sources        []string           `koanf:"sources"`
	SourcesPattern string             `koanf:"sources_pattern"`
	Libraries      []string           `koanf:"libraries"`
	LibraryDirs    []string           `koanf:"library_dirs"`
	Variants       map[string]Variant `koanf:"variants"`
}

// Load merges the embedded defaults with the project's kiln.toml.
// A project without a config file gets the defaults, which still fail
// validation until a target is set.
func Load(p *paths.Paths) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	if configPath := p.ConfigPath(); configPath != "" {
		log.Debug().Str("path", configPath).Msg("Loading project config")
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", configPath)
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Target == "" {
		return errors.New(errors.ErrConfigValid, "config is missing a target name")
	}
	if c.Compiler == "" {
		return errors.New(errors.ErrConfigValid, "config is missing a compiler")
	}
	if c.BuildPath == "" || c.SourcePath == "" {
		return errors.New(errors.ErrConfigValid, "build_path and source_path must be set")
	}
	return nil
}

// Variant looks up a build variant by name. Unknown names fail fast,
// before any resolution work happens.
func (c *Config) Variant(name string) (Variant, error) {
	if name == "" {
		name = DefaultVariant
	}
	v, ok := c.Variants[name]
	if !ok {
		known := make([]string, 0, len(c.Variants))
		for k := range c.Variants {
			known = append(known, k)
		}
		sort.Strings(known)
		return Variant{}, errors.Newf(errors.ErrVariantUnknown,
			"unknown build variant %q (have: %s)", name, strings.Join(known, ", "))
	}
	return v, nil
}

// ExpandSources returns the project's source files relative to
// source_path: the explicit sources list plus everything matched by
// sources_pattern, deduplicated, in stable order.
func (c *Config) ExpandSources(root string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	add := func(rel string) {
		rel = filepath.ToSlash(filepath.Clean(rel))
		if !seen[rel] {
			seen[rel] = true
			out = append(out, rel)
		}
	}

	for _, s := range c.Sources {
		add(s)
	}

	if c.SourcesPattern != "" {
		sourceDir := filepath.Join(root, c.SourcePath)
		matched, err := globSources(sourceDir, c.SourcesPattern)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess,
				"cannot search for sources in %s", sourceDir)
		}
		sort.Strings(matched)
		for _, m := range matched {
			add(m)
		}
	}

	return out, nil
}

// globSources walks dir and returns paths (relative to dir) matching
// pattern. A leading "**/" makes the remainder match at any depth.
func globSources(dir, pattern string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	recursive := false
	if strings.HasPrefix(pattern, "**/") {
		recursive = true
		pattern = strings.TrimPrefix(pattern, "**/")
	}

	var matches []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		candidate := filepath.Base(rel)
		if !recursive {
			// Non-recursive patterns only match at the top level
			if filepath.Dir(rel) != "." {
				return nil
			}
			candidate = rel
		}
		ok, err := filepath.Match(pattern, candidate)
		if err != nil {
			return fmt.Errorf("invalid sources pattern %q: %w", pattern, err)
		}
		if ok {
			matches = append(matches, filepath.ToSlash(rel))
		}
		return nil
	})
	return matches, err
}
