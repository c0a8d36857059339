package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotseed/pkg/archive"
	"github.com/arthur-debert/dotseed/pkg/deploy"
	"github.com/arthur-debert/dotseed/pkg/errors"
	"github.com/arthur-debert/dotseed/pkg/logging"
	"github.com/arthur-debert/dotseed/pkg/paths"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment variable dotseed reads besides SANDBOX.
const EnvPrefix = "DOTSEED_"

// Config is the effective dotseed configuration.
type Config struct {
	Home    string  `koanf:"home" toml:"home"`
	Sandbox string  `koanf:"sandbox" toml:"sandbox"`
	Sources Sources `koanf:"sources" toml:"sources"`
	Targets Targets `koanf:"targets" toml:"targets"`
	Archive Archive `koanf:"archive" toml:"archive"`
}

// Sources are the dotfiles being deployed, relative to the working directory.
type Sources struct {
	Profile string `koanf:"profile" toml:"profile"`
	ShellRc string `koanf:"shell_rc" toml:"shell_rc"`
}

// Targets are destination names relative to home.
type Targets struct {
	Profile    string `koanf:"profile" toml:"profile"`
	AltProfile string `koanf:"alt_profile" toml:"alt_profile"`
	ShellRc    string `koanf:"shell_rc" toml:"shell_rc"`
}

// Archive configures the manifest and the archive built from it.
type Archive struct {
	Manifest    string `koanf:"manifest" toml:"manifest"`
	Output      string `koanf:"output" toml:"output"`
	Compression string `koanf:"compression" toml:"compression"`
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// ConfigFile is an explicit config file; it must exist. When empty the
	// XDG config file is used if present.
	ConfigFile string

	// Overrides are flag values keyed by config key ("archive.output").
	Overrides map[string]interface{}
}

// Load builds the configuration from, in increasing precedence: embedded
// defaults, the config file, the SANDBOX and DOTSEED_* environment
// variables, and opts.Overrides.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	configFile := opts.ConfigFile
	required := configFile != ""
	if !required {
		configFile = paths.ConfigFilePath()
	}
	if err := loadFile(k, configFile, required); err != nil {
		return nil, err
	}

	if sandbox := os.Getenv(paths.EnvSandbox); sandbox != "" {
		if err := k.Load(confmap.Provider(map[string]interface{}{"sandbox": sandbox}, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load SANDBOX")
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load flag overrides")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to decode configuration")
	}
	log := logging.GetLogger("config")
	log.Debug().Str("sandbox", cfg.Sandbox).Str("home", cfg.Home).Msg("Configuration loaded")
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string, required bool) error {
	log := logging.GetLogger("config")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			log.Trace().Str("path", path).Msg("No config file")
			return nil
		}
		return errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config file %s", path).WithDetail("path", path)
	}

	var parser koanf.Parser = toml.Parser()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path).WithDetail("path", path)
	}
	log.Debug().Str("path", path).Msg("Loaded config file")
	return nil
}

// envKey maps DOTSEED_ARCHIVE_COMPRESSION to archive.compression: the first
// underscore after the prefix separates section from key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if key == "" {
		return ""
	}
	return strings.Replace(key, "_", ".", 1)
}

// manifestIsAbsolute reports whether the manifest location is independent of
// the sandbox.
func (c *Config) manifestIsAbsolute() bool {
	m := c.Archive.Manifest
	return filepath.IsAbs(m) || m == "~" || strings.HasPrefix(m, "~/")
}

// Validate checks values that cannot be decoded into a bad state.
func (c *Config) Validate() error {
	if _, err := archive.ParseCompression(c.Archive.Compression); err != nil {
		return errors.Wrap(err, errors.ErrConfigValid, "archive.compression")
	}
	if !c.manifestIsAbsolute() {
		if err := paths.ValidateSandbox(c.Sandbox); err != nil {
			return errors.Wrap(err, errors.ErrConfigValid, "set SANDBOX, --sandbox or an absolute archive.manifest")
		}
	}
	for key, v := range map[string]string{
		"sources.profile":     c.Sources.Profile,
		"sources.shell_rc":    c.Sources.ShellRc,
		"targets.profile":     c.Targets.Profile,
		"targets.alt_profile": c.Targets.AltProfile,
		"targets.shell_rc":    c.Targets.ShellRc,
		"archive.output":      c.Archive.Output,
	} {
		if strings.TrimSpace(v) == "" {
			return errors.Newf(errors.ErrConfigValid, "%s must not be empty", key)
		}
	}
	return nil
}

// Options resolves the configuration into explicit deployer options.
func (c *Config) Options() (deploy.Options, error) {
	if err := c.Validate(); err != nil {
		return deploy.Options{}, err
	}
	layout, err := paths.NewLayout(c.Home, c.Sandbox)
	if err != nil {
		return deploy.Options{}, err
	}
	compression, _ := archive.ParseCompression(c.Archive.Compression)

	profileSrc, err := sourcePath(c.Sources.Profile)
	if err != nil {
		return deploy.Options{}, err
	}
	shellRcSrc, err := sourcePath(c.Sources.ShellRc)
	if err != nil {
		return deploy.Options{}, err
	}
	// Destinations live in the seeded home, so ~ means that home.
	inHome := func(p string) string { return paths.ExpandHomeIn(p, layout.Home) }

	return deploy.Options{
		Home:             layout.Home,
		ProfileSource:    profileSrc,
		ShellRcSource:    shellRcSrc,
		ProfileTarget:    inHome(c.Targets.Profile),
		AltProfileTarget: inHome(c.Targets.AltProfile),
		ShellRcTarget:    inHome(c.Targets.ShellRc),
		ManifestPath:     layout.ManifestPath(inHome(c.Archive.Manifest)),
		ArchivePath:      layout.ArchivePath(inHome(c.Archive.Output)),
		Compression:      compression,
	}, nil
}

// sourcePath makes a source path absolute against the working directory.
// Sources are read from the invoking user's tree, so ~ is that user's home.
func sourcePath(p string) (string, error) {
	expanded, err := paths.ExpandHome(p)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrIO, "cannot resolve %s", p)
	}
	return abs, nil
}

// TOML renders the configuration as a TOML document.
func (c *Config) TOML() (string, error) {
	out, err := gotoml.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "cannot encode configuration")
	}
	return string(out), nil
}
