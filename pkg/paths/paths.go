package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/dotseed/pkg/errors"
)

// Environment variable names
const (
	// EnvHome is the standard home directory variable
	EnvHome = "HOME"

	// EnvSandbox is the legacy variable naming the sandbox directory under home
	EnvSandbox = "SANDBOX"
)

// Default names under the home directory
const (
	DefaultProfileName    = ".profile"
	DefaultAltProfileName = ".zprofile"
	DefaultShellRcName    = ".zshrc"
	DefaultManifestName   = "provides.txt"
	DefaultArchiveName    = "provides.tar"

	// AppDirName is the directory name for dotseed's own XDG files
	AppDirName = "dotseed"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"
)

// GetHomeDirectory returns the user's home directory.
// It first tries os.UserHomeDir(), then falls back to the HOME environment variable.
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err == nil && homeDir != "" {
		return homeDir, nil
	}
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	if err == nil {
		return "", errors.New(errors.ErrIO, "unable to determine home directory")
	}
	return "", errors.Wrap(err, errors.ErrIO, "unable to determine home directory")
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := GetHomeDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ExpandHomeIn expands a leading ~ to home rather than to the user's home
// directory. Destinations use it so ~ follows --home.
func ExpandHomeIn(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// ValidateSandbox checks that name is usable as a single directory under home.
func ValidateSandbox(name string) error {
	switch {
	case name == "":
		return errors.New(errors.ErrConfigValid, "sandbox name is required")
	case name == "." || name == "..":
		return errors.Newf(errors.ErrConfigValid, "sandbox name %q is not a directory name", name)
	case strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator):
		return errors.Newf(errors.ErrConfigValid, "sandbox name %q must not contain a path separator", name)
	}
	return nil
}

// Layout maps dotseed's fixed destinations onto a home directory.
type Layout struct {
	Home    string
	Sandbox string
}

// NewLayout returns a Layout rooted at home. An empty home resolves to the
// current user's home directory.
func NewLayout(home, sandbox string) (Layout, error) {
	if home == "" {
		h, err := GetHomeDirectory()
		if err != nil {
			return Layout{}, err
		}
		home = h
	}
	expanded, err := ExpandHome(home)
	if err != nil {
		return Layout{}, err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return Layout{}, errors.Wrapf(err, errors.ErrIO, "failed to get absolute path for home %s", home)
	}
	return Layout{Home: abs, Sandbox: sandbox}, nil
}

// InHome joins a home-relative name onto the home directory. Absolute names
// are returned unchanged.
func (l Layout) InHome(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(l.Home, name)
}

// SandboxDir returns ~/<sandbox>.
func (l Layout) SandboxDir() string {
	return filepath.Join(l.Home, l.Sandbox)
}

// ManifestPath returns the manifest location. Relative names live in the
// sandbox directory.
func (l Layout) ManifestPath(name string) string {
	if name == "" {
		name = DefaultManifestName
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(l.SandboxDir(), name)
}

// ArchivePath returns the archive output location. Relative names live in
// the home directory.
func (l Layout) ArchivePath(name string) string {
	if name == "" {
		name = DefaultArchiveName
	}
	return l.InHome(name)
}

// ConfigFilePath returns $XDG_CONFIG_HOME/dotseed/config.toml.
func ConfigFilePath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = xdg.ConfigHome
	}
	return filepath.Join(configHome, AppDirName, ConfigFileName)
}
