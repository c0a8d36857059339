package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestEnvironment is a throwaway home directory and a directory of source
// dotfiles, both under t.TempDir().
type TestEnvironment struct {
	HomeDir   string
	SourceDir string

	t *testing.T
}

// NewTestEnvironment creates the directories and points HOME,
// XDG_CONFIG_HOME and XDG_STATE_HOME into them.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	root := t.TempDir()
	env := &TestEnvironment{
		HomeDir:   filepath.Join(root, "home"),
		SourceDir: filepath.Join(root, "src"),
		t:         t,
	}
	for _, dir := range []string{env.HomeDir, env.SourceDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", env.HomeDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("SANDBOX", "")

	return env
}

// HomePath joins rel onto the home directory.
func (e *TestEnvironment) HomePath(rel string) string {
	return filepath.Join(e.HomeDir, filepath.FromSlash(rel))
}

// WriteHomeFile creates a file under the home directory, parents included.
func (e *TestEnvironment) WriteHomeFile(rel, content string) string {
	e.t.Helper()
	return e.write(e.HomePath(rel), content)
}

// WriteSource creates a source dotfile and returns its path.
func (e *TestEnvironment) WriteSource(name, content string) string {
	e.t.Helper()
	return e.write(filepath.Join(e.SourceDir, name), content)
}

// WriteManifest writes ~/<sandbox>/provides.txt listing entries.
func (e *TestEnvironment) WriteManifest(sandbox string, entries ...string) string {
	e.t.Helper()
	body := strings.Join(entries, "\n")
	if len(entries) > 0 {
		body += "\n"
	}
	return e.write(filepath.Join(e.HomeDir, sandbox, "provides.txt"), body)
}

// ReadHomeFile returns the content of a file under the home directory.
func (e *TestEnvironment) ReadHomeFile(rel string) string {
	e.t.Helper()
	data, err := os.ReadFile(e.HomePath(rel))
	if err != nil {
		e.t.Fatalf("Failed to read %s: %v", rel, err)
	}
	return string(data)
}

// HomeFileExists reports whether anything, including a dangling symlink,
// is at rel.
func (e *TestEnvironment) HomeFileExists(rel string) bool {
	_, err := os.Lstat(e.HomePath(rel))
	return err == nil
}

func (e *TestEnvironment) write(path, content string) string {
	e.t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		e.t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		e.t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// ChdirSource makes SourceDir the working directory for the rest of the
// test, so relative source paths resolve against it. Not safe with
// t.Parallel.
func (e *TestEnvironment) ChdirSource() {
	e.t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		e.t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(e.SourceDir); err != nil {
		e.t.Fatalf("Failed to chdir to %s: %v", e.SourceDir, err)
	}
	e.t.Cleanup(func() { _ = os.Chdir(wd) })
}
