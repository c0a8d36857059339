package dotseed

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/arthur-debert/dotseed/internal/version"
	"github.com/arthur-debert/dotseed/pkg/config"
	"github.com/arthur-debert/dotseed/pkg/errors"
	"github.com/arthur-debert/dotseed/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sandbox = "devbox"

func seed(t *testing.T) *testutil.TestEnvironment {
	t.Helper()
	env := testutil.NewTestEnvironment(t)
	env.WriteSource("dot-profile", "export EDITOR=vi\n")
	env.WriteSource("dot-zshrc", "setopt autocd\n")
	env.WriteHomeFile("notes/todo.md", "buy milk\n")
	env.WriteManifest(sandbox, "notes/todo.md")
	env.ChdirSource()
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, config.EnvPrefix) {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
	return env
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRunsPipeline(t *testing.T) {
	env := seed(t)

	out, err := execute(t, "--sandbox", sandbox, "--format", "text")
	require.NoError(t, err)

	assert.Equal(t, "export EDITOR=vi\n", env.ReadHomeFile(".profile"))
	assert.Equal(t, "setopt autocd\n", env.ReadHomeFile(".zshrc"))
	link, err := os.Readlink(env.HomePath(".zprofile"))
	require.NoError(t, err)
	assert.Equal(t, ".profile", link)
	assert.True(t, env.HomeFileExists("provides.tar"))

	assert.Contains(t, out, "[done   ] build-archive")
	assert.Contains(t, out, "  notes/todo.md\n")
}

func TestRootUsesSandboxEnvironment(t *testing.T) {
	env := seed(t)
	t.Setenv("SANDBOX", sandbox)

	_, err := execute(t, "--format", "text")
	require.NoError(t, err)
	assert.True(t, env.HomeFileExists("provides.tar"))
}

func TestRootWithoutSandboxFails(t *testing.T) {
	env := seed(t)

	_, err := execute(t, "--format", "text")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
	assert.False(t, env.HomeFileExists(".profile"), "nothing runs on a config error")
}

func TestRootMissingManifestEntry(t *testing.T) {
	env := seed(t)
	env.WriteManifest(sandbox, "notes/todo.md", "notes/gone.md")

	out, err := execute(t, "--sandbox", sandbox, "--format", "text")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	assert.Contains(t, err.Error(), "build-archive")
	assert.Contains(t, out, "[failed ] build-archive")
	assert.False(t, env.HomeFileExists("provides.tar"))
	assert.True(t, env.HomeFileExists(".zshrc"), "earlier steps still ran")
}

func TestRootDryRun(t *testing.T) {
	env := seed(t)

	out, err := execute(t, "--sandbox", sandbox, "--format", "text", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "DRY RUN")
	assert.Contains(t, out, "[planned] deploy-profile")
	assert.False(t, env.HomeFileExists(".profile"))
	assert.False(t, env.HomeFileExists("provides.tar"))
}

func TestRootJSONFormat(t *testing.T) {
	env := seed(t)

	out, err := execute(t, "--sandbox", sandbox, "--format", "json", "--compression", "gzip", "--output", "seed.tar.gz")
	require.NoError(t, err)
	assert.True(t, env.HomeFileExists("seed.tar.gz"))

	var report struct {
		Home    string `json:"home"`
		Archive struct {
			Path        string `json:"path"`
			Compression string `json:"compression"`
			Digest      string `json:"digest"`
		} `json:"archive"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, env.HomeDir, report.Home)
	assert.Equal(t, env.HomePath("seed.tar.gz"), report.Archive.Path)
	assert.Equal(t, "gzip", report.Archive.Compression)
	assert.Len(t, report.Archive.Digest, 64)
}

func TestRootJSONReportsSetupErrors(t *testing.T) {
	seed(t)

	out, err := execute(t, "--format", "json")
	require.Error(t, err)

	var decoded map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "CONFIG_INVALID", decoded["error"]["code"])
}

func TestRootRejectsBadFormat(t *testing.T) {
	seed(t)
	_, err := execute(t, "--sandbox", sandbox, "--format", "yaml")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestRootRejectsArguments(t *testing.T) {
	seed(t)
	_, err := execute(t, "deploy")
	require.Error(t, err)
}

func TestFlagOverridesOnlyChangedFlags(t *testing.T) {
	cmd := NewRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--sandbox", "box", "--shell-rc", "rc", "--dry-run"}))

	assert.Equal(t, map[string]interface{}{
		"sandbox":          "box",
		"sources.shell_rc": "rc",
	}, flagOverrides(cmd.Flags()))
}

func TestConfigCmd(t *testing.T) {
	seed(t)
	t.Setenv("SANDBOX", "from-env")

	out, err := execute(t, "config", "--compression", "zstd")
	require.NoError(t, err)
	assert.Contains(t, out, "from-env")
	assert.Contains(t, out, "zstd")

	out, err = execute(t, "config", "--defaults")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfigContent(), out)
}

func TestVersionCmd(t *testing.T) {
	testutil.NewTestEnvironment(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version.String()+"\n", out)
}

func TestCompletionCmd(t *testing.T) {
	testutil.NewTestEnvironment(t)
	out, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "dotseed")

	_, err = execute(t, "completion", "tcsh")
	require.Error(t, err)
}
