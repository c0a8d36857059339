package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/dotseed/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single entry", "notes/todo.md\n", []string{"notes/todo.md"}},
		{"keeps order", "c\na\nb\n", []string{"c", "a", "b"}},
		{"no trailing newline", "a\nb", []string{"a", "b"}},
		{"skips blank lines", "a\n\n   \nb\n", []string{"a", "b"}},
		{"trims whitespace and CR", "  .cargo/bin  \r\n.local/share\r\n", []string{".cargo/bin", ".local/share"}},
		{"keeps duplicates", "a\na\n", []string{"a", "a"}},
		{"glob is literal", "*.txt\n", []string{"*.txt"}},
		{"empty manifest", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, m.Entries())
				return
			}
			assert.Equal(t, tt.want, m.Entries())
			assert.Equal(t, len(tt.want), m.Len())
		})
	}
}

func TestParseRejectsEscapingEntries(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"absolute", "ok\n/etc/passwd\n", 2},
		{"tilde", "~/.ssh\n", 1},
		{"parent component", "a\n\nfoo/../../bar\n", 3},
		{"bare parent", "..\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
			assert.Equal(t, tt.line, errors.GetErrorDetails(err)["line"])
		})
	}
}

func TestValidateEntryAllowsDotsInNames(t *testing.T) {
	for _, ok := range []string{".profile", "a..b", "dir/.hidden", "./x"} {
		assert.NoError(t, ValidateEntry(ok), ok)
	}
}

func TestParseLongLines(t *testing.T) {
	long := strings.Repeat("d", 100*1024)
	m, err := Parse(strings.NewReader("first\n" + long + "\nlast\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", long, "last"}, m.Entries())

	tooLong := strings.Repeat("d", MaxLineLength+1)
	_, err = Parse(strings.NewReader("first\n" + tooLong + "\n"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "exceeds")
	assert.Equal(t, 2, errors.GetErrorDetails(err)["line"])
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "provides.txt")
	require.NoError(t, os.WriteFile(path, []byte(".bashrc\nnotes/todo.md\n"), 0644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, m.Path)
	assert.Equal(t, []string{".bashrc", "notes/todo.md"}, m.Entries())
	assert.Equal(t, 2, m.Len())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "provides.txt"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrIO))
}
