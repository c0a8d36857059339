// Package manifest reads provides.txt style manifests: one path per line,
// relative to the home directory, in the order they should be archived.
package manifest

import (
	"bufio"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotseed/pkg/errors"
)

// MaxLineLength is the longest manifest line accepted, in bytes.
const MaxLineLength = 1 << 20

// Manifest is an ordered list of home-relative paths.
type Manifest struct {
	Path    string
	entries []string
}

// Load reads the manifest file at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "cannot read manifest %s", path).WithDetail("path", path)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.WithDetail("path", path)
		}
		return nil, err
	}
	m.Path = path
	return m, nil
}

// Parse reads newline separated entries. Surrounding whitespace is trimmed
// and blank lines are skipped; nothing else is interpreted.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineLength)
	line := 0
	for scanner.Scan() {
		line++
		entry := strings.TrimSpace(scanner.Text())
		if entry == "" {
			continue
		}
		if err := ValidateEntry(entry); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "manifest line %d", line).
				WithDetail("line", line)
		}
		m.entries = append(m.entries, entry)
	}
	if err := scanner.Err(); err != nil {
		if stderrors.Is(err, bufio.ErrTooLong) {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "manifest line %d exceeds %d bytes", line+1, MaxLineLength).
				WithDetail("line", line+1)
		}
		return nil, errors.Wrap(err, errors.ErrIO, "cannot read manifest")
	}
	return m, nil
}

// ValidateEntry rejects entries that would escape the home directory.
func ValidateEntry(entry string) error {
	switch {
	case entry == "":
		return errors.New(errors.ErrInvalidInput, "empty entry")
	case strings.HasPrefix(entry, "/") || filepath.IsAbs(entry):
		return errors.Newf(errors.ErrInvalidInput, "%q must be relative to the home directory", entry)
	case entry == "~" || strings.HasPrefix(entry, "~/"):
		return errors.Newf(errors.ErrInvalidInput, "%q must be relative to the home directory, without ~/", entry)
	}
	for _, part := range strings.Split(entry, "/") {
		if part == ".." {
			return errors.Newf(errors.ErrInvalidInput, "%q must not contain '..'", entry)
		}
	}
	return nil
}

// Entries returns a copy of the entries in manifest order.
func (m *Manifest) Entries() []string {
	return append([]string(nil), m.entries...)
}

// Len returns the number of entries.
func (m *Manifest) Len() int { return len(m.entries) }
