package archive

import (
	"archive/tar"
	"context"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotseed/pkg/errors"
	"github.com/arthur-debert/dotseed/pkg/filesystem"
	"github.com/arthur-debert/dotseed/pkg/logging"
	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"
)

// MemberType classifies an archive member.
type MemberType string

const (
	MemberFile    MemberType = "file"
	MemberDir     MemberType = "dir"
	MemberSymlink MemberType = "symlink"
)

// Member is one entry of the archive.
type Member struct {
	Name string     `json:"name"`
	Type MemberType `json:"type"`
	Size int64      `json:"size"`
	// Link is the symlink target for MemberSymlink.
	Link string `json:"link,omitempty"`

	source string
	info   fs.FileInfo
}

// Result describes a written archive.
type Result struct {
	Path        string      `json:"path"`
	Compression Compression `json:"compression"`
	Members     []Member    `json:"members"`
	// Bytes is the total size of regular file content stored.
	Bytes int64 `json:"bytes"`
	// Digest is the hex BLAKE3 hash of the archive file as written.
	Digest string `json:"digest,omitempty"`
}

// Builder archives paths relative to a root directory.
type Builder struct {
	root        string
	compression Compression
	logger      zerolog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithCompression wraps the tar stream in the given codec.
func WithCompression(c Compression) Option {
	return func(b *Builder) { b.compression = c }
}

// NewBuilder returns a Builder that resolves entries against root.
func NewBuilder(root string, opts ...Option) *Builder {
	b := &Builder{
		root:        root,
		compression: CompressionNone,
		logger:      logging.GetLogger("archive"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Plan resolves entries to the members that Build would write to output,
// without writing anything. Every entry must exist; the NotFound error lists
// all missing entries. The output file itself is never a member, so an entry
// whose tree contains it does not archive the previous build.
func (b *Builder) Plan(ctx context.Context, entries []string, output string) ([]Member, error) {
	var missing []string
	for _, entry := range entries {
		ok, err := filesystem.Exists(b.resolve(entry))
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, entry)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Newf(errors.ErrNotFound, "manifest entries not found under %s: %s",
			b.root, strings.Join(missing, ", ")).
			WithDetail("missing", missing)
	}

	skip := absPath(output)
	var members []Member
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := b.expand(entry, skip)
		if err != nil {
			return nil, err
		}
		members = append(members, m...)
	}
	return members, nil
}

// Build writes entries, in order, to output. On failure nothing is left at
// output, including an archive from an earlier build.
func (b *Builder) Build(ctx context.Context, entries []string, output string) (result *Result, err error) {
	defer func() {
		if err == nil {
			return
		}
		if rmErr := filesystem.RemoveIfExists(output); rmErr != nil {
			b.logger.Warn().Err(rmErr).Str("path", output).Msg("cannot remove stale archive")
		}
	}()

	members, err := b.Plan(ctx, entries, output)
	if err != nil {
		return nil, err
	}

	pending, err := renameio.NewPendingFile(output, renameio.WithPermissions(0644))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "cannot create archive %s", output).WithDetail("path", output)
	}
	defer func() {
		if cerr := pending.Cleanup(); cerr != nil {
			b.logger.Debug().Err(cerr).Str("path", output).Msg("cleanup pending archive")
		}
	}()

	hasher := blake3.New()
	codec, err := b.compression.wrap(io.MultiWriter(pending, hasher))
	if err != nil {
		return nil, err
	}
	tw := tar.NewWriter(codec)

	result = &Result{Path: output, Compression: b.compression, Members: members}
	for i := range members {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := b.writeMember(tw, &members[i])
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrIO, "cannot archive %s", members[i].Name).
				WithDetail("path", members[i].source)
		}
		result.Bytes += n
	}

	if err := tw.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrIO, "cannot finish tar stream")
	}
	if err := codec.Close(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "cannot finish %s stream", b.compression)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "cannot replace archive %s", output).WithDetail("path", output)
	}

	result.Digest = hex.EncodeToString(hasher.Sum(nil))
	b.logger.Info().
		Str("path", output).
		Int("members", len(members)).
		Int64("bytes", result.Bytes).
		Str("blake3", result.Digest).
		Msg("Archive written")
	return result, nil
}

func (b *Builder) resolve(entry string) string {
	return filepath.Join(b.root, filepath.FromSlash(entry))
}

// absPath returns p made absolute, or "" when p is empty or unresolvable.
func absPath(p string) string {
	if p == "" {
		return ""
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return ""
	}
	return abs
}

// expand lists the members for one entry. Directories are walked in lexical
// order and symlinks are not followed. The file at skip is left out.
func (b *Builder) expand(entry, skip string) ([]Member, error) {
	src := b.resolve(entry)
	info, err := os.Lstat(src)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "cannot stat %s", src).WithDetail("path", src)
	}
	if skip != "" && absPath(src) == skip {
		b.logger.Warn().Str("entry", entry).Msg("Entry is the archive itself, not archived")
		return nil, nil
	}
	if !info.IsDir() {
		m, err := newMember(entry, src, info)
		if err != nil {
			return nil, err
		}
		return []Member{m}, nil
	}

	var members []Member
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if skip != "" && absPath(p) == skip {
			b.logger.Warn().Str("entry", entry).Str("path", p).Msg("File is the archive itself, not archived")
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		name := entry
		if rel != "." {
			name = path.Join(entry, filepath.ToSlash(rel))
		}
		m, err := newMember(name, p, info)
		if err != nil {
			return err
		}
		members = append(members, m)
		return nil
	})
	if err != nil {
		if _, ok := err.(*errors.Error); ok {
			return nil, err
		}
		return nil, errors.Wrapf(err, errors.ErrIO, "cannot walk %s", src).WithDetail("path", src)
	}
	return members, nil
}

func newMember(name, src string, info fs.FileInfo) (Member, error) {
	m := Member{Name: name, source: src, info: info}
	switch {
	case info.Mode().IsRegular():
		m.Type = MemberFile
		m.Size = info.Size()
	case info.IsDir():
		m.Type = MemberDir
	case info.Mode()&fs.ModeSymlink != 0:
		m.Type = MemberSymlink
		link, err := os.Readlink(src)
		if err != nil {
			return Member{}, errors.Wrapf(err, errors.ErrIO, "cannot read link %s", src).WithDetail("path", src)
		}
		m.Link = link
	default:
		return Member{}, errors.Newf(errors.ErrInvalidInput, "%s is not a file, directory or symlink", name).
			WithDetail("path", src)
	}
	return m, nil
}

// writeMember writes the header and, for regular files, exactly Size bytes
// of content.
func (b *Builder) writeMember(tw *tar.Writer, m *Member) (int64, error) {
	hdr, err := tar.FileInfoHeader(m.info, m.Link)
	if err != nil {
		return 0, err
	}
	hdr.Name = m.Name
	if m.Type == MemberDir && !strings.HasSuffix(hdr.Name, "/") {
		hdr.Name += "/"
	}
	hdr.Uname = ""
	hdr.Gname = ""

	if err := tw.WriteHeader(hdr); err != nil {
		return 0, err
	}
	b.logger.Trace().Str("member", hdr.Name).Str("type", string(m.Type)).Int64("size", hdr.Size).Msg("Archiving")

	if m.Type != MemberFile {
		return 0, nil
	}
	f, err := os.Open(m.source)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.CopyN(tw, f, hdr.Size)
}
