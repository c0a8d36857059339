package filesystem

import (
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"syscall"
	"time"

	"github.com/arthur-debert/dotseed/pkg/errors"
	"github.com/arthur-debert/dotseed/pkg/logging"
	"github.com/google/renameio/v2"
)

// Exists reports whether something (file, directory or symlink) is at path.
// A dangling symlink exists. A path running through a regular file
// ("notes/todo.md" with notes a file) does not.
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) || stderrors.Is(err, syscall.ENOTDIR) {
		return false, nil
	}
	return false, errors.Wrapf(err, errors.ErrIO, "cannot stat %s", path).WithDetail("path", path)
}

// CopyFile replaces dst with the contents of src, carrying over the source's
// permission bits and access/modification times. src must be a regular file
// (symlinks to regular files are followed).
func CopyFile(src, dst string) error {
	logger := logging.GetLogger("filesystem")

	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIO, "cannot read source %s", src).WithDetail("path", src)
	}
	if !info.Mode().IsRegular() {
		return errors.Newf(errors.ErrIO, "source %s is not a regular file", src).WithDetail("path", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIO, "cannot open source %s", src).WithDetail("path", src)
	}
	defer in.Close()

	pending, err := renameio.NewPendingFile(dst,
		renameio.WithPermissions(info.Mode().Perm()),
		renameio.IgnoreUmask(),
	)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIO, "cannot create %s", dst).WithDetail("path", dst)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger.Debug().Err(err).Str("path", dst).Msg("cleanup pending file")
		}
	}()

	n, err := io.Copy(pending, in)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIO, "cannot copy %s to %s", src, dst).WithDetail("path", dst)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "cannot replace %s", dst).WithDetail("path", dst)
	}

	if err := os.Chtimes(dst, accessTime(info), info.ModTime()); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "cannot set times on %s", dst).WithDetail("path", dst)
	}

	logger.Trace().Str("src", src).Str("dst", dst).Int64("bytes", n).Msg("Copied file")
	return nil
}

// ForceSymlink points link at target, replacing any file or symlink already
// at link. A directory at link is an error.
func ForceSymlink(target, link string) error {
	if info, err := os.Lstat(link); err == nil && info.IsDir() {
		return errors.Newf(errors.ErrIO, "cannot replace directory %s with a symlink", link).WithDetail("path", link)
	}
	if err := renameio.Symlink(target, link); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "cannot link %s to %s", link, target).WithDetail("path", link)
	}
	return nil
}

// RemoveIfExists removes the file or symlink at path. A missing path is not
// an error.
func RemoveIfExists(path string) error {
	err := os.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return errors.Wrapf(err, errors.ErrIO, "cannot remove %s", path).WithDetail("path", path)
}

// accessTime falls back to the modification time; portable fs.FileInfo has
// no atime.
func accessTime(info fs.FileInfo) time.Time {
	if t, ok := atime(info); ok {
		return t
	}
	return info.ModTime()
}
