// Package archive writes the members named by a manifest into a single tar
// file.
//
// Members are written in the order given. Regular files are stored
// verbatim, symlinks as symlinks, and directories together with their
// contents, the way tar -c stores its operands. The output path only ever
// holds a complete archive: the tar stream is written to a pending file that
// is renamed into place once every member has been written.
package archive
