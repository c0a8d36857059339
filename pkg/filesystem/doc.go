// Package filesystem provides the filesystem operations dotseed performs
// against a home directory.
//
// Every write goes through a temporary file or link that is renamed into
// place, so a destination is either left as it was or fully replaced.
package filesystem
