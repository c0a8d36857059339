// Package paths provides centralized path handling for dotseed.
//
// It resolves the target home directory, lays out the fixed dotfile
// destinations underneath it, and locates dotseed's own XDG directories.
package paths
