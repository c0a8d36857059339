// Package testutil provides utilities for testing dotseed components.
//
// Key components:
//   - TestEnvironment: an isolated home directory plus a source directory,
//     with HOME and the XDG variables pointed into the test's temp dir
//
// All test data should be defined inline, not in external files.
package testutil
