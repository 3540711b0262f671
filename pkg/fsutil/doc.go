// Package fsutil provides small filesystem helpers: home-relative path
// expansion for config inputs and guarded file writing for generated output.
package fsutil
