// Package v1alpha1 contains the typed configuration for a packaged
// distribution under test: which charts to install, where the private proxy
// registry lives, which resources the verify flow waits on and in what
// order, and which network domains an installation is allowed to reach.
package v1alpha1
