// Package verifier executes the declared readiness plan for an installed
// distribution: dependency-ordered tiers of resource waits followed by
// service endpoint verification.
package verifier
