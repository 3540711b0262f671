// Package svc provides the service layer coordinating between the command
// tree and the underlying clients.
//
// Subpackages:
//   - provisioner: ephemeral test environment backends (cloud, kind)
//   - installer: ordered chart installation for the distribution
//   - verifier: tiered readiness waits and endpoint checks
package svc
