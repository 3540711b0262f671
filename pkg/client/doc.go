// Package client provides embedded clients for the external services the
// install tests depend on:
//
//   - helm: Helm chart installation and management
//   - license: the platform's license/customer-identity service
//   - netflow: the platform's network-flow report API
//   - netretry: shared transient-error retry utilities
//
// By embedding these clients as Go libraries, berth requires no external
// CLI binaries beyond what the environment backends themselves need.
package client
