// Package installer provides component installers for the registry
// distribution. Each subpackage installs one chart in the dependency chain:
// cert-manager issues TLS material, ingress-nginx terminates edge traffic,
// and harbor is the registry itself. The factory assembles them in the
// order the distribution config declares.
package installer
