// Package overlay produces the values overlay that points a chart's image
// references at the private proxy registry. Licensed installs must not pull
// from upstream registries, so every registry and repository reference in
// the chart's values is rewritten before installation. Rendered manifests
// can be validated against Kubernetes schemas before they ship.
package overlay
