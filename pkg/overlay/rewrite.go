package overlay

import (
	"strings"

	"github.com/berth-dev/berth/pkg/apis/distribution/v1alpha1"
)

// RewriteReference rewrites a single image repository reference to the proxy
// registry. A leading registry host (a first path segment containing a dot
// or a port) is stripped before the proxy prefix is applied.
func RewriteReference(proxy v1alpha1.ProxyRegistry, ref string) string {
	if ref == "" {
		return ref
	}

	repository := ref
	if first, rest, found := strings.Cut(ref, "/"); found && isRegistryHost(first) {
		repository = rest
	}

	parts := []string{proxy.Host}
	if proxy.PathPrefix != "" {
		parts = append(parts, strings.Trim(proxy.PathPrefix, "/"))
	}

	parts = append(parts, repository)

	return strings.Join(parts, "/")
}

// RewriteValues walks a chart values tree and rewrites image references in
// place semantics on a copy. Maps carrying a "registry" key are pointed at
// the proxy host with the repository prefixed; bare "repository" keys are
// rewritten as full references.
func RewriteValues(proxy v1alpha1.ProxyRegistry, values map[string]any) map[string]any {
	rewritten := make(map[string]any, len(values))
	for key, value := range values {
		rewritten[key] = value
	}

	registry, hasRegistry := rewritten["registry"].(string)
	repository, hasRepository := rewritten["repository"].(string)
	image, hasImage := rewritten["image"].(string)

	switch {
	case hasRegistry && registry != "" && hasRepository:
		rewritten["registry"] = proxy.Host
		rewritten["repository"] = prefixRepository(proxy, repository)
	case hasRegistry && registry != "" && hasImage:
		rewritten["registry"] = proxy.Host
		rewritten["image"] = prefixRepository(proxy, image)
	case hasRepository:
		rewritten["repository"] = RewriteReference(proxy, repository)
	}

	for key, value := range rewritten {
		if child, ok := value.(map[string]any); ok {
			rewritten[key] = RewriteValues(proxy, child)
		}
	}

	return rewritten
}

func prefixRepository(proxy v1alpha1.ProxyRegistry, repository string) string {
	if proxy.PathPrefix == "" {
		return repository
	}

	return strings.Trim(proxy.PathPrefix, "/") + "/" + repository
}

// isRegistryHost reports whether the first segment of an image reference
// names a registry rather than a repository namespace.
func isRegistryHost(segment string) bool {
	return strings.ContainsAny(segment, ".:") || segment == "localhost"
}
