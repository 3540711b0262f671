package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// Kind is the configuration kind accepted in berth.yaml.
	Kind = "Distribution"
	// APIVersion is the configuration schema version accepted in berth.yaml.
	APIVersion = "berth.dev/v1alpha1"
)

// Distribution is the root configuration object describing a packaged
// distribution and how to install and verify it.
type Distribution struct {
	metav1.TypeMeta `json:",inline" yaml:",inline"`

	Spec Spec `json:"spec" yaml:"spec"`
}

// Spec holds the distribution configuration.
type Spec struct {
	// Channel is the release channel the distribution ships on (e.g.
	// "stable", "beta"). Environment names derive from it.
	Channel string `json:"channel,omitempty" yaml:"channel,omitempty"`

	// ProxyRegistry is the private registry that chart image references are
	// rewritten to.
	ProxyRegistry ProxyRegistry `json:"proxyRegistry,omitempty" yaml:"proxyRegistry,omitempty"`

	// Environment configures the ephemeral test environment.
	Environment Environment `json:"environment,omitempty" yaml:"environment,omitempty"`

	// Charts are installed in the order they are declared.
	Charts []Chart `json:"charts,omitempty" yaml:"charts,omitempty"`

	// Verify declares the readiness plan executed after installation.
	Verify VerifySpec `json:"verify,omitempty" yaml:"verify,omitempty"`

	// Network configures the domain allowlist check.
	Network NetworkSpec `json:"network,omitempty" yaml:"network,omitempty"`
}

// ProxyRegistry identifies the private proxy registry fronting upstream
// images for licensed installs.
type ProxyRegistry struct {
	// Host is the registry host (e.g. "proxy.example.com").
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	// PathPrefix is prepended to rewritten repository paths, typically the
	// application slug (e.g. "proxy/harbor").
	PathPrefix string `json:"pathPrefix,omitempty" yaml:"pathPrefix,omitempty"`
}

// Environment configures where the installation test runs.
type Environment struct {
	// Provider selects the environment backend.
	Provider Provider `json:"provider,omitempty" yaml:"provider,omitempty"`
	// Distribution is the Kubernetes distribution requested from the cloud
	// provider (e.g. "k3s", "kind", "openshift").
	Distribution string `json:"distribution,omitempty" yaml:"distribution,omitempty"`
	// Version is the Kubernetes version requested from the cloud provider.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// TTL bounds the lifetime of cloud environments; they are reaped by the
	// platform when it expires even if teardown never runs.
	TTL metav1.Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	// Connection overrides how the CLI reaches the environment.
	Connection Connection `json:"connection,omitempty" yaml:"connection,omitempty"`
}

// Connection holds kubeconfig details for reaching an environment.
type Connection struct {
	// Kubeconfig is the path to the kubeconfig file.
	Kubeconfig string `json:"kubeconfig,omitempty" yaml:"kubeconfig,omitempty"`
	// Context selects a kubeconfig context; empty uses the current context.
	Context string `json:"context,omitempty" yaml:"context,omitempty"`
	// Timeout bounds each readiness wait.
	Timeout metav1.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Chart describes one Helm chart the distribution installs.
type Chart struct {
	// Name is the chart name within the repository.
	Name string `json:"name" yaml:"name"`
	// RepoURL is the chart repository URL.
	RepoURL string `json:"repoURL,omitempty" yaml:"repoURL,omitempty"`
	// Version pins the chart version.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// Release is the Helm release name; defaults to Name.
	Release string `json:"release,omitempty" yaml:"release,omitempty"`
	// Namespace is the install namespace.
	Namespace string `json:"namespace" yaml:"namespace"`
	// ValuesFile points at an overlay values file applied on install.
	ValuesFile string `json:"valuesFile,omitempty" yaml:"valuesFile,omitempty"`
	// RewriteImages enables proxy-registry image rewriting for this chart.
	RewriteImages bool `json:"rewriteImages,omitempty" yaml:"rewriteImages,omitempty"`
}

// VerifySpec declares the ordered readiness plan.
type VerifySpec struct {
	// Tiers are verified strictly in order; a tier is only entered once
	// every resource in the previous tier reported ready.
	Tiers []Tier `json:"tiers,omitempty" yaml:"tiers,omitempty"`
	// Services are checked for live endpoints after all tiers are ready.
	Services []ServiceRef `json:"services,omitempty" yaml:"services,omitempty"`
}

// Tier is a named group of resources that become ready together.
type Tier struct {
	// Name labels the tier in output (e.g. "storage", "application").
	Name string `json:"name" yaml:"name"`
	// Resources are waited on sequentially in declared order.
	Resources []Resource `json:"resources" yaml:"resources"`
}

// Resource identifies one Kubernetes object the verify flow waits on.
type Resource struct {
	// Kind selects the wait strategy.
	Kind ResourceKind `json:"kind" yaml:"kind"`
	// Namespace is the object namespace.
	Namespace string `json:"namespace" yaml:"namespace"`
	// Name is the object name.
	Name string `json:"name" yaml:"name"`
}

// ServiceRef identifies a service whose endpoints must be populated.
type ServiceRef struct {
	// Namespace is the service namespace.
	Namespace string `json:"namespace" yaml:"namespace"`
	// Name is the service name.
	Name string `json:"name" yaml:"name"`
}

// NetworkSpec configures the allowlist check over observed DNS traffic.
type NetworkSpec struct {
	// Allowlist is the fixed set of permitted domains. Entries may use a
	// leading "*." to match any subdomain.
	Allowlist []string `json:"allowlist,omitempty" yaml:"allowlist,omitempty"`
}
