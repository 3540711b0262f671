package v1alpha1

// Provider selects the environment backend for installation tests.
type Provider string

const (
	// ProviderCloud provisions an ephemeral VM-backed cluster through the
	// delivery platform's environment API.
	ProviderCloud Provider = "Cloud"
	// ProviderKind provisions a local kind cluster for developer runs.
	ProviderKind Provider = "Kind"
)

// ValidValues returns all valid string values for Provider.
func (Provider) ValidValues() []string {
	return []string{string(ProviderCloud), string(ProviderKind)}
}

// ResourceKind selects the readiness wait strategy for a declared resource.
type ResourceKind string

const (
	// ResourceStatefulSet waits on ready replicas of a statefulset.
	ResourceStatefulSet ResourceKind = "StatefulSet"
	// ResourceDeployment waits on a deployment's Available condition.
	ResourceDeployment ResourceKind = "Deployment"
	// ResourceDaemonSet waits on a daemonset having no unavailable pods.
	ResourceDaemonSet ResourceKind = "DaemonSet"
	// ResourceCertificate waits on a cert-manager Certificate's Ready
	// condition.
	ResourceCertificate ResourceKind = "Certificate"
)

// ValidValues returns all valid string values for ResourceKind.
func (ResourceKind) ValidValues() []string {
	return []string{
		string(ResourceStatefulSet),
		string(ResourceDeployment),
		string(ResourceDaemonSet),
		string(ResourceCertificate),
	}
}
