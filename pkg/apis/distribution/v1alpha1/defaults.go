package v1alpha1

import (
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// DefaultWaitTimeout bounds each readiness wait when the config does not
	// override it.
	DefaultWaitTimeout = 300 * time.Second
	// DefaultEnvironmentTTL bounds cloud environment lifetime.
	DefaultEnvironmentTTL = 2 * time.Hour

	// HarborNamespace is the namespace the Harbor chart installs into.
	HarborNamespace = "registry"
	// CertManagerNamespace is the namespace cert-manager installs into.
	CertManagerNamespace = "cert-manager"
	// IngressNamespace is the namespace ingress-nginx installs into.
	IngressNamespace = "ingress-nginx"
)

// NewDistribution creates a Distribution with the packaged Harbor defaults.
// Loading config on top of this only has to override what differs.
func NewDistribution() *Distribution {
	return &Distribution{
		TypeMeta: metav1.TypeMeta{
			Kind:       Kind,
			APIVersion: APIVersion,
		},
		Spec: NewSpec(),
	}
}

// NewSpec creates a Spec with default values.
func NewSpec() Spec {
	return Spec{
		Channel: "stable",
		Environment: Environment{
			Provider:     ProviderCloud,
			Distribution: "k3s",
			TTL:          metav1.Duration{Duration: DefaultEnvironmentTTL},
			Connection: Connection{
				Timeout: metav1.Duration{Duration: DefaultWaitTimeout},
			},
		},
		Charts: DefaultCharts(),
		Verify: DefaultVerifySpec(),
	}
}

// DefaultCharts returns the distribution's charts in install order:
// cert-manager first (webhooks and issuers must exist before certificates),
// then ingress-nginx, then Harbor itself.
func DefaultCharts() []Chart {
	return []Chart{
		{
			Name:      "cert-manager",
			RepoURL:   "https://charts.jetstack.io",
			Release:   "cert-manager",
			Namespace: CertManagerNamespace,
		},
		{
			Name:      "ingress-nginx",
			RepoURL:   "https://kubernetes.github.io/ingress-nginx",
			Release:   "ingress-nginx",
			Namespace: IngressNamespace,
		},
		{
			Name:          "harbor",
			RepoURL:       "https://helm.goharbor.io",
			Release:       "harbor",
			Namespace:     HarborNamespace,
			RewriteImages: true,
		},
	}
}

// DefaultVerifySpec returns the Harbor readiness plan: storage tier first
// (the application tier crash-loops until the database and cache are
// reachable), then the application deployments, then the edge tier.
func DefaultVerifySpec() VerifySpec {
	return VerifySpec{
		Tiers: []Tier{
			{
				Name: "storage",
				Resources: []Resource{
					{Kind: ResourceStatefulSet, Namespace: HarborNamespace, Name: "harbor-database"},
					{Kind: ResourceStatefulSet, Namespace: HarborNamespace, Name: "harbor-redis"},
					{Kind: ResourceStatefulSet, Namespace: HarborNamespace, Name: "harbor-trivy"},
				},
			},
			{
				Name: "application",
				Resources: []Resource{
					{Kind: ResourceDeployment, Namespace: HarborNamespace, Name: "harbor-core"},
					{Kind: ResourceDeployment, Namespace: HarborNamespace, Name: "harbor-jobservice"},
					{Kind: ResourceDeployment, Namespace: HarborNamespace, Name: "harbor-registry"},
					{Kind: ResourceDeployment, Namespace: HarborNamespace, Name: "harbor-portal"},
				},
			},
			{
				Name: "edge",
				Resources: []Resource{
					{Kind: ResourceDeployment, Namespace: CertManagerNamespace, Name: "cert-manager-webhook"},
					{Kind: ResourceDeployment, Namespace: IngressNamespace, Name: "ingress-nginx-controller"},
					{Kind: ResourceCertificate, Namespace: HarborNamespace, Name: "harbor-tls"},
				},
			},
		},
		Services: []ServiceRef{
			{Namespace: HarborNamespace, Name: "harbor-core"},
			{Namespace: HarborNamespace, Name: "harbor-portal"},
			{Namespace: IngressNamespace, Name: "ingress-nginx-controller"},
		},
	}
}
