package verifier

import (
	"context"
	"fmt"
	"io"
	"time"

	v1alpha1 "github.com/berth-dev/berth/pkg/apis/distribution/v1alpha1"
	"github.com/berth-dev/berth/pkg/k8s"
	"github.com/berth-dev/berth/pkg/k8s/readiness"
	"github.com/berth-dev/berth/pkg/ui/notify"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
)

// defaultCreationTimeout bounds the optimistic existence poll that runs
// before each readiness wait. A resource that never appears still fails, but
// via the readiness wait, which produces the richer diagnostic.
const defaultCreationTimeout = 60 * time.Second

// Clients bundles the API clients the verifier needs.
type Clients struct {
	Kubernetes kubernetes.Interface
	Dynamic    dynamic.Interface
}

// Verifier executes a declared readiness plan against a cluster: tier by
// tier, resource by resource, strictly sequentially, failing fast on the
// first wait that exceeds its deadline. After every tier is ready it
// confirms each declared service has at least one live backend.
type Verifier struct {
	clients         Clients
	timeout         time.Duration
	creationTimeout time.Duration
	writer          io.Writer
}

// New creates a Verifier. timeout bounds each individual wait; zero selects
// the default. The creation poll never waits longer than the readiness
// timeout itself.
func New(clients Clients, timeout time.Duration, writer io.Writer) *Verifier {
	if timeout <= 0 {
		timeout = readiness.DefaultWaitTimeout
	}

	return &Verifier{
		clients:         clients,
		timeout:         timeout,
		creationTimeout: min(defaultCreationTimeout, timeout),
		writer:          writer,
	}
}

// Run executes the plan. The run is linear: created → ready → endpoints-live,
// with no rollback; the first failure aborts and is returned wrapped with
// pod diagnostics from the affected namespaces.
func (v *Verifier) Run(ctx context.Context, spec v1alpha1.VerifySpec) error {
	for _, tier := range spec.Tiers {
		err := v.runTier(ctx, tier)
		if err != nil {
			return err
		}
	}

	for _, service := range spec.Services {
		notify.Activityf(v.writer, "verifying endpoints for service %s/%s",
			service.Namespace, service.Name)

		err := readiness.WaitForServiceEndpoints(
			ctx, v.clients.Kubernetes, service.Namespace, service.Name, v.timeout,
		)
		if err != nil {
			return v.withDiagnostics(ctx,
				fmt.Errorf("endpoint verification failed: %w", err),
				[]string{service.Namespace},
			)
		}
	}

	return nil
}

// runTier waits for every resource in the tier, in declared order.
func (v *Verifier) runTier(ctx context.Context, tier v1alpha1.Tier) error {
	namespaces := tierNamespaces(tier)

	for _, resource := range tier.Resources {
		notify.Activityf(v.writer, "waiting for %s %s/%s",
			resource.Kind, resource.Namespace, resource.Name)

		// Creation poll first: tolerate a resource that has not been created
		// yet and proceed optimistically if it never shows up in time.
		found, err := readiness.WaitForResourceCreated(
			ctx, v.creationTimeout, v.existsCheck(resource),
		)
		if err != nil {
			return fmt.Errorf("tier %q: %w", tier.Name, err)
		}

		if !found {
			notify.Warningf(v.writer, "%s %s/%s not created yet, proceeding",
				resource.Kind, resource.Namespace, resource.Name)
		}

		err = v.waitForResource(ctx, resource)
		if err != nil {
			return v.withDiagnostics(ctx,
				fmt.Errorf("tier %q: %w", tier.Name, err),
				namespaces,
			)
		}
	}

	notify.Successf(v.writer, "tier %q ready", tier.Name)

	return nil
}

// waitForResource dispatches to the waiter for the resource kind.
func (v *Verifier) waitForResource(ctx context.Context, resource v1alpha1.Resource) error {
	switch resource.Kind {
	case v1alpha1.ResourceStatefulSet:
		return readiness.WaitForStatefulSetReady(
			ctx, v.clients.Kubernetes, resource.Namespace, resource.Name, v.timeout,
		)
	case v1alpha1.ResourceDeployment:
		return readiness.WaitForDeploymentReady(
			ctx, v.clients.Kubernetes, resource.Namespace, resource.Name, v.timeout,
		)
	case v1alpha1.ResourceDaemonSet:
		return readiness.WaitForDaemonSetReady(
			ctx, v.clients.Kubernetes, resource.Namespace, resource.Name, v.timeout,
		)
	case v1alpha1.ResourceCertificate:
		return readiness.WaitForCertificateReady(
			ctx, v.clients.Dynamic, resource.Namespace, resource.Name, v.timeout,
		)
	default:
		return fmt.Errorf("%w: %q", v1alpha1.ErrInvalidResourceKind, resource.Kind)
	}
}

// existsCheck returns a creation check for the resource.
func (v *Verifier) existsCheck(resource v1alpha1.Resource) readiness.Check {
	return func(ctx context.Context) (bool, error) {
		var err error

		switch resource.Kind {
		case v1alpha1.ResourceStatefulSet:
			_, err = v.clients.Kubernetes.AppsV1().
				StatefulSets(resource.Namespace).
				Get(ctx, resource.Name, metav1.GetOptions{})
		case v1alpha1.ResourceDeployment:
			_, err = v.clients.Kubernetes.AppsV1().
				Deployments(resource.Namespace).
				Get(ctx, resource.Name, metav1.GetOptions{})
		case v1alpha1.ResourceDaemonSet:
			_, err = v.clients.Kubernetes.AppsV1().
				DaemonSets(resource.Namespace).
				Get(ctx, resource.Name, metav1.GetOptions{})
		case v1alpha1.ResourceCertificate:
			_, err = v.clients.Dynamic.Resource(readiness.CertificateGVR).
				Namespace(resource.Namespace).
				Get(ctx, resource.Name, metav1.GetOptions{})
		default:
			return false, fmt.Errorf("%w: %q", v1alpha1.ErrInvalidResourceKind, resource.Kind)
		}

		if err != nil {
			if apierrors.IsNotFound(err) {
				return false, nil
			}

			return false, fmt.Errorf("check %s %s/%s exists: %w",
				resource.Kind, resource.Namespace, resource.Name, err)
		}

		return true, nil
	}
}

// withDiagnostics appends pod-failure details from the given namespaces to
// the error so a timed-out wait names the pods that held it up.
func (v *Verifier) withDiagnostics(
	ctx context.Context,
	err error,
	namespaces []string,
) error {
	details := k8s.DiagnosePodFailures(ctx, v.clients.Kubernetes, namespaces)
	if details == "" {
		return err
	}

	return fmt.Errorf("%w%s", err, details)
}

// tierNamespaces collects the distinct namespaces a tier touches.
func tierNamespaces(tier v1alpha1.Tier) []string {
	seen := make(map[string]struct{}, len(tier.Resources))

	var namespaces []string

	for _, resource := range tier.Resources {
		if _, ok := seen[resource.Namespace]; ok {
			continue
		}

		seen[resource.Namespace] = struct{}{}
		namespaces = append(namespaces, resource.Namespace)
	}

	return namespaces
}
