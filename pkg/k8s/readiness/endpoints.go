package readiness

import (
	"context"
	"fmt"
	"time"

	discoveryv1 "k8s.io/api/discovery/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// WaitForServiceEndpoints polls until the named service has at least one
// ready backend address. This distinguishes "pods report ready" from
// "traffic would actually route": a deployment's pods can pass their probes
// while the service's endpoint slices are still empty.
func WaitForServiceEndpoints(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace, service string,
	deadline time.Duration,
) error {
	selector := discoveryv1.LabelServiceName + "=" + service

	err := PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		slices, err := clientset.DiscoveryV1().
			EndpointSlices(namespace).
			List(ctx, metav1.ListOptions{LabelSelector: selector})
		if err != nil {
			return false, fmt.Errorf("list endpoint slices for %s/%s: %w", namespace, service, err)
		}

		return hasReadyEndpoint(slices.Items), nil
	})
	if err != nil {
		return fmt.Errorf("service %s/%s endpoints: %w", namespace, service, err)
	}

	return nil
}

// hasReadyEndpoint returns true when any slice carries an endpoint with an
// address that is ready (or has no readiness hint, which Kubernetes treats
// as ready).
func hasReadyEndpoint(slices []discoveryv1.EndpointSlice) bool {
	for i := range slices {
		for _, endpoint := range slices[i].Endpoints {
			if len(endpoint.Addresses) == 0 {
				continue
			}

			if endpoint.Conditions.Ready == nil || *endpoint.Conditions.Ready {
				return true
			}
		}
	}

	return false
}
