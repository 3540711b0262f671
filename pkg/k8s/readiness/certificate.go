package readiness

import (
	"context"
	"fmt"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
)

// CertificateGVR identifies cert-manager Certificate resources.
//
//nolint:gochecknoglobals // shared GroupVersionResource constant
var CertificateGVR = schema.GroupVersionResource{
	Group:    "cert-manager.io",
	Version:  "v1",
	Resource: "certificates",
}

// WaitForCertificateReady polls a cert-manager Certificate until its Ready
// condition reports True. The TLS secret the ingress terminates with is only
// populated once issuance completes, so the edge tier waits on this before
// endpoint verification.
func WaitForCertificateReady(
	ctx context.Context,
	client dynamic.Interface,
	namespace, name string,
	deadline time.Duration,
) error {
	err := PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		certificate, err := client.Resource(CertificateGVR).
			Namespace(namespace).
			Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			if apierrors.IsNotFound(err) {
				return false, nil
			}

			return false, fmt.Errorf("get certificate %s/%s: %w", namespace, name, err)
		}

		return isCertificateReady(certificate), nil
	})
	if err != nil {
		return fmt.Errorf("certificate %s/%s: %w", namespace, name, err)
	}

	return nil
}

// isCertificateReady inspects status.conditions for type Ready, status True.
func isCertificateReady(certificate *unstructured.Unstructured) bool {
	conditions, found, err := unstructured.NestedSlice(
		certificate.Object, "status", "conditions",
	)
	if err != nil || !found {
		return false
	}

	for _, raw := range conditions {
		condition, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		if condition["type"] == "Ready" {
			return condition["status"] == "True"
		}
	}

	return false
}
