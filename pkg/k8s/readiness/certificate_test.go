package readiness_test

import (
	"context"
	"testing"
	"time"

	"github.com/berth-dev/berth/pkg/k8s/readiness"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	dynamicfake "k8s.io/client-go/dynamic/fake"
)

func newCertificate(namespace, name, readyStatus string) *unstructured.Unstructured {
	certificate := &unstructured.Unstructured{
		Object: map[string]any{
			"apiVersion": "cert-manager.io/v1",
			"kind":       "Certificate",
			"metadata": map[string]any{
				"namespace": namespace,
				"name":      name,
			},
		},
	}

	if readyStatus != "" {
		certificate.Object["status"] = map[string]any{
			"conditions": []any{
				map[string]any{"type": "Ready", "status": readyStatus},
			},
		}
	}

	return certificate
}

func newDynamicClient(objects ...runtime.Object) *dynamicfake.FakeDynamicClient {
	return dynamicfake.NewSimpleDynamicClient(runtime.NewScheme(), objects...)
}

func TestWaitForCertificateReady_Ready(t *testing.T) {
	t.Parallel()

	client := newDynamicClient(newCertificate("registry", "harbor-tls", "True"))

	err := readiness.WaitForCertificateReady(
		context.Background(), client, "registry", "harbor-tls", time.Second,
	)

	require.NoError(t, err)
}

func TestWaitForCertificateReady_NotReadyTimesOut(t *testing.T) {
	t.Parallel()

	client := newDynamicClient(newCertificate("registry", "harbor-tls", "False"))

	err := readiness.WaitForCertificateReady(
		context.Background(), client, "registry", "harbor-tls", 100*time.Millisecond,
	)

	require.ErrorIs(t, err, readiness.ErrTimeoutExceeded)
}

func TestWaitForCertificateReady_NoStatusTimesOut(t *testing.T) {
	t.Parallel()

	client := newDynamicClient(newCertificate("registry", "harbor-tls", ""))

	err := readiness.WaitForCertificateReady(
		context.Background(), client, "registry", "harbor-tls", 100*time.Millisecond,
	)

	require.ErrorIs(t, err, readiness.ErrTimeoutExceeded)
}

func TestWaitForCertificateReady_MissingKeepsPollingUntilTimeout(t *testing.T) {
	t.Parallel()

	client := newDynamicClient()

	err := readiness.WaitForCertificateReady(
		context.Background(), client, "registry", "absent", 100*time.Millisecond,
	)

	require.ErrorIs(t, err, readiness.ErrTimeoutExceeded)
}
