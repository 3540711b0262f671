package k8s_test

import (
	"context"
	"testing"

	"github.com/berth-dev/berth/pkg/k8s"
	"github.com/stretchr/testify/assert"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func healthyPod(namespace, name string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
			ContainerStatuses: []corev1.ContainerStatus{
				{Ready: true},
			},
		},
	}
}

func TestDiagnosePodFailures_AllHealthy(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(
		healthyPod("registry", "harbor-core-abc"),
		healthyPod("registry", "harbor-portal-def"),
	)

	summary := k8s.DiagnosePodFailures(
		context.Background(), clientset, []string{"registry"},
	)

	assert.Empty(t, summary)
}

func TestDiagnosePodFailures_ImagePullBackOff(t *testing.T) {
	t.Parallel()

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "harbor-core-abc", Namespace: "registry"},
		Status: corev1.PodStatus{
			Phase: corev1.PodPending,
			ContainerStatuses: []corev1.ContainerStatus{
				{
					Image: "proxy.example.com/harbor/harbor-core:v2.11.1",
					State: corev1.ContainerState{
						Waiting: &corev1.ContainerStateWaiting{Reason: "ImagePullBackOff"},
					},
				},
			},
		},
	}

	clientset := fake.NewClientset(pod)

	summary := k8s.DiagnosePodFailures(
		context.Background(), clientset, []string{"registry"},
	)

	assert.Contains(t, summary, "Failing pods in registry namespace:")
	assert.Contains(t, summary, "harbor-core-abc: ImagePullBackOff")
}

func TestDiagnosePodFailures_SucceededJobPodIsHealthy(t *testing.T) {
	t.Parallel()

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "harbor-init-xyz", Namespace: "registry"},
		Status:     corev1.PodStatus{Phase: corev1.PodSucceeded},
	}

	clientset := fake.NewClientset(pod)

	summary := k8s.DiagnosePodFailures(
		context.Background(), clientset, []string{"registry"},
	)

	assert.Empty(t, summary)
}

func TestDiagnosePodFailures_TerminatedContainer(t *testing.T) {
	t.Parallel()

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "harbor-db-0", Namespace: "registry"},
		Status: corev1.PodStatus{
			Phase: corev1.PodFailed,
			ContainerStatuses: []corev1.ContainerStatus{
				{
					State: corev1.ContainerState{
						Terminated: &corev1.ContainerStateTerminated{
							ExitCode: 137,
							Reason:   "OOMKilled",
						},
					},
				},
			},
		},
	}

	clientset := fake.NewClientset(pod)

	summary := k8s.DiagnosePodFailures(
		context.Background(), clientset, []string{"registry"},
	)

	assert.Contains(t, summary, "harbor-db-0: terminated with exit code 137 (OOMKilled)")
}
