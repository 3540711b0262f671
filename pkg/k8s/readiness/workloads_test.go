package readiness_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/berth-dev/berth/pkg/k8s/readiness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

var errAPIServerBoom = errors.New("boom")

func int32Ptr(v int32) *int32 { return &v }

func readyDeployment(namespace, name string, replicas int32) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec:       appsv1.DeploymentSpec{Replicas: int32Ptr(replicas)},
		Status: appsv1.DeploymentStatus{
			ReadyReplicas: replicas,
			Conditions: []appsv1.DeploymentCondition{
				{Type: appsv1.DeploymentAvailable, Status: corev1.ConditionTrue},
			},
		},
	}
}

func TestWaitForDeploymentReady_ReadyOnFirstPoll(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(readyDeployment("registry", "harbor-core", 2))

	err := readiness.WaitForDeploymentReady(
		context.Background(), clientset, "registry", "harbor-core", time.Second,
	)

	require.NoError(t, err)
}

func TestWaitForDeploymentReady_NotAvailable(t *testing.T) {
	t.Parallel()

	deployment := readyDeployment("registry", "harbor-core", 2)
	deployment.Status.Conditions[0].Status = corev1.ConditionFalse

	clientset := fake.NewClientset(deployment)

	err := readiness.WaitForDeploymentReady(
		context.Background(), clientset, "registry", "harbor-core", 100*time.Millisecond,
	)

	require.ErrorIs(t, err, readiness.ErrTimeoutExceeded)
	assert.Contains(t, err.Error(), "harbor-core")
}

func TestWaitForDeploymentReady_MissingKeepsPollingUntilTimeout(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset()

	err := readiness.WaitForDeploymentReady(
		context.Background(), clientset, "registry", "absent", 100*time.Millisecond,
	)

	require.ErrorIs(t, err, readiness.ErrTimeoutExceeded)
}

func TestWaitForDeploymentReady_PropagatesAPIError(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset()
	clientset.PrependReactor(
		"get",
		"deployments",
		func(_ k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, errAPIServerBoom
		},
	)

	err := readiness.WaitForDeploymentReady(
		context.Background(), clientset, "registry", "harbor-core", time.Second,
	)

	require.ErrorIs(t, err, errAPIServerBoom)
}

func TestWaitForStatefulSetReady_ReadyReplicasSatisfied(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(&appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{Name: "harbor-database", Namespace: "registry"},
		Spec:       appsv1.StatefulSetSpec{Replicas: int32Ptr(1)},
		Status:     appsv1.StatefulSetStatus{ReadyReplicas: 1},
	})

	err := readiness.WaitForStatefulSetReady(
		context.Background(), clientset, "registry", "harbor-database", time.Second,
	)

	require.NoError(t, err)
}

func TestWaitForStatefulSetReady_TimesOutWhenNotReady(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(&appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{Name: "harbor-database", Namespace: "registry"},
		Spec:       appsv1.StatefulSetSpec{Replicas: int32Ptr(2)},
		Status:     appsv1.StatefulSetStatus{ReadyReplicas: 1},
	})

	err := readiness.WaitForStatefulSetReady(
		context.Background(), clientset, "registry", "harbor-database", 100*time.Millisecond,
	)

	require.ErrorIs(t, err, readiness.ErrTimeoutExceeded)
}

func TestWaitForDaemonSetReady_ReadyOnFirstPoll(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(&appsv1.DaemonSet{
		ObjectMeta: metav1.ObjectMeta{Name: "ingress-nginx", Namespace: "ingress-nginx"},
		Status: appsv1.DaemonSetStatus{
			DesiredNumberScheduled: 1,
			UpdatedNumberScheduled: 1,
			NumberUnavailable:      0,
		},
	})

	err := readiness.WaitForDaemonSetReady(
		context.Background(), clientset, "ingress-nginx", "ingress-nginx", time.Second,
	)

	require.NoError(t, err)
}

func TestWaitForDaemonSetReady_UnavailablePodsTimeOut(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(&appsv1.DaemonSet{
		ObjectMeta: metav1.ObjectMeta{Name: "ingress-nginx", Namespace: "ingress-nginx"},
		Status: appsv1.DaemonSetStatus{
			DesiredNumberScheduled: 2,
			UpdatedNumberScheduled: 2,
			NumberUnavailable:      1,
		},
	})

	err := readiness.WaitForDaemonSetReady(
		context.Background(), clientset, "ingress-nginx", "ingress-nginx", 100*time.Millisecond,
	)

	require.ErrorIs(t, err, readiness.ErrTimeoutExceeded)
}
