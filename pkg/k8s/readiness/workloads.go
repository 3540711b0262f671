package readiness

import (
	"context"
	"fmt"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// WaitForDeploymentReady polls until the deployment reports an Available
// condition with status True and all desired replicas ready.
//
// A missing deployment keeps polling (it may not be created yet); any other
// API error aborts the wait.
func WaitForDeploymentReady(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace, name string,
	deadline time.Duration,
) error {
	err := PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		deployment, err := clientset.AppsV1().
			Deployments(namespace).
			Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			if apierrors.IsNotFound(err) {
				return false, nil
			}

			return false, fmt.Errorf("get deployment %s/%s: %w", namespace, name, err)
		}

		return isDeploymentReady(deployment), nil
	})
	if err != nil {
		return fmt.Errorf("deployment %s/%s: %w", namespace, name, err)
	}

	return nil
}

// WaitForStatefulSetReady polls until the statefulset has all desired
// replicas ready. Storage-tier components (database, cache, scanner) are
// statefulsets and must be waited on before the application tier.
func WaitForStatefulSetReady(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace, name string,
	deadline time.Duration,
) error {
	err := PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		statefulSet, err := clientset.AppsV1().
			StatefulSets(namespace).
			Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			if apierrors.IsNotFound(err) {
				return false, nil
			}

			return false, fmt.Errorf("get statefulset %s/%s: %w", namespace, name, err)
		}

		return isStatefulSetReady(statefulSet), nil
	})
	if err != nil {
		return fmt.Errorf("statefulset %s/%s: %w", namespace, name, err)
	}

	return nil
}

// WaitForDaemonSetReady polls until the daemonset has no unavailable pods
// and all scheduled pods updated.
func WaitForDaemonSetReady(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace, name string,
	deadline time.Duration,
) error {
	err := PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		daemonSet, err := clientset.AppsV1().
			DaemonSets(namespace).
			Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			if apierrors.IsNotFound(err) {
				return false, nil
			}

			return false, fmt.Errorf("get daemonset %s/%s: %w", namespace, name, err)
		}

		return isDaemonSetReady(daemonSet), nil
	})
	if err != nil {
		return fmt.Errorf("daemonset %s/%s: %w", namespace, name, err)
	}

	return nil
}

// isDeploymentReady returns true when the Available condition is True and
// the ready replica count matches the desired count.
func isDeploymentReady(deployment *appsv1.Deployment) bool {
	desired := int32(1)
	if deployment.Spec.Replicas != nil {
		desired = *deployment.Spec.Replicas
	}

	if deployment.Status.ReadyReplicas < desired {
		return false
	}

	for _, cond := range deployment.Status.Conditions {
		if cond.Type == appsv1.DeploymentAvailable {
			return cond.Status == corev1.ConditionTrue
		}
	}

	// Some controllers omit the Available condition; replica counts alone
	// are sufficient then.
	return true
}

func isStatefulSetReady(statefulSet *appsv1.StatefulSet) bool {
	desired := int32(1)
	if statefulSet.Spec.Replicas != nil {
		desired = *statefulSet.Spec.Replicas
	}

	return statefulSet.Status.ReadyReplicas >= desired
}

func isDaemonSetReady(daemonSet *appsv1.DaemonSet) bool {
	status := daemonSet.Status

	return status.NumberUnavailable == 0 &&
		status.UpdatedNumberScheduled >= status.DesiredNumberScheduled
}
