package k8s

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// EnsurePullSecret creates or updates a dockerconfigjson pull secret holding
// registry credentials. The namespace is created when it does not exist so
// the secret can land before the chart install creates the namespace itself.
func EnsurePullSecret(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace, name, registry, username, password string,
) error {
	dockerConfig, err := dockerConfigJSON(registry, username, password)
	if err != nil {
		return fmt.Errorf("encode pull secret: %w", err)
	}

	err = ensureNamespace(ctx, clientset, namespace)
	if err != nil {
		return err
	}

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Type: corev1.SecretTypeDockerConfigJson,
		Data: map[string][]byte{
			corev1.DockerConfigJsonKey: dockerConfig,
		},
	}

	_, err = clientset.CoreV1().Secrets(namespace).Create(ctx, secret, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		_, err = clientset.CoreV1().Secrets(namespace).Update(ctx, secret, metav1.UpdateOptions{})
	}

	if err != nil {
		return fmt.Errorf("ensure pull secret %s/%s: %w", namespace, name, err)
	}

	return nil
}

func ensureNamespace(ctx context.Context, clientset kubernetes.Interface, namespace string) error {
	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: namespace}}

	_, err := clientset.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("ensure namespace %s: %w", namespace, err)
	}

	return nil
}

func dockerConfigJSON(registry, username, password string) ([]byte, error) {
	auth := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))

	config := map[string]any{
		"auths": map[string]any{
			registry: map[string]string{
				"username": username,
				"password": password,
				"auth":     auth,
			},
		},
	}

	encoded, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("marshal docker config: %w", err)
	}

	return encoded, nil
}
