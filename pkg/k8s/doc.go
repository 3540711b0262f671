// Package k8s provides Kubernetes client construction and cluster inspection
// helpers shared by the verify and install flows.
//
// It covers kubeconfig loading, REST config and clientset construction,
// pod-failure diagnostics for readiness timeouts, and DNS-1123 name
// sanitization for ephemeral environment names.
package k8s
