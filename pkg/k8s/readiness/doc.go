// Package readiness provides Kubernetes resource readiness polling utilities.
//
// This package offers reusable utilities for waiting until deployed resources
// become ready. It supports deployments, statefulsets, daemonsets,
// cert-manager certificates, and service endpoints, and provides the generic
// polling mechanism the verify flow is built on.
//
// Key features:
//   - Generic polling mechanism (PollUntil, PollForReadiness)
//   - Creation polling that tolerates timeout (WaitForResourceCreated)
//   - Workload readiness polling (WaitForDeploymentReady,
//     WaitForStatefulSetReady, WaitForDaemonSetReady)
//   - Certificate readiness via the dynamic client (WaitForCertificateReady)
//   - Service endpoint verification (WaitForServiceEndpoints)
package readiness
