package kindprovisioner_test

import (
	"testing"

	"github.com/berth-dev/berth/pkg/svc/provisioner"
	kindprovisioner "github.com/berth-dev/berth/pkg/svc/provisioner/kind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/kind/pkg/apis/config/v1alpha4"
	"sigs.k8s.io/kind/pkg/cluster"
)

const kubeconfigContent = `apiVersion: v1
kind: Config
clusters:
- cluster:
    server: https://127.0.0.1:6443
  name: kind-berth-test
contexts:
- context:
    cluster: kind-berth-test
    user: kind-berth-test
  name: kind-berth-test
current-context: kind-berth-test
users:
- name: kind-berth-test
  user: {}
`

type fakeKind struct {
	clusters []string

	createErr error
	deleteErr error
	listErr   error

	created       []string
	deleted       []string
	createOptions int
}

func (f *fakeKind) Create(name string, opts ...cluster.CreateOption) error {
	if f.createErr != nil {
		return f.createErr
	}

	f.created = append(f.created, name)
	f.createOptions = len(opts)
	f.clusters = append(f.clusters, name)

	return nil
}

func (f *fakeKind) Delete(name, _ string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}

	f.deleted = append(f.deleted, name)

	return nil
}

func (f *fakeKind) List() ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	return f.clusters, nil
}

func (f *fakeKind) KubeConfig(_ string, _ bool) (string, error) {
	return kubeconfigContent, nil
}

func TestCreate(t *testing.T) {
	t.Parallel()

	fake := &fakeKind{}
	prov := kindprovisioner.NewProvisioner(fake, nil)

	err := prov.Create(t.Context(), "berth-test")

	require.NoError(t, err)
	assert.Equal(t, []string{"berth-test"}, fake.created)
	assert.Zero(t, fake.createOptions)
}

func TestCreate_WithConfig(t *testing.T) {
	t.Parallel()

	fake := &fakeKind{}
	config := &v1alpha4.Cluster{
		Nodes: []v1alpha4.Node{{Role: v1alpha4.ControlPlaneRole}},
	}
	prov := kindprovisioner.NewProvisioner(fake, config)

	err := prov.Create(t.Context(), "berth-test")

	require.NoError(t, err)
	assert.Equal(t, 1, fake.createOptions)
}

func TestCreate_Error(t *testing.T) {
	t.Parallel()

	fake := &fakeKind{createErr: assert.AnError}
	prov := kindprovisioner.NewProvisioner(fake, nil)

	err := prov.Create(t.Context(), "berth-test")

	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "create kind cluster")
}

func TestDelete(t *testing.T) {
	t.Parallel()

	fake := &fakeKind{clusters: []string{"berth-test"}}
	prov := kindprovisioner.NewProvisioner(fake, nil)

	err := prov.Delete(t.Context(), "berth-test")

	require.NoError(t, err)
	assert.Equal(t, []string{"berth-test"}, fake.deleted)
}

func TestDelete_NotFound(t *testing.T) {
	t.Parallel()

	fake := &fakeKind{}
	prov := kindprovisioner.NewProvisioner(fake, nil)

	err := prov.Delete(t.Context(), "missing")

	require.ErrorIs(t, err, provisioner.ErrEnvironmentNotFound)
}

func TestExists(t *testing.T) {
	t.Parallel()

	fake := &fakeKind{clusters: []string{"one", "two"}}
	prov := kindprovisioner.NewProvisioner(fake, nil)

	exists, err := prov.Exists(t.Context(), "two")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = prov.Exists(t.Context(), "three")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestKubeconfig_NotFound(t *testing.T) {
	t.Parallel()

	fake := &fakeKind{}
	prov := kindprovisioner.NewProvisioner(fake, nil)

	_, err := prov.Kubeconfig(t.Context(), "missing")

	require.ErrorIs(t, err, provisioner.ErrEnvironmentNotFound)
}

func TestEndpoint(t *testing.T) {
	t.Parallel()

	fake := &fakeKind{clusters: []string{"berth-test"}}
	prov := kindprovisioner.NewProvisioner(fake, nil)

	endpoint, err := prov.Endpoint(t.Context(), "berth-test")

	require.NoError(t, err)
	assert.Equal(t, "https://127.0.0.1:6443", endpoint)
}
