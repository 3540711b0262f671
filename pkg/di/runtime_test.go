package di_test

import (
	"testing"

	"github.com/berth-dev/berth/pkg/apis/distribution/v1alpha1"
	"github.com/berth-dev/berth/pkg/di"
	"github.com/berth-dev/berth/pkg/svc/provisioner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuntime_ResolvesTimer(t *testing.T) {
	t.Parallel()

	runtime := di.NewRuntime()

	err := runtime.Invoke(func(injector di.Injector) error {
		tmr, err := di.ResolveTimer(injector)
		require.NoError(t, err)
		assert.NotNil(t, tmr)

		return nil
	})

	require.NoError(t, err)
}

func TestNewRuntime_ResolvesProvisionerFactory(t *testing.T) {
	t.Parallel()

	runtime := di.NewRuntime()

	err := runtime.Invoke(func(injector di.Injector) error {
		factory, err := di.ResolveProvisionerFactory(injector)
		require.NoError(t, err)
		require.NotNil(t, factory)

		distribution := v1alpha1.NewDistribution()
		distribution.Spec.Environment.Provider = v1alpha1.ProviderKind

		prov, err := factory(distribution, "", "")
		require.NoError(t, err)
		assert.NotNil(t, prov)

		distribution.Spec.Environment.Provider = v1alpha1.Provider("bogus")

		_, err = factory(distribution, "", "")
		require.ErrorIs(t, err, provisioner.ErrUnknownProvider)

		return nil
	})

	require.NoError(t, err)
}

func TestResolveTimer_MissingDependency(t *testing.T) {
	t.Parallel()

	runtime := di.New()

	err := runtime.Invoke(func(injector di.Injector) error {
		_, err := di.ResolveTimer(injector)

		return err
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve timer dependency")
}
