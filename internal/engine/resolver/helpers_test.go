package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/modman/internal/core/domain"
	"go.trai.ch/modman/internal/core/ports/mocks"
	"go.trai.ch/modman/internal/engine/resolver"
	"go.uber.org/mock/gomock"
)

func newResolver(t *testing.T) *resolver.Resolver {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	return resolver.New(log)
}

func newCatalog(t *testing.T, pkgs ...*domain.PackageDefinition) *domain.Catalog {
	t.Helper()
	c := domain.NewCatalog()
	for _, p := range pkgs {
		require.NoError(t, c.AddPackage(p))
	}
	return c
}

func newPackage(t *testing.T, id string, variants ...*domain.VariantDefinition) *domain.PackageDefinition {
	t.Helper()
	p := domain.NewPackage(id)
	for _, v := range variants {
		require.NoError(t, p.AddVariant(v))
	}
	return p
}

func dep(id string) domain.DependencyRef {
	return domain.DependencyRef{ID: id, Transitive: true}
}

func needsFeature(name string, present bool) domain.Requirement {
	return domain.Requirement{
		Key:   domain.RequirementKey{Kind: domain.KeyFeature, Name: name},
		Value: present,
	}
}

func needsOption(name string, global bool, value domain.OptionValue) domain.Requirement {
	return domain.Requirement{
		Key:   domain.RequirementKey{Kind: domain.KeyOption, Name: name, Global: global},
		Value: value,
	}
}

func enabled() domain.PackageConfig {
	return domain.PackageConfig{Enabled: true}
}

func ptr[T any](v T) *T {
	return &v
}
