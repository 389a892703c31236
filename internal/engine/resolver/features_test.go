package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/modman/internal/core/domain"
	"go.trai.ch/modman/internal/engine/resolver"
)

func TestBuildFeatures(t *testing.T) {
	catalog := newCatalog(t,
		newPackage(t, "b", &domain.VariantDefinition{ID: "v1", Features: []string{"roads", "roads"}}),
		newPackage(t, "a",
			&domain.VariantDefinition{ID: "v1", Features: []string{"roads"}},
			&domain.VariantDefinition{ID: "v2", Features: []string{"rails"}},
		),
		newPackage(t, "c", &domain.VariantDefinition{ID: "v1", Features: []string{"terrain"}}),
	)

	status := domain.Statuses{
		"a": {Enabled: true, VariantID: "v2"},
		"b": {Enabled: true, VariantID: "v1"},
		"c": {Enabled: false, VariantID: "v1"},
	}

	t.Run("Contributors follow catalog order", func(t *testing.T) {
		status["a"].VariantID = "v1"
		defer func() { status["a"].VariantID = "v2" }()

		features := resolver.BuildFeatures(catalog, status, nil)
		assert.Equal(t, domain.Features{"roads": {"b", "a"}}, features)
	})

	t.Run("Selected variant only", func(t *testing.T) {
		features := resolver.BuildFeatures(catalog, status, nil)
		assert.Equal(t, domain.Features{"roads": {"b"}, "rails": {"a"}}, features)
	})

	t.Run("External features come first", func(t *testing.T) {
		features := resolver.BuildFeatures(catalog, status, map[string]bool{"roads": true, "water": true, "trees": false})
		assert.Equal(t, domain.Features{
			"roads": {domain.ExternalContributor, "b"},
			"rails": {"a"},
			"water": {domain.ExternalContributor},
		}, features)
	})
}
