package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/modman/internal/core/domain"
	"go.trai.ch/modman/internal/engine/resolver"
)

func TestVariantIssues(t *testing.T) {
	tests := []struct {
		name     string
		variant  *domain.VariantDefinition
		opts     domain.Options
		features domain.Features
		settings *domain.Settings
		want     []domain.Issue
	}{
		{
			name:    "no issues",
			variant: &domain.VariantDefinition{ID: "v1", Features: []string{"roads"}},
			features: domain.Features{
				"roads": {"self"},
			},
			want: []domain.Issue{},
		},
		{
			name:     "conflicting feature",
			variant:  &domain.VariantDefinition{ID: "v1", Features: []string{"roads"}},
			features: domain.Features{"roads": {"self", "other"}},
			want:     []domain.Issue{domain.ConflictingFeature("roads", []string{"other"}, false)},
		},
		{
			name:     "conflicting external feature",
			variant:  &domain.VariantDefinition{ID: "v1", Features: []string{"roads"}},
			features: domain.Features{"roads": {domain.ExternalContributor, "self"}},
			want:     []domain.Issue{domain.ConflictingFeature("roads", nil, true)},
		},
		{
			name: "missing and incompatible features",
			variant: &domain.VariantDefinition{
				ID:           "v1",
				Requirements: domain.Requirements{needsFeature("darknite", true), needsFeature("snow", false)},
			},
			features: domain.Features{"snow": {"weather"}},
			want: []domain.Issue{
				domain.MissingFeature("darknite"),
				domain.IncompatibleFeature("snow", []string{"weather"}, false),
			},
		},
		{
			name: "own feature does not violate an exclusion",
			variant: &domain.VariantDefinition{
				ID:           "v1",
				Features:     []string{"snow"},
				Requirements: domain.Requirements{needsFeature("snow", false)},
			},
			features: domain.Features{"snow": {"self"}},
			want:     []domain.Issue{},
		},
		{
			name: "exclusion names only other contributors",
			variant: &domain.VariantDefinition{
				ID:           "v1",
				Requirements: domain.Requirements{needsFeature("snow", false)},
			},
			features: domain.Features{"snow": {"self", "weather"}},
			want:     []domain.Issue{domain.IncompatibleFeature("snow", []string{"weather"}, false)},
		},
		{
			name: "conflicts come before requirements",
			variant: &domain.VariantDefinition{
				ID:           "v1",
				Features:     []string{"roads"},
				Requirements: domain.Requirements{needsFeature("darknite", true)},
			},
			features: domain.Features{"roads": {"other", "self"}},
			want: []domain.Issue{
				domain.ConflictingFeature("roads", []string{"other"}, false),
				domain.MissingFeature("darknite"),
			},
		},
		{
			name: "configured option mismatch",
			variant: &domain.VariantDefinition{
				ID:           "v1",
				Requirements: domain.Requirements{needsOption("season", false, "winter")},
			},
			opts: domain.Options{"season": "summer"},
			want: []domain.Issue{domain.IncompatibleOption("season", "winter")},
		},
		{
			name: "unset option is not checked",
			variant: &domain.VariantDefinition{
				ID:           "v1",
				Requirements: domain.Requirements{needsOption("season", false, "winter")},
			},
			want: []domain.Issue{},
		},
		{
			name: "multi option contains required value",
			variant: &domain.VariantDefinition{
				ID:           "v1",
				Requirements: domain.Requirements{needsOption("props", false, "b")},
			},
			opts: domain.Options{"props": []domain.OptionValue{"a", "b"}},
			want: []domain.Issue{},
		},
		{
			name: "version and hardware patch",
			variant: &domain.VariantDefinition{
				ID: "v1",
				Requirements: domain.Requirements{
					{Key: domain.RequirementKey{Kind: domain.KeyMinVersion}, Value: float64(641)},
					{Key: domain.RequirementKey{Kind: domain.KeyHardwarePatch}, Value: true},
				},
			},
			settings: &domain.Settings{PatchVersion: ptr(640), HardwarePatched: ptr(false)},
			want: []domain.Issue{
				domain.IncompatibleVersion(641),
				domain.MissingHardwarePatch(),
			},
		},
		{
			name: "unknown settings are permissive",
			variant: &domain.VariantDefinition{
				ID: "v1",
				Requirements: domain.Requirements{
					{Key: domain.RequirementKey{Kind: domain.KeyMinVersion}, Value: float64(641)},
					{Key: domain.RequirementKey{Kind: domain.KeyHardwarePatch}, Value: true},
				},
			},
			want: []domain.Issue{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.VariantIssues("self", tt.variant, tt.opts, tt.features, tt.settings)
			assert.Equal(t, tt.want, got)
		})
	}
}
