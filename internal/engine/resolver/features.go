package resolver

import (
	"slices"

	"go.trai.ch/modman/internal/core/domain"
)

// BuildFeatures maps every feature to the packages whose selected variant provides it.
// Contributors follow catalog order. Features declared installed externally get the
// external marker in front of the list.
func BuildFeatures(catalog *domain.Catalog, status domain.Statuses, externals map[string]bool) domain.Features {
	features := make(domain.Features)

	for id, pkg := range catalog.Packages() {
		st := status[id]
		if st == nil || !st.Enabled {
			continue
		}
		variant, ok := pkg.Variant(st.VariantID)
		if !ok {
			continue
		}
		for _, f := range variant.Features {
			if !slices.Contains(features[f], id) {
				features[f] = append(features[f], id)
			}
		}
	}

	for _, f := range sortedKeys(externals) {
		if externals[f] {
			features[f] = append([]string{domain.ExternalContributor}, features[f]...)
		}
	}

	return features
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
