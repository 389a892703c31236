package domain

import "slices"

// ExternalContributor is the synthetic contributor for features installed outside the catalog.
const ExternalContributor = "<external>"

// Features maps a feature tag to the ordered ids of its contributors.
type Features map[string][]string

// Provided reports whether anything contributes the feature.
func (f Features) Provided(feature string) bool {
	return len(f[feature]) > 0
}

// Others returns the contributors of feature other than self, with the external
// marker stripped, and whether the external marker was present.
func (f Features) Others(feature, self string) (packages []string, external bool) {
	for _, id := range f[feature] {
		switch id {
		case self:
		case ExternalContributor:
			external = true
		default:
			packages = append(packages, id)
		}
	}
	return packages, external
}

// PackageConfig is the user's intent for one package.
type PackageConfig struct {
	Enabled bool    `json:"enabled,omitempty"`
	Variant string  `json:"variant,omitempty"`
	Version string  `json:"version,omitempty"`
	Options Options `json:"options,omitempty"`
}

// IsEmpty reports whether the config carries no information.
func (c PackageConfig) IsEmpty() bool {
	return !c.Enabled && c.Variant == "" && c.Version == "" && len(c.Options) == 0
}

// Configs maps package ids to their configs.
type Configs map[string]PackageConfig

// Clone returns a copy whose per-package option maps are also copied.
func (c Configs) Clone() Configs {
	out := make(Configs, len(c))
	for id, cfg := range c {
		if cfg.Options != nil {
			cfg.Options = cfg.Options.Clone()
		}
		out[id] = cfg
	}
	return out
}

// ResolvedStatus is the resolution output for one package.
type ResolvedStatus struct {
	Enabled    bool               `json:"enabled"`
	VariantID  string             `json:"variant"`
	Issues     map[string][]Issue `json:"issues,omitempty"`
	RequiredBy []string           `json:"requiredBy,omitempty"`
	Transitive bool               `json:"transitive,omitempty"`
}

// Compatible reports whether the variant has no issues.
func (s *ResolvedStatus) Compatible(variantID string) bool {
	return len(s.Issues[variantID]) == 0
}

// CompatibleVariants returns the issue-free variants in the given declaration order.
func (s *ResolvedStatus) CompatibleVariants(order []string) []string {
	var out []string
	for _, id := range order {
		if s.Compatible(id) {
			out = append(out, id)
		}
	}
	return out
}

// AddRequiredBy records that pkg depends on this package. It is idempotent.
func (s *ResolvedStatus) AddRequiredBy(pkg string) {
	if !slices.Contains(s.RequiredBy, pkg) {
		s.RequiredBy = append(s.RequiredBy, pkg)
	}
}

// Statuses maps package ids to their resolved status.
type Statuses map[string]*ResolvedStatus

// Profile is a persisted snapshot: user intent plus the last resolution of it.
type Profile struct {
	Name        string          `json:"name"`
	Configs     Configs         `json:"packages,omitempty"`
	Options     Options         `json:"options,omitempty"`
	Externals   map[string]bool `json:"externals,omitempty"`
	Settings    Settings        `json:"settings"`
	Features    Features        `json:"features,omitempty"`
	Status      Statuses        `json:"status,omitempty"`
	CatalogHash string          `json:"catalogHash,omitempty"`
}
