package app

import (
	"maps"
	"slices"

	"go.trai.ch/modman/internal/core/domain"
	"go.trai.ch/modman/internal/engine/resolver"
)

// PackageReport describes one enabled package.
type PackageReport struct {
	ID         string         `json:"id"`
	Variant    string         `json:"variant"`
	Version    string         `json:"version,omitempty"`
	Installed  bool           `json:"installed"`
	Explicit   bool           `json:"explicit"`
	RequiredBy []string       `json:"requiredBy,omitempty"`
	Issues     []domain.Issue `json:"issues,omitempty"`
}

// StatusReport is the result of Status.
type StatusReport struct {
	Profile   string          `json:"profile"`
	Stale     bool            `json:"stale"`
	Packages  []PackageReport `json:"packages"`
	Options   domain.Options  `json:"options,omitempty"`
	Externals []string        `json:"externals,omitempty"`
}

// UpdateReport is the result of Update.
type UpdateReport struct {
	Profile      string `json:"profile"`
	DryRun       bool   `json:"dryRun"`
	Saved        bool   `json:"saved"`
	Recalculated bool   `json:"recalculated"`

	Enabling              []string                          `json:"enabling,omitempty"`
	Disabling             []string                          `json:"disabling,omitempty"`
	Selecting             map[string]string                 `json:"selecting,omitempty"`
	Installing            map[string]string                 `json:"installing,omitempty"`
	ImplicitChanges       map[string]resolver.VariantChange `json:"implicitChanges,omitempty"`
	ExplicitChanges       map[string]resolver.VariantChange `json:"explicitChanges,omitempty"`
	IncompatiblePackages  []string                          `json:"incompatiblePackages,omitempty"`
	IncompatibleExternals []string                          `json:"incompatibleExternals,omitempty"`

	Packages []PackageReport `json:"packages"`
}

// HasChanges reports whether the update requires any action.
func (r *UpdateReport) HasChanges() bool {
	return len(r.Enabling) > 0 || len(r.Disabling) > 0 || len(r.Selecting) > 0 || len(r.Installing) > 0
}

// VariantReport describes one variant of a checked package.
type VariantReport struct {
	ID        string         `json:"id"`
	Version   string         `json:"version,omitempty"`
	Installed bool           `json:"installed"`
	Selected  bool           `json:"selected"`
	Issues    []domain.Issue `json:"issues"`
}

// CheckReport is the result of Check.
type CheckReport struct {
	Profile    string          `json:"profile"`
	Package    string          `json:"package"`
	Enabled    bool            `json:"enabled"`
	Explicit   bool            `json:"explicit"`
	RequiredBy []string        `json:"requiredBy,omitempty"`
	Variants   []VariantReport `json:"variants"`
	// Files are the files of the selected variant whose conditions hold.
	Files []string `json:"files"`
}

func newStatusReport(catalog *domain.Catalog, p *domain.Profile, res resolver.Result) *StatusReport {
	var externals []string
	for _, f := range slices.Sorted(maps.Keys(p.Externals)) {
		if p.Externals[f] {
			externals = append(externals, f)
		}
	}
	return &StatusReport{
		Profile:   p.Name,
		Packages:  packageReports(catalog, p.Configs, res.Status),
		Options:   p.Options,
		Externals: externals,
	}
}

func newUpdateReport(catalog *domain.Catalog, res *resolver.UpdateResult, dryRun bool) *UpdateReport {
	return &UpdateReport{
		Profile:               res.Profile.Name,
		DryRun:                dryRun,
		Recalculated:          res.Recalculated,
		Enabling:              res.EnablingPackages,
		Disabling:             res.DisablingPackages,
		Selecting:             res.SelectingVariants,
		Installing:            res.InstallingVariants,
		ImplicitChanges:       res.ImplicitVariantChanges,
		ExplicitChanges:       res.ExplicitVariantChanges,
		IncompatiblePackages:  res.IncompatiblePackages,
		IncompatibleExternals: res.IncompatibleExternals,
		Packages:              packageReports(catalog, res.Profile.Configs, res.Profile.Status),
	}
}

// packageReports lists enabled packages in catalog order.
func packageReports(catalog *domain.Catalog, configs domain.Configs, status domain.Statuses) []PackageReport {
	out := []PackageReport{}
	for id, pkg := range catalog.Packages() {
		st, ok := status[id]
		if !ok || !st.Enabled {
			continue
		}
		r := PackageReport{
			ID:         id,
			Variant:    st.VariantID,
			Explicit:   configs[id].Enabled,
			RequiredBy: st.RequiredBy,
		}
		if issues := st.Issues[st.VariantID]; len(issues) > 0 {
			r.Issues = issues
		}
		if v := resolver.SelectedBuild(pkg, st.VariantID, configs[id].Version); v != nil {
			r.Version = v.Version
			r.Installed = v.Installed
		}
		out = append(out, r)
	}
	return out
}

func newCheckReport(
	catalog *domain.Catalog,
	pkg *domain.PackageDefinition,
	p *domain.Profile,
	res resolver.Result,
) *CheckReport {
	st := res.Status[pkg.ID]
	cfg := p.Configs[pkg.ID]

	report := &CheckReport{
		Profile:    p.Name,
		Package:    pkg.ID,
		Enabled:    st.Enabled,
		Explicit:   cfg.Enabled,
		RequiredBy: st.RequiredBy,
		Files:      []string{},
	}

	for id, v := range pkg.Variants() {
		issues := st.Issues[id]
		if issues == nil {
			issues = []domain.Issue{}
		}
		report.Variants = append(report.Variants, VariantReport{
			ID:        id,
			Version:   v.Version,
			Installed: v.Installed,
			Selected:  id == st.VariantID,
			Issues:    issues,
		})
	}

	selected := resolver.SelectedBuild(pkg, st.VariantID, cfg.Version)
	if selected == nil {
		return report
	}
	files := resolver.FilterFiles(selected.Files, resolver.ConditionContext{
		PackageID:      pkg.ID,
		Variant:        selected,
		Config:         &cfg,
		ProfileOptions: p.Options,
		GlobalOptions:  catalog.GlobalOptions(),
		Features:       res.Features,
		Settings:       &p.Settings,
	})
	for _, f := range files {
		report.Files = append(report.Files, f.Path)
	}
	return report
}
