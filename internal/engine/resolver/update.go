package resolver

import (
	"fmt"
	"maps"

	"go.trai.ch/modman/internal/core/domain"
	"go.trai.ch/modman/internal/semver"
)

// ConfigDelta is a requested change to one package config. Nil fields are unchanged.
type ConfigDelta struct {
	Enabled *bool
	// Variant pins a variant; an empty string removes the pin.
	Variant *string
	// Version pins a version; an empty string removes the pin.
	Version *string
	// Options sets per-package overrides; a nil value removes the override.
	Options domain.Options
}

// UpdateRequest is a batch of changes against a previously resolved profile.
type UpdateRequest struct {
	Catalog       *domain.Catalog
	Previous      *domain.Profile
	GlobalOptions []domain.OptionDefinition
	Configs       map[string]ConfigDelta
	// Options sets profile options; a nil value removes the option.
	Options   domain.Options
	Externals map[string]bool
	// Force resolves even if no change could affect the previous resolution.
	Force bool
}

// VariantChange is a variant switch the engine made on its own.
type VariantChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// UpdateResult is the new profile plus everything a caller has to act on.
type UpdateResult struct {
	Profile      *domain.Profile
	Recalculated bool

	EnablingPackages   []string
	DisablingPackages  []string
	SelectingVariants  map[string]string
	InstallingVariants map[string]string
	// ImplicitVariantChanges switch to an installed variant and need no confirmation.
	ImplicitVariantChanges map[string]VariantChange
	// ExplicitVariantChanges switch to a variant that is not installed yet.
	ExplicitVariantChanges map[string]VariantChange
	IncompatiblePackages   []string
	IncompatibleExternals  []string
}

// HasChanges reports whether the update requires any action.
func (u *UpdateResult) HasChanges() bool {
	return len(u.EnablingPackages) > 0 || len(u.DisablingPackages) > 0 ||
		len(u.SelectingVariants) > 0 || len(u.InstallingVariants) > 0
}

// update holds the merged inputs of a single ResolveUpdate call.
type update struct {
	req       UpdateRequest
	prev      *domain.Profile
	configs   domain.Configs
	options   domain.Options
	externals map[string]bool
	touched   map[string]bool
	selected  map[string]bool
	repinned  map[string]bool
	recalc    bool
}

// ResolveUpdate merges the request onto the previous profile, resolves the result and
// classifies what changed per package. The previous profile is never modified.
func (r *Resolver) ResolveUpdate(req UpdateRequest) UpdateResult {
	prev := req.Previous
	if prev == nil {
		prev = &domain.Profile{}
	}

	u := &update{
		req:       req,
		prev:      prev,
		configs:   prev.Configs.Clone(),
		options:   prev.Options.Clone(),
		externals: maps.Clone(prev.Externals),
		touched:   make(map[string]bool),
		selected:  make(map[string]bool),
		repinned:  make(map[string]bool),
		recalc:    req.Force || prev.Status == nil,
	}
	if u.externals == nil {
		u.externals = make(map[string]bool)
	}

	r.mergeConfigs(u)
	r.mergeOptions(u)
	u.mergeExternals()

	res := Result{Features: prev.Features, Status: cloneStatuses(prev.Status)}
	if u.recalc {
		res = r.Resolve(Input{
			Catalog:   req.Catalog,
			Configs:   u.configs,
			Options:   u.options,
			Externals: u.externals,
			Settings:  &prev.Settings,
		})
	}

	out := u.diff(res)
	out.Recalculated = u.recalc
	u.canonicalize(res.Status)

	out.Profile = &domain.Profile{
		Name:        prev.Name,
		Configs:     u.configs,
		Options:     u.options,
		Externals:   u.externals,
		Settings:    prev.Settings,
		Features:    res.Features,
		Status:      res.Status,
		CatalogHash: prev.CatalogHash,
	}
	return out
}

func (r *Resolver) mergeConfigs(u *update) {
	for _, id := range sortedKeys(u.req.Configs) {
		delta := u.req.Configs[id]
		pkg, ok := u.req.Catalog.Package(id)
		if !ok {
			r.logger.Warn(fmt.Sprintf("ignoring change to unknown package %q", id))
			continue
		}
		u.touched[id] = true
		cfg := u.configs[id]

		if delta.Enabled != nil && *delta.Enabled != cfg.Enabled {
			cfg.Enabled = *delta.Enabled
			u.recalc = true
		}

		if delta.Variant != nil {
			switch {
			case *delta.Variant != "" && !pkg.HasVariant(*delta.Variant):
				r.logger.Warn(fmt.Sprintf("ignoring unknown variant %q selected for package %q", *delta.Variant, id))
			case *delta.Variant != cfg.Variant:
				cfg.Variant = *delta.Variant
				u.selected[id] = cfg.Variant != ""
				u.recalc = true
			}
		}

		if delta.Version != nil && *delta.Version != cfg.Version {
			cfg.Version = *delta.Version
			u.repinned[id] = true
			u.recalc = true
		}

		for _, key := range sortedKeys(delta.Options) {
			def := packageOption(pkg, key)
			if def == nil {
				def = findOption(u.req.GlobalOptions, key)
			}
			if def == nil {
				r.logger.Warn(fmt.Sprintf("ignoring unknown option %q for package %q", key, id))
				continue
			}
			var changed bool
			cfg.Options, changed = setOption(cfg.Options, key, domain.CoerceValue(def, delta.Options[key]))
			u.recalc = u.recalc || changed
		}

		u.configs[id] = cfg
	}
}

func (r *Resolver) mergeOptions(u *update) {
	for _, key := range sortedKeys(u.req.Options) {
		def := findOption(u.req.GlobalOptions, key)
		if def == nil {
			r.logger.Warn(fmt.Sprintf("ignoring unknown option %q", key))
			continue
		}
		var changed bool
		u.options, changed = setOption(u.options, key, domain.CoerceValue(def, u.req.Options[key]))
		u.recalc = u.recalc || changed
	}
}

func (u *update) mergeExternals() {
	for _, f := range sortedKeys(u.req.Externals) {
		enabled := u.req.Externals[f]
		if u.externals[f] != enabled {
			u.recalc = true
		}
		if enabled {
			u.externals[f] = true
		} else {
			delete(u.externals, f)
		}
	}
}

// setOption applies one option change and reports whether the value changed.
func setOption(opts domain.Options, key string, value domain.OptionValue) (domain.Options, bool) {
	old, had := opts[key]
	if value == nil {
		if !had {
			return opts, false
		}
		delete(opts, key)
		return opts, true
	}
	if had && domain.ValuesEqual(old, value) {
		return opts, false
	}
	if opts == nil {
		opts = make(domain.Options)
	}
	opts[key] = value
	return opts, true
}

func (u *update) diff(res Result) UpdateResult {
	out := UpdateResult{
		SelectingVariants:      make(map[string]string),
		InstallingVariants:     make(map[string]string),
		ImplicitVariantChanges: make(map[string]VariantChange),
		ExplicitVariantChanges: make(map[string]VariantChange),
	}

	for id, pkg := range u.req.Catalog.Packages() {
		st := res.Status[id]
		if st == nil {
			continue
		}
		old := u.prev.Status[id]
		wasEnabled := old != nil && old.Enabled
		variantChanged := old != nil && old.VariantID != st.VariantID

		switch {
		case st.Enabled && !wasEnabled:
			out.EnablingPackages = append(out.EnablingPackages, id)
		case !st.Enabled && wasEnabled:
			out.DisablingPackages = append(out.DisablingPackages, id)
		}
		if variantChanged {
			out.SelectingVariants[id] = st.VariantID
		}
		if !st.Enabled {
			continue
		}

		if len(st.CompatibleVariants(pkg.VariantIDs())) == 0 {
			out.IncompatiblePackages = append(out.IncompatiblePackages, id)
		}

		target := SelectedBuild(pkg, st.VariantID, u.configs[id].Version)
		if target == nil {
			continue
		}
		if !target.Installed && (!wasEnabled || variantChanged || u.repinned[id]) {
			out.InstallingVariants[id] = st.VariantID
		}

		if wasEnabled && variantChanged && !u.selected[id] {
			if !st.Compatible(old.VariantID) || u.touched[id] {
				change := VariantChange{From: old.VariantID, To: st.VariantID}
				if target.Installed {
					out.ImplicitVariantChanges[id] = change
				} else {
					out.ExplicitVariantChanges[id] = change
				}
			}
		}
	}

	for _, f := range sortedKeys(u.externals) {
		if _, inRequest := u.req.Externals[f]; inRequest {
			continue
		}
		if others, _ := res.Features.Others(f, domain.ExternalContributor); len(others) > 0 {
			out.IncompatibleExternals = append(out.IncompatibleExternals, f)
		}
	}

	return out
}

// SelectedBuild is the build that has to be present for the selected variant:
// the update when the version pin selects it, the variant otherwise.
func SelectedBuild(pkg *domain.PackageDefinition, variantID, versionPin string) *domain.VariantDefinition {
	variant, ok := pkg.Variant(variantID)
	if !ok {
		return nil
	}
	if versionPin != "" && variant.Update != nil && semver.Match(versionPin, variant.Update.Version) {
		return variant.Update
	}
	return variant
}

// canonicalize drops config entries that restate what resolution would pick anyway.
// An option override is redundant only when it equals the value the package would
// inherit from the profile options.
func (u *update) canonicalize(status domain.Statuses) {
	for _, id := range sortedKeys(u.configs) {
		cfg := u.configs[id]
		pkg, ok := u.req.Catalog.Package(id)
		if !ok {
			continue
		}

		if st := status[id]; st != nil && cfg.Variant != "" && cfg.Variant == defaultVariant(pkg, st) {
			cfg.Variant = ""
		}

		for _, key := range sortedKeys(cfg.Options) {
			def := packageOption(pkg, key)
			if def == nil {
				def = findOption(u.req.GlobalOptions, key)
			}
			if def != nil && domain.ValuesEqual(domain.GetOptionValue(def, u.options), cfg.Options[key]) {
				delete(cfg.Options, key)
			}
		}
		if len(cfg.Options) == 0 {
			cfg.Options = nil
		}

		if cfg.IsEmpty() {
			delete(u.configs, id)
		} else {
			u.configs[id] = cfg
		}
	}
}

// defaultVariant is the variant resolution picks without a pin: the first compatible
// one, or the first declared.
func defaultVariant(pkg *domain.PackageDefinition, st *domain.ResolvedStatus) string {
	if compatible := st.CompatibleVariants(pkg.VariantIDs()); len(compatible) > 0 {
		return compatible[0]
	}
	return pkg.DefaultVariantID()
}

func packageOption(pkg *domain.PackageDefinition, key string) *domain.OptionDefinition {
	for _, variant := range pkg.Variants() {
		if def, ok := variant.Option(key); ok {
			return def
		}
	}
	return nil
}

func findOption(defs []domain.OptionDefinition, key string) *domain.OptionDefinition {
	for i := range defs {
		if defs[i].ID == key {
			return &defs[i]
		}
	}
	return nil
}

func cloneStatuses(in domain.Statuses) domain.Statuses {
	if in == nil {
		return nil
	}
	out := make(domain.Statuses, len(in))
	for id, st := range in {
		c := *st
		out[id] = &c
	}
	return out
}
