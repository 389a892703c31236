// Package resolver computes which packages are enabled, which variant each one uses,
// and why variants are incompatible.
package resolver

import (
	"fmt"
	"slices"

	"go.trai.ch/modman/internal/core/domain"
	"go.trai.ch/modman/internal/core/ports"
	"go.trai.ch/modman/internal/semver"
)

// Resolver resolves package configurations against a catalog.
// It holds no state between calls and is safe for concurrent use.
type Resolver struct {
	logger ports.Logger
}

// New creates a new Resolver that reports ignored input through logger.
func New(logger ports.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Input is a snapshot of everything a resolution reads.
type Input struct {
	Catalog   *domain.Catalog
	Configs   domain.Configs
	Options   domain.Options
	Externals map[string]bool
	Settings  *domain.Settings
}

// Result is a complete resolution: one status per catalog package.
type Result struct {
	Features domain.Features
	Status   domain.Statuses
}

// memoState tracks a package during the incompatibility pass.
type memoState int

const (
	unvisited memoState = iota
	inProgress
	done
)

type memoEntry struct {
	state      memoState
	compatible bool
}

// run holds the state of a single resolution. It is never shared between calls.
type run struct {
	logger   ports.Logger
	in       Input
	status   domain.Statuses
	pinned   map[string]bool
	features domain.Features
	expanded map[string]bool
	memo     map[string]memoEntry
}

// Resolve computes the status of every package in the catalog.
//
// Resolution seeds statuses from the configs, re-seeds implicit variants against
// the initial features, enables dependencies of explicitly enabled packages, and
// finally computes incompatibilities depth-first, switching implicit variants to
// the first compatible one.
func (r *Resolver) Resolve(in Input) Result {
	rn := &run{
		logger:   r.logger,
		in:       in,
		status:   make(domain.Statuses, in.Catalog.Len()),
		pinned:   make(map[string]bool),
		expanded: make(map[string]bool),
		memo:     make(map[string]memoEntry, in.Catalog.Len()),
	}

	rn.seed()
	rn.reseedImplicit()
	rn.enableDependencies()

	rn.features = BuildFeatures(in.Catalog, rn.status, in.Externals)
	for id := range in.Catalog.Packages() {
		rn.check(id)
	}

	return Result{Features: rn.features, Status: rn.status}
}

func (rn *run) seed() {
	for _, id := range sortedKeys(rn.in.Configs) {
		if _, ok := rn.in.Catalog.Package(id); !ok {
			rn.logger.Warn(fmt.Sprintf("ignoring config for unknown package %q", id))
		}
	}

	for id, pkg := range rn.in.Catalog.Packages() {
		cfg := rn.in.Configs[id]
		variantID := pkg.DefaultVariantID()
		if cfg.Variant != "" {
			if pkg.HasVariant(cfg.Variant) {
				variantID = cfg.Variant
				rn.pinned[id] = true
			} else {
				rn.logger.Warn(fmt.Sprintf("ignoring unknown variant %q selected for package %q", cfg.Variant, id))
			}
		}
		rn.status[id] = &domain.ResolvedStatus{
			Enabled:   cfg.Enabled,
			VariantID: variantID,
			Issues:    make(map[string][]domain.Issue),
		}
	}
}

// reseedImplicit moves packages without a pinned variant to a variant that does not
// conflict with the features of the initial selection.
func (rn *run) reseedImplicit() {
	features := BuildFeatures(rn.in.Catalog, rn.status, rn.in.Externals)

	for id, pkg := range rn.in.Catalog.Packages() {
		if rn.pinned[id] {
			continue
		}
		opts := rn.optionsFor(id)
		var compatible []string
		for variantID, variant := range pkg.Variants() {
			if len(VariantIssues(id, variant, opts, features, rn.in.Settings)) == 0 {
				compatible = append(compatible, variantID)
			}
		}
		st := rn.status[id]
		if len(compatible) > 0 && !slices.Contains(compatible, st.VariantID) {
			st.VariantID = compatible[0]
		}
	}
}

// enableDependencies expands packages the user enabled. Packages enabled only
// because of this expansion are marked transitive.
func (rn *run) enableDependencies() {
	for id := range rn.in.Catalog.Packages() {
		if rn.in.Configs[id].Enabled {
			rn.expand(id)
		}
	}
}

func (rn *run) expand(id string) {
	if rn.expanded[id] {
		return
	}
	rn.expanded[id] = true

	variant := rn.effectiveVariant(id)
	for _, dep := range variant.Dependencies {
		st, ok := rn.status[dep.ID]
		if !ok {
			rn.logger.Warn(fmt.Sprintf("package %q depends on unknown package %q", id, dep.ID))
			continue
		}
		st.AddRequiredBy(id)
		if st.Enabled {
			continue
		}
		st.Enabled = true
		st.Transitive = true
		if dep.Transitive {
			rn.expand(dep.ID)
		}
	}
}

// effectiveVariant returns the selected variant, or its update when the config pins
// the update's version.
func (rn *run) effectiveVariant(id string) *domain.VariantDefinition {
	pkg, _ := rn.in.Catalog.Package(id)
	variant, _ := pkg.Variant(rn.status[id].VariantID)

	pin := rn.in.Configs[id].Version
	if pin == "" {
		return variant
	}
	if variant.Update != nil && semver.Match(pin, variant.Update.Version) {
		return variant.Update
	}
	if !semver.Match(pin, variant.Version) {
		rn.logger.Warn(fmt.Sprintf("ignoring version %q pinned for package %q: variant %q has version %q",
			pin, id, variant.ID, variant.Version))
	}
	return variant
}

// check computes the issues of every variant of a package and reports whether the
// package has a compatible variant.
func (rn *run) check(id string) bool {
	entry := rn.memo[id]
	switch entry.state {
	case inProgress:
		// The package is on the current dependency path. Treat it as compatible so
		// that dependency cycles terminate; this can miss incompatibilities that only
		// exist through the cycle.
		return true
	case done:
		return entry.compatible
	}
	rn.memo[id] = memoEntry{state: inProgress}

	pkg, _ := rn.in.Catalog.Package(id)
	st := rn.status[id]
	opts := rn.optionsFor(id)

	for variantID, variant := range pkg.Variants() {
		issues := VariantIssues(id, variant, opts, rn.features, rn.in.Settings)
		if len(issues) == 0 && len(variant.Dependencies) > 0 {
			var blocking []string
			for _, dep := range variant.Dependencies {
				if _, ok := rn.in.Catalog.Package(dep.ID); !ok {
					continue
				}
				if !rn.check(dep.ID) {
					blocking = append(blocking, dep.ID)
				}
			}
			if len(blocking) > 0 {
				issues = append(issues, domain.IncompatibleDependencies(blocking))
			}
		}
		st.Issues[variantID] = issues
	}

	compatible := st.CompatibleVariants(pkg.VariantIDs())
	ok := len(compatible) > 0
	if ok && !rn.pinned[id] && !slices.Contains(compatible, st.VariantID) {
		st.VariantID = compatible[0]
	}

	rn.memo[id] = memoEntry{state: done, compatible: ok}
	return ok
}

// optionsFor merges the package's option overrides over the profile options.
func (rn *run) optionsFor(id string) domain.Options {
	opts := rn.in.Options.Clone()
	for k, v := range rn.in.Configs[id].Options {
		opts[k] = v
	}
	return opts
}
