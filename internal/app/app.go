// Package app implements the application layer for modman.
package app

import (
	"context"
	"fmt"
	"sync"

	"go.trai.ch/modman/internal/core/domain"
	"go.trai.ch/modman/internal/core/ports"
	"go.trai.ch/modman/internal/engine/resolver"
	"go.trai.ch/zerr"
)

// Paths locates the directories a command works on.
type Paths struct {
	// Catalog holds the package descriptors.
	Catalog string
	// State holds the saved profiles.
	State string
	// Plugins holds the installed variants.
	Plugins string
}

// App represents the main application logic.
type App struct {
	loader   ports.CatalogLoader
	store    ports.ProfileStore
	installs ports.InstallIndex
	hasher   ports.Fingerprinter
	watcher  ports.Watcher
	resolver *resolver.Resolver
	tracer   ports.Tracer
	logger   ports.Logger

	// mu serializes read-modify-write cycles on profiles.
	mu sync.Mutex
}

// New creates a new App instance.
func New(
	loader ports.CatalogLoader,
	store ports.ProfileStore,
	installs ports.InstallIndex,
	hasher ports.Fingerprinter,
	watcher ports.Watcher,
	res *resolver.Resolver,
	tracer ports.Tracer,
	log ports.Logger,
) *App {
	return &App{
		loader:   loader,
		store:    store,
		installs: installs,
		hasher:   hasher,
		watcher:  watcher,
		resolver: res,
		tracer:   tracer,
		logger:   log,
	}
}

// Status resolves the saved profile against the current catalog without saving anything.
func (a *App) Status(ctx context.Context, paths Paths, name string) (*StatusReport, error) {
	ctx, span := a.tracer.Start(ctx, "status")
	defer span.End()
	span.SetAttribute("profile", name)

	catalog, err := a.loadCatalog(ctx, paths)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	prev, err := a.loadProfile(ctx, paths, name)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	res := a.resolve(ctx, catalog, prev)
	report := newStatusReport(catalog, prev, res)
	report.Stale = prev.CatalogHash != "" && prev.CatalogHash != a.hasher.CatalogHash(catalog)
	return report, nil
}

// Watch reports the status once and again after every change to the catalog or plugins directory.
// A failing first status is returned. Later failures are passed to fn, since a catalog is often
// invalid while it is being edited. Watch returns when ctx is done.
func (a *App) Watch(ctx context.Context, paths Paths, name string, fn func(*StatusReport, error)) error {
	report, err := a.Status(ctx, paths, name)
	if err != nil {
		return err
	}
	fn(report, nil)

	changes, err := a.watcher.Watch(ctx, paths.Catalog, paths.Plugins)
	if err != nil {
		return zerr.Wrap(err, "failed to watch for changes")
	}
	for batch := range changes {
		a.logger.Info(fmt.Sprintf("%d path(s) changed, resolving again", len(batch)))
		fn(a.Status(ctx, paths, name))
	}
	return nil
}

// UpdateOptions are the changes an Update applies to a profile.
type UpdateOptions struct {
	Configs   map[string]resolver.ConfigDelta
	Options   domain.Options
	Externals map[string]bool
	// Settings fields that are set replace the saved ones.
	Settings *domain.Settings
	// Force resolves even if nothing changed.
	Force bool
	// DryRun computes the update without saving the profile.
	DryRun bool
}

// Update applies changes to a profile, resolves it and saves the canonical result.
// The profile is resolved from scratch when the catalog changed since it was saved.
func (a *App) Update(ctx context.Context, paths Paths, name string, opts UpdateOptions) (*UpdateReport, error) {
	ctx, span := a.tracer.Start(ctx, "update")
	defer span.End()
	span.SetAttribute("profile", name)

	catalog, err := a.loadCatalog(ctx, paths)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	hash := a.hasher.CatalogHash(catalog)

	a.mu.Lock()
	defer a.mu.Unlock()

	prev, err := a.loadProfile(ctx, paths, name)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	force := opts.Force || prev.CatalogHash != hash
	if opts.Settings != nil {
		merged := prev.Settings.Merge(*opts.Settings)
		if !merged.Equal(prev.Settings) {
			prev.Settings = merged
			force = true
		}
	}
	if force && prev.CatalogHash != "" && prev.CatalogHash != hash {
		a.logger.Info("catalog changed since the profile was saved, resolving from scratch")
	}

	_, resolveSpan := a.tracer.Start(ctx, "resolve update")
	result := a.resolver.ResolveUpdate(resolver.UpdateRequest{
		Catalog:       catalog,
		Previous:      prev,
		GlobalOptions: catalog.GlobalOptions(),
		Configs:       opts.Configs,
		Options:       opts.Options,
		Externals:     opts.Externals,
		Force:         force,
	})
	resolveSpan.SetAttribute("recalculated", result.Recalculated)
	resolveSpan.End()

	result.Profile.CatalogHash = hash
	report := newUpdateReport(catalog, &result, opts.DryRun)

	if opts.DryRun || !result.Recalculated {
		return report, nil
	}

	_, saveSpan := a.tracer.Start(ctx, "save profile")
	defer saveSpan.End()
	if err := a.store.Put(paths.State, result.Profile); err != nil {
		saveSpan.RecordError(err)
		span.RecordError(err)
		return nil, zerr.With(zerr.Wrap(err, "failed to save profile"), "profile", name)
	}
	report.Saved = true
	return report, nil
}

// Check explains every variant of one package under the saved profile.
func (a *App) Check(ctx context.Context, paths Paths, name, packageID string) (*CheckReport, error) {
	ctx, span := a.tracer.Start(ctx, "check")
	defer span.End()
	span.SetAttribute("profile", name)
	span.SetAttribute("package", packageID)

	catalog, err := a.loadCatalog(ctx, paths)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	pkg, ok := catalog.Package(packageID)
	if !ok {
		err := zerr.With(domain.ErrPackageNotFound, "package", packageID)
		span.RecordError(err)
		return nil, err
	}

	prev, err := a.loadProfile(ctx, paths, name)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	res := a.resolve(ctx, catalog, prev)
	return newCheckReport(catalog, pkg, prev, res), nil
}

func (a *App) loadCatalog(ctx context.Context, paths Paths) (*domain.Catalog, error) {
	ctx, span := a.tracer.Start(ctx, "load catalog")
	defer span.End()
	span.SetAttribute("catalog.dir", paths.Catalog)

	catalog, err := a.loader.Load(ctx, paths.Catalog)
	if err != nil {
		span.RecordError(err)
		return nil, zerr.Wrap(err, "failed to load catalog")
	}

	catalog.MarkInstalled(func(packageID, variantID, version string) bool {
		return a.installs.Installed(paths.Plugins, packageID, variantID, version)
	})
	span.SetAttribute("catalog.packages", catalog.Len())
	return catalog, nil
}

// loadProfile returns the saved profile, or an empty one if none was saved yet.
func (a *App) loadProfile(ctx context.Context, paths Paths, name string) (*domain.Profile, error) {
	_, span := a.tracer.Start(ctx, "load profile")
	defer span.End()

	p, err := a.store.Get(paths.State, name)
	if err != nil {
		span.RecordError(err)
		return nil, zerr.With(zerr.Wrap(err, "failed to load profile"), "profile", name)
	}
	if p == nil {
		a.logger.Info(fmt.Sprintf("profile %q does not exist yet, starting empty", name))
		return &domain.Profile{Name: name}, nil
	}
	p.Name = name
	return p, nil
}

func (a *App) resolve(ctx context.Context, catalog *domain.Catalog, p *domain.Profile) resolver.Result {
	_, span := a.tracer.Start(ctx, "resolve")
	defer span.End()

	res := a.resolver.Resolve(resolver.Input{
		Catalog:   catalog,
		Configs:   p.Configs,
		Options:   p.Options,
		Externals: p.Externals,
		Settings:  &p.Settings,
	})
	span.SetAttribute("packages.enabled", countEnabled(res.Status))
	return res
}

func countEnabled(status domain.Statuses) int {
	n := 0
	for _, st := range status {
		if st.Enabled {
			n++
		}
	}
	return n
}
