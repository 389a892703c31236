package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/modman/internal/adapters/telemetry"
	"go.trai.ch/modman/internal/app"
	"go.trai.ch/modman/internal/core/domain"
	"go.trai.ch/modman/internal/core/ports"
	"go.trai.ch/modman/internal/core/ports/mocks"
	"go.trai.ch/modman/internal/engine/resolver"
	"go.uber.org/mock/gomock"
)

var paths = app.Paths{Catalog: "catalog", State: "state", Plugins: "plugins"}

type fixture struct {
	app      *app.App
	loader   *mocks.MockCatalogLoader
	store    *mocks.MockProfileStore
	hasher   *mocks.MockFingerprinter
	watcher  *mocks.MockWatcher
	recorder *tracetest.SpanRecorder
}

// newFixture wires an App with mocked adapters. Only "base" is installed locally.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	installs := mocks.NewMockInstallIndex(ctrl)
	installs.EXPECT().Installed("plugins", gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_, packageID, _, _ string) bool { return packageID == "base" }).
		AnyTimes()

	f := &fixture{
		loader:   mocks.NewMockCatalogLoader(ctrl),
		store:    mocks.NewMockProfileStore(ctrl),
		hasher:   mocks.NewMockFingerprinter(ctrl),
		watcher:  mocks.NewMockWatcher(ctrl),
		recorder: tracetest.NewSpanRecorder(),
	}
	f.hasher.EXPECT().CatalogHash(gomock.Any()).Return("h1").AnyTimes()

	var tracer ports.Tracer = telemetry.NewOTelTracer("test", f.recorder)
	f.app = app.New(f.loader, f.store, installs, f.hasher, f.watcher, resolver.New(log), tracer, log)
	return f
}

// expectCatalog makes every Load return a fresh copy of the test catalog.
func (f *fixture) expectCatalog(t *testing.T) {
	t.Helper()
	f.loader.EXPECT().Load(gomock.Any(), "catalog").
		DoAndReturn(func(context.Context, string) (*domain.Catalog, error) {
			return testCatalog(t), nil
		}).
		AnyTimes()
}

// testCatalog holds "roads", which depends on "base". The "maxis" variant of roads
// ships an extra file when its snow option is enabled; "dark" needs darknite.
func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()

	base := domain.NewPackage("base")
	require.NoError(t, base.AddVariant(&domain.VariantDefinition{ID: "default", Version: "1.0.0"}))

	roads := domain.NewPackage("roads")
	snow := domain.Requirements{{Key: domain.RequirementKey{Kind: domain.KeyOption, Name: "snow"}, Value: true}}
	require.NoError(t, roads.AddVariant(&domain.VariantDefinition{
		ID:           "maxis",
		Version:      "1.2.0",
		Features:     []string{"roads"},
		Dependencies: []domain.DependencyRef{{ID: "base", Transitive: true}},
		Options:      []domain.OptionDefinition{{ID: "snow", Kind: domain.OptionBoolean}},
		Files: []domain.FileEntry{
			{Path: "roads.dat"},
			{Path: "snow.dat", Condition: snow},
		},
	}))
	require.NoError(t, roads.AddVariant(&domain.VariantDefinition{
		ID:           "dark",
		Version:      "1.2.0",
		Features:     []string{"roads"},
		Requirements: domain.Requirements{{Key: domain.RequirementKey{Kind: domain.KeyFeature, Name: "darknite"}, Value: true}},
	}))

	c := domain.NewCatalog()
	require.NoError(t, c.AddPackage(base))
	require.NoError(t, c.AddPackage(roads))
	return c
}

func enabledRoads() *domain.Profile {
	return &domain.Profile{
		Name:        "main",
		Configs:     domain.Configs{"roads": {Enabled: true}},
		CatalogHash: "h1",
	}
}

func ptr[T any](v T) *T { return &v }

func spanNames(r *tracetest.SpanRecorder) []string {
	var names []string
	for _, s := range r.Ended() {
		names = append(names, s.Name())
	}
	return names
}

func TestApp_Status(t *testing.T) {
	t.Run("Missing profile", func(t *testing.T) {
		f := newFixture(t)
		f.expectCatalog(t)
		f.store.EXPECT().Get("state", "main").Return(nil, nil)

		rep, err := f.app.Status(context.Background(), paths, "main")
		require.NoError(t, err)
		assert.Equal(t, "main", rep.Profile)
		assert.Empty(t, rep.Packages)
		assert.False(t, rep.Stale)
	})

	t.Run("Enabled packages", func(t *testing.T) {
		f := newFixture(t)
		f.expectCatalog(t)
		f.store.EXPECT().Get("state", "main").Return(enabledRoads(), nil)

		rep, err := f.app.Status(context.Background(), paths, "main")
		require.NoError(t, err)
		require.Len(t, rep.Packages, 2)

		assert.Equal(t, app.PackageReport{
			ID:         "base",
			Variant:    "default",
			Version:    "1.0.0",
			Installed:  true,
			RequiredBy: []string{"roads"},
		}, rep.Packages[0])
		assert.Equal(t, "roads", rep.Packages[1].ID)
		assert.Equal(t, "maxis", rep.Packages[1].Variant)
		assert.True(t, rep.Packages[1].Explicit)
		assert.False(t, rep.Packages[1].Installed)
		assert.Empty(t, rep.Packages[1].Issues)

		assert.Equal(t, []string{"load catalog", "load profile", "resolve", "status"}, spanNames(f.recorder))
	})

	t.Run("Stale profile", func(t *testing.T) {
		f := newFixture(t)
		f.expectCatalog(t)
		p := enabledRoads()
		p.CatalogHash = "old"
		f.store.EXPECT().Get("state", "main").Return(p, nil)

		rep, err := f.app.Status(context.Background(), paths, "main")
		require.NoError(t, err)
		assert.True(t, rep.Stale)
	})

	t.Run("Catalog error", func(t *testing.T) {
		f := newFixture(t)
		f.loader.EXPECT().Load(gomock.Any(), "catalog").Return(nil, errors.New("boom"))

		_, err := f.app.Status(context.Background(), paths, "main")
		require.Error(t, err)
		require.ErrorContains(t, err, "failed to load catalog")
		require.ErrorContains(t, err, "boom")
	})

	t.Run("Store error", func(t *testing.T) {
		f := newFixture(t)
		f.expectCatalog(t)
		f.store.EXPECT().Get("state", "main").Return(nil, errors.New("disk"))

		_, err := f.app.Status(context.Background(), paths, "main")
		require.Error(t, err)
		require.ErrorContains(t, err, "failed to load profile")
	})
}

func TestApp_Update(t *testing.T) {
	enable := app.UpdateOptions{
		Configs: map[string]resolver.ConfigDelta{"roads": {Enabled: ptr(true)}},
	}

	t.Run("Enable and save", func(t *testing.T) {
		f := newFixture(t)
		f.expectCatalog(t)
		f.store.EXPECT().Get("state", "main").Return(nil, nil)

		var saved *domain.Profile
		f.store.EXPECT().Put("state", gomock.Any()).DoAndReturn(func(_ string, p *domain.Profile) error {
			saved = p
			return nil
		})

		rep, err := f.app.Update(context.Background(), paths, "main", enable)
		require.NoError(t, err)
		assert.True(t, rep.Saved)
		assert.True(t, rep.Recalculated)
		assert.Contains(t, rep.Enabling, "roads")
		assert.Equal(t, "maxis", rep.Installing["roads"])
		assert.NotContains(t, rep.Installing, "base")

		require.NotNil(t, saved)
		assert.Equal(t, "main", saved.Name)
		assert.Equal(t, "h1", saved.CatalogHash)
		assert.True(t, saved.Configs["roads"].Enabled)
		assert.True(t, saved.Status["base"].Enabled)
	})

	t.Run("Dry run does not save", func(t *testing.T) {
		f := newFixture(t)
		f.expectCatalog(t)
		f.store.EXPECT().Get("state", "main").Return(nil, nil)
		f.store.EXPECT().Put(gomock.Any(), gomock.Any()).Times(0)

		opts := enable
		opts.DryRun = true
		rep, err := f.app.Update(context.Background(), paths, "main", opts)
		require.NoError(t, err)
		assert.True(t, rep.DryRun)
		assert.False(t, rep.Saved)
		assert.Contains(t, rep.Enabling, "roads")
	})

	t.Run("Unchanged profile is not saved again", func(t *testing.T) {
		f := newFixture(t)
		f.expectCatalog(t)

		var saved *domain.Profile
		first := f.store.EXPECT().Get("state", "main").Return(nil, nil)
		f.store.EXPECT().Put("state", gomock.Any()).DoAndReturn(func(_ string, p *domain.Profile) error {
			saved = p
			return nil
		}).After(first)

		_, err := f.app.Update(context.Background(), paths, "main", enable)
		require.NoError(t, err)

		f.store.EXPECT().Get("state", "main").DoAndReturn(func(string, string) (*domain.Profile, error) {
			return saved, nil
		})
		rep, err := f.app.Update(context.Background(), paths, "main", enable)
		require.NoError(t, err)
		assert.False(t, rep.Recalculated)
		assert.False(t, rep.Saved)
		assert.False(t, rep.HasChanges())
	})

	t.Run("Catalog change forces resolution", func(t *testing.T) {
		f := newFixture(t)
		f.expectCatalog(t)

		prev := enabledRoads()
		prev.CatalogHash = "old"
		prev.Status = domain.Statuses{}
		f.store.EXPECT().Get("state", "main").Return(prev, nil)
		f.store.EXPECT().Put("state", gomock.Any()).Return(nil)

		rep, err := f.app.Update(context.Background(), paths, "main", app.UpdateOptions{})
		require.NoError(t, err)
		assert.True(t, rep.Recalculated)
		assert.True(t, rep.Saved)
	})

	t.Run("Settings change forces resolution", func(t *testing.T) {
		f := newFixture(t)
		f.expectCatalog(t)

		prev := enabledRoads()
		prev.Status = domain.Statuses{}
		f.store.EXPECT().Get("state", "main").Return(prev, nil)

		var saved *domain.Profile
		f.store.EXPECT().Put("state", gomock.Any()).DoAndReturn(func(_ string, p *domain.Profile) error {
			saved = p
			return nil
		})

		rep, err := f.app.Update(context.Background(), paths, "main", app.UpdateOptions{
			Settings: &domain.Settings{PatchVersion: ptr(641)},
		})
		require.NoError(t, err)
		assert.True(t, rep.Recalculated)
		require.NotNil(t, saved)
		assert.Equal(t, ptr(641), saved.Settings.PatchVersion)
	})

	t.Run("Save error", func(t *testing.T) {
		f := newFixture(t)
		f.expectCatalog(t)
		f.store.EXPECT().Get("state", "main").Return(nil, nil)
		f.store.EXPECT().Put("state", gomock.Any()).Return(errors.New("disk full"))

		_, err := f.app.Update(context.Background(), paths, "main", enable)
		require.Error(t, err)
		require.ErrorContains(t, err, "failed to save profile")
	})
}

func TestApp_Check(t *testing.T) {
	t.Run("Variants and files", func(t *testing.T) {
		f := newFixture(t)
		f.expectCatalog(t)

		p := enabledRoads()
		p.Configs["roads"] = domain.PackageConfig{Enabled: true, Options: domain.Options{"snow": true}}
		f.store.EXPECT().Get("state", "main").Return(p, nil)

		rep, err := f.app.Check(context.Background(), paths, "main", "roads")
		require.NoError(t, err)
		assert.True(t, rep.Enabled)
		assert.True(t, rep.Explicit)
		assert.Equal(t, []string{"roads.dat", "snow.dat"}, rep.Files)

		require.Len(t, rep.Variants, 2)
		assert.True(t, rep.Variants[0].Selected)
		assert.Empty(t, rep.Variants[0].Issues)
		assert.False(t, rep.Variants[1].Selected)
		assert.Equal(t, []domain.Issue{domain.MissingFeature("darknite")}, rep.Variants[1].Issues)
	})

	t.Run("Conditional files are filtered", func(t *testing.T) {
		f := newFixture(t)
		f.expectCatalog(t)
		f.store.EXPECT().Get("state", "main").Return(enabledRoads(), nil)

		rep, err := f.app.Check(context.Background(), paths, "main", "roads")
		require.NoError(t, err)
		assert.Equal(t, []string{"roads.dat"}, rep.Files)
	})

	t.Run("Dependency", func(t *testing.T) {
		f := newFixture(t)
		f.expectCatalog(t)
		f.store.EXPECT().Get("state", "main").Return(enabledRoads(), nil)

		rep, err := f.app.Check(context.Background(), paths, "main", "base")
		require.NoError(t, err)
		assert.True(t, rep.Enabled)
		assert.False(t, rep.Explicit)
		assert.Equal(t, []string{"roads"}, rep.RequiredBy)
		assert.True(t, rep.Variants[0].Installed)
	})

	t.Run("Unknown package", func(t *testing.T) {
		f := newFixture(t)
		f.expectCatalog(t)

		_, err := f.app.Check(context.Background(), paths, "main", "ghost")
		require.Error(t, err)
		require.ErrorContains(t, err, domain.ErrPackageNotFound.Error())
	})
}

func TestApp_Watch(t *testing.T) {
	t.Run("Reports after every change", func(t *testing.T) {
		f := newFixture(t)
		f.expectCatalog(t)
		f.store.EXPECT().Get("state", "main").
			DoAndReturn(func(string, string) (*domain.Profile, error) { return enabledRoads(), nil }).
			Times(3)

		changes := make(chan []string, 2)
		changes <- []string{"catalog/packages/roads.yaml"}
		changes <- []string{"plugins/roads"}
		close(changes)
		f.watcher.EXPECT().Watch(gomock.Any(), "catalog", "plugins").Return((<-chan []string)(changes), nil)

		var reports []*app.StatusReport
		err := f.app.Watch(context.Background(), paths, "main", func(rep *app.StatusReport, err error) {
			require.NoError(t, err)
			reports = append(reports, rep)
		})
		require.NoError(t, err)
		require.Len(t, reports, 3)
		for _, rep := range reports {
			assert.Len(t, rep.Packages, 2)
		}
	})

	t.Run("Later failures are reported", func(t *testing.T) {
		f := newFixture(t)
		gomock.InOrder(
			f.loader.EXPECT().Load(gomock.Any(), "catalog").Return(testCatalog(t), nil),
			f.loader.EXPECT().Load(gomock.Any(), "catalog").Return(nil, errors.New("half written")),
		)
		f.store.EXPECT().Get("state", "main").Return(nil, nil)

		changes := make(chan []string, 1)
		changes <- []string{"catalog/packages/roads.yaml"}
		close(changes)
		f.watcher.EXPECT().Watch(gomock.Any(), "catalog", "plugins").Return((<-chan []string)(changes), nil)

		var errs []error
		err := f.app.Watch(context.Background(), paths, "main", func(_ *app.StatusReport, err error) {
			errs = append(errs, err)
		})
		require.NoError(t, err)
		require.Len(t, errs, 2)
		require.NoError(t, errs[0])
		require.ErrorContains(t, errs[1], "half written")
	})

	t.Run("First failure is returned", func(t *testing.T) {
		f := newFixture(t)
		f.loader.EXPECT().Load(gomock.Any(), "catalog").Return(nil, errors.New("boom"))

		err := f.app.Watch(context.Background(), paths, "main", func(*app.StatusReport, error) {
			t.Fatal("should not be called")
		})
		require.ErrorContains(t, err, "boom")
	})

	t.Run("Watcher error", func(t *testing.T) {
		f := newFixture(t)
		f.expectCatalog(t)
		f.store.EXPECT().Get("state", "main").Return(nil, nil)
		f.watcher.EXPECT().Watch(gomock.Any(), "catalog", "plugins").Return(nil, domain.ErrWatchFailed)

		err := f.app.Watch(context.Background(), paths, "main", func(*app.StatusReport, error) {})
		require.ErrorContains(t, err, domain.ErrWatchFailed.Error())
	})
}
