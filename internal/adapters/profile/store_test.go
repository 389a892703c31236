package profile_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.trai.ch/modman/internal/adapters/profile"
	"go.trai.ch/modman/internal/core/domain"
)

func TestStore_PutAndGet(t *testing.T) {
	root := t.TempDir()
	store := profile.NewStore()

	p := &domain.Profile{
		Name: "main",
		Configs: domain.Configs{
			"roads": {Enabled: true, Variant: "dark", Options: domain.Options{"lanes": 2.0}},
		},
		Options:     domain.Options{"driveSide": "left"},
		Externals:   map[string]bool{"darknite": true},
		CatalogHash: "abc",
	}

	if err := store.Put(root, p); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(root, "main")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil")
	}
	if !reflect.DeepEqual(got, p) {
		t.Errorf("expected %+v, got %+v", p, got)
	}

	// Mutating a returned profile must not leak into later reads.
	got.Configs["roads"] = domain.PackageConfig{}
	again, err := store.Get(root, "main")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if again.Configs["roads"].Variant != "dark" {
		t.Errorf("expected cached profile to be unchanged, got %+v", again.Configs["roads"])
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := profile.NewStore()

	got, err := store.Get(t.TempDir(), "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil profile, got %+v", got)
	}
}

func TestStore_Persistence(t *testing.T) {
	root := t.TempDir()

	if err := profile.NewStore().Put(root, &domain.Profile{
		Name:    "main",
		Options: domain.Options{"extras": []domain.OptionValue{"tunnels", 2.0}},
		Status: domain.Statuses{
			"roads": {
				Enabled:   true,
				VariantID: "dark",
				Issues: map[string][]domain.Issue{
					"maxis": {domain.IncompatibleOption("extras", []domain.OptionValue{"ramps"})},
				},
			},
		},
	}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := profile.NewStore().Get(root, "main")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil")
	}

	want := []domain.OptionValue{"tunnels", 2.0}
	if !reflect.DeepEqual(got.Options["extras"], want) {
		t.Errorf("expected option %v, got %#v", want, got.Options["extras"])
	}

	issue := got.Status["roads"].Issues["maxis"][0]
	if !reflect.DeepEqual(issue.Value, []domain.OptionValue{"ramps"}) {
		t.Errorf("expected issue value to be normalized, got %#v", issue.Value)
	}
}

func TestStore_FileLayout(t *testing.T) {
	root := t.TempDir()

	if err := profile.NewStore().Put(root, &domain.Profile{Name: "main"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	//nolint:gosec // Test file with controlled path
	content, err := os.ReadFile(filepath.Join(root, domain.ProfilesDirName, "main.json"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	jsonStr := string(content)
	if !strings.Contains(jsonStr, `"name": "main"`) {
		t.Errorf("expected name in %s", jsonStr)
	}
	if strings.Contains(jsonStr, "packages") {
		t.Errorf("JSON should not contain empty packages, got %s", jsonStr)
	}

	if _, err := os.Stat(filepath.Join(root, domain.ProfilesDirName, "main.json.tmp")); !os.IsNotExist(err) {
		t.Errorf("expected temp file to be renamed, got %v", err)
	}
}

func TestStore_InvalidName(t *testing.T) {
	store := profile.NewStore()
	root := t.TempDir()

	for _, name := range []string{"", ".hidden", "../escape", "a/b"} {
		if _, err := store.Get(root, name); err == nil || !strings.Contains(err.Error(), domain.ErrInvalidProfileName.Error()) {
			t.Errorf("Get(%q): expected invalid name error, got %v", name, err)
		}
		if err := store.Put(root, &domain.Profile{Name: name}); err == nil {
			t.Errorf("Put(%q): expected error", name)
		}
	}
}

func TestStore_CorruptProfile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, domain.ProfilesDirName)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := profile.NewStore().Get(root, "main")
	if err == nil || !strings.Contains(err.Error(), domain.ErrProfileUnmarshalFailed.Error()) {
		t.Errorf("expected unmarshal error, got %v", err)
	}
}
