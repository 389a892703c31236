package fs

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/modman/internal/core/domain"
	"go.trai.ch/modman/internal/core/ports"
)

var _ ports.Fingerprinter = (*Hasher)(nil)

// Hasher fingerprints catalogs with XXHash.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// CatalogHash hashes everything about the catalog that resolution reads. Installed
// flags, names and file lists are left out.
func (h *Hasher) CatalogHash(catalog *domain.Catalog) string {
	hasher := xxhash.New()

	for _, def := range catalog.GlobalOptions() {
		hashOption(hasher, &def)
	}
	_, _ = hasher.Write([]byte{0}) // Section separator

	for id, pkg := range catalog.Packages() {
		writeField(hasher, id)
		for _, variant := range pkg.Variants() {
			hashVariant(hasher, variant)
			if variant.Update != nil {
				writeField(hasher, "update")
				hashVariant(hasher, variant.Update)
			}
		}
		_, _ = hasher.Write([]byte{0})
	}

	return fmt.Sprintf("%016x", hasher.Sum64())
}

func hashVariant(hasher *xxhash.Digest, v *domain.VariantDefinition) {
	writeField(hasher, v.ID)
	writeField(hasher, v.Version)

	for _, f := range v.Features {
		writeField(hasher, f)
	}
	_, _ = hasher.Write([]byte{0})

	hashRequirements(hasher, v.Requirements)

	for _, dep := range v.Dependencies {
		writeField(hasher, fmt.Sprintf("%s:%t", dep.ID, dep.Transitive))
	}
	_, _ = hasher.Write([]byte{0})

	for i := range v.Options {
		hashOption(hasher, &v.Options[i])
	}
	_, _ = hasher.Write([]byte{0})
}

func hashRequirements(hasher *xxhash.Digest, reqs domain.Requirements) {
	for _, req := range reqs {
		writeField(hasher, fmt.Sprintf("%s:%s:%t=%s", req.Key.Kind, req.Key.Name, req.Key.Global, formatValue(req.Value)))
	}
	_, _ = hasher.Write([]byte{0})
}

func hashOption(hasher *xxhash.Digest, def *domain.OptionDefinition) {
	writeField(hasher, fmt.Sprintf("%s:%s:%t:%t=%s", def.ID, def.Kind, def.Multi, def.Global, formatValue(def.Default)))
	if def.Min != nil {
		writeField(hasher, fmt.Sprintf("min=%g", *def.Min))
	}
	if def.Max != nil {
		writeField(hasher, fmt.Sprintf("max=%g", *def.Max))
	}
	for _, choice := range def.Choices {
		writeField(hasher, formatValue(choice.Value))
		hashRequirements(hasher, choice.Condition)
	}
	_, _ = hasher.Write([]byte{0})
}

// formatValue renders option values deterministically. Lists are sorted since they compare as sets.
func formatValue(v domain.OptionValue) string {
	list, ok := v.([]domain.OptionValue)
	if !ok {
		return fmt.Sprintf("%T(%v)", v, v)
	}
	items := make([]string, 0, len(list))
	for _, item := range list {
		items = append(items, formatValue(item))
	}
	slices.Sort(items)
	return fmt.Sprintf("%v", items)
}

func writeField(hasher *xxhash.Digest, s string) {
	_, _ = hasher.WriteString(s)
	_, _ = hasher.Write([]byte{0}) // Separator
}
