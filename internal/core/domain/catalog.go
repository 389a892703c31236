// Package domain contains the core models of the package catalog and its resolution state.
package domain

import (
	"iter"

	"go.trai.ch/zerr"
)

// DependencyRef points at another package a variant needs.
// Transitive controls whether the dependency's own dependencies are pulled in too.
type DependencyRef struct {
	ID         string
	Transitive bool
}

// FileEntry is a file shipped by a variant, included only when Condition holds.
type FileEntry struct {
	Path      string
	Condition Requirements
}

// VariantDefinition is one alternative build of a package.
type VariantDefinition struct {
	ID           string
	Name         string
	Version      string
	Installed    bool
	Features     []string
	Requirements Requirements
	Dependencies []DependencyRef
	Options      []OptionDefinition
	Files        []FileEntry

	// Update is an available newer build of this variant, if any.
	Update *VariantDefinition
}

// Option returns the option the variant declares with the given id.
func (v *VariantDefinition) Option(id string) (*OptionDefinition, bool) {
	for i := range v.Options {
		if v.Options[i].ID == id {
			return &v.Options[i], true
		}
	}
	return nil, false
}

// PackageDefinition is an ordered set of variants.
// Declaration order is the tie-break whenever a first variant has to be chosen.
type PackageDefinition struct {
	ID   string
	Name string

	variants map[string]*VariantDefinition
	order    []string
}

// NewPackage creates an empty package definition.
func NewPackage(id string) *PackageDefinition {
	return &PackageDefinition{
		ID:       id,
		variants: make(map[string]*VariantDefinition),
	}
}

// AddVariant appends a variant in declaration order.
func (p *PackageDefinition) AddVariant(v *VariantDefinition) error {
	if _, exists := p.variants[v.ID]; exists {
		err := zerr.With(ErrVariantAlreadyExists, "package", p.ID)
		return zerr.With(err, "variant", v.ID)
	}
	p.variants[v.ID] = v
	p.order = append(p.order, v.ID)
	return nil
}

// Variant returns the variant with the given id.
func (p *PackageDefinition) Variant(id string) (*VariantDefinition, bool) {
	v, ok := p.variants[id]
	return v, ok
}

// HasVariant reports whether the package declares the variant.
func (p *PackageDefinition) HasVariant(id string) bool {
	_, ok := p.variants[id]
	return ok
}

// VariantIDs returns the variant ids in declaration order.
func (p *PackageDefinition) VariantIDs() []string {
	return append([]string(nil), p.order...)
}

// Variants yields variants in declaration order.
func (p *PackageDefinition) Variants() iter.Seq2[string, *VariantDefinition] {
	return func(yield func(string, *VariantDefinition) bool) {
		for _, id := range p.order {
			if !yield(id, p.variants[id]) {
				return
			}
		}
	}
}

// DefaultVariantID returns the first declared variant.
func (p *PackageDefinition) DefaultVariantID() string {
	if len(p.order) == 0 {
		return ""
	}
	return p.order[0]
}

// Catalog is the set of known packages. It must not be modified once resolution starts.
type Catalog struct {
	packages map[string]*PackageDefinition
	order    []string
	options  []OptionDefinition
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		packages: make(map[string]*PackageDefinition),
	}
}

// AddPackage appends a package in catalog order.
// It returns an error if the id is taken or the package has no variants.
func (c *Catalog) AddPackage(p *PackageDefinition) error {
	if _, exists := c.packages[p.ID]; exists {
		return zerr.With(ErrPackageAlreadyExists, "package", p.ID)
	}
	if len(p.order) == 0 {
		return zerr.With(ErrNoVariants, "package", p.ID)
	}
	c.packages[p.ID] = p
	c.order = append(c.order, p.ID)
	return nil
}

// SetGlobalOptions sets the profile-level option definitions.
func (c *Catalog) SetGlobalOptions(defs []OptionDefinition) {
	c.options = defs
}

// GlobalOptions returns the profile-level option definitions.
func (c *Catalog) GlobalOptions() []OptionDefinition {
	return c.options
}

// Package returns the package with the given id.
func (c *Catalog) Package(id string) (*PackageDefinition, bool) {
	p, ok := c.packages[id]
	return p, ok
}

// Len returns the number of packages.
func (c *Catalog) Len() int {
	return len(c.order)
}

// IDs returns package ids in catalog order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// Packages yields packages in catalog order.
func (c *Catalog) Packages() iter.Seq2[string, *PackageDefinition] {
	return func(yield func(string, *PackageDefinition) bool) {
		for _, id := range c.order {
			if !yield(id, c.packages[id]) {
				return
			}
		}
	}
}

// MarkInstalled sets the Installed flag of every variant and pending update.
// It must be called before the catalog is handed to resolution.
func (c *Catalog) MarkInstalled(installed func(packageID, variantID, version string) bool) {
	for _, id := range c.order {
		for _, v := range c.packages[id].variants {
			v.Installed = installed(id, v.ID, v.Version)
			if v.Update != nil {
				v.Update.Installed = installed(id, v.ID, v.Update.Version)
			}
		}
	}
}
