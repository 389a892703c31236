// Package catalog provides the YAML catalog loader for modman.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.trai.ch/modman/internal/adapters/fs"
	"go.trai.ch/modman/internal/core/domain"
	"go.trai.ch/modman/internal/core/ports"
	"go.trai.ch/modman/internal/semver"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const (
	// PackagesDir holds one descriptor per package, in any directory depth.
	PackagesDir = "packages"
	// OptionsFileName holds the global option definitions.
	OptionsFileName = "options.yaml"
)

// Loader implements ports.CatalogLoader for a directory of YAML descriptors.
type Loader struct {
	logger ports.Logger
	walker *fs.Walker
}

// NewLoader creates a new catalog loader.
func NewLoader(logger ports.Logger, walker *fs.Walker) *Loader {
	return &Loader{logger: logger, walker: walker}
}

// Load reads <dir>/options.yaml and every descriptor under <dir>/packages.
// Packages are added in lexical path order.
func (l *Loader) Load(ctx context.Context, dir string) (*domain.Catalog, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCatalogReadFailed.Error()), "path", dir)
	}

	globals, err := l.loadOptions(filepath.Join(dir, OptionsFileName))
	if err != nil {
		return nil, err
	}

	var paths []string
	for path := range l.walker.WalkFiles(filepath.Join(dir, PackagesDir), nil) {
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			paths = append(paths, path)
		}
	}

	pkgs := make([]*domain.PackageDefinition, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pkg, err := l.loadPackage(path, globals)
			if err != nil {
				return err
			}
			pkgs[i] = pkg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	catalog := domain.NewCatalog()
	catalog.SetGlobalOptions(globals)
	for i, pkg := range pkgs {
		if err := catalog.AddPackage(pkg); err != nil {
			return nil, zerr.With(err, "path", paths[i])
		}
	}
	return catalog, nil
}

func (l *Loader) loadOptions(path string) ([]domain.OptionDefinition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from the catalog directory
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCatalogReadFailed.Error()), "path", path)
	}

	if err := validate(optionsRef, data); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCatalogInvalid.Error()), "path", path)
	}

	var file OptionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCatalogParseFailed.Error()), "path", path)
	}

	defs := make([]domain.OptionDefinition, 0, len(file.Options))
	for i := range file.Options {
		def, err := convertOption(&file.Options[i])
		if err != nil {
			return nil, zerr.With(err, "path", path)
		}
		def.Global = true
		defs = append(defs, def)
	}
	for i := range file.Options {
		if err := convertChoiceConditions(&defs[i], &file.Options[i], nil, defs); err != nil {
			return nil, zerr.With(err, "path", path)
		}
	}
	return defs, nil
}

func (l *Loader) loadPackage(path string, globals []domain.OptionDefinition) (*domain.PackageDefinition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from walking the catalog directory
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCatalogReadFailed.Error()), "path", path)
	}

	if err := validate(packageRef, data); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCatalogInvalid.Error()), "path", path)
	}

	var file PackageFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCatalogParseFailed.Error()), "path", path)
	}

	pkg := domain.NewPackage(file.ID)
	pkg.Name = file.Name
	for i := range file.Variants {
		dto := &file.Variants[i]
		v, err := l.convertVariant(file.ID, dto.ID, dto, globals)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "path", path), "package", file.ID)
		}
		if dto.Update != nil {
			update, err := l.convertVariant(file.ID, dto.ID, inheritUpdate(dto, dto.Update), globals)
			if err != nil {
				return nil, zerr.With(zerr.With(err, "path", path), "package", file.ID)
			}
			v.Update = update
		}
		if err := pkg.AddVariant(v); err != nil {
			return nil, zerr.With(err, "path", path)
		}
	}
	return pkg, nil
}

// inheritUpdate fills the fields an update block leaves out from its variant.
func inheritUpdate(parent, update *VariantDTO) *VariantDTO {
	u := *update
	if u.Name == "" {
		u.Name = parent.Name
	}
	if u.Features == nil {
		u.Features = parent.Features
	}
	if u.Requirements.Kind == 0 {
		u.Requirements = parent.Requirements
	}
	if u.Dependencies == nil {
		u.Dependencies = parent.Dependencies
	}
	if u.Options == nil {
		u.Options = parent.Options
	}
	if u.Files == nil {
		u.Files = parent.Files
	}
	u.Update = nil
	return &u
}

// convertVariant builds a variant from its descriptor. The id is passed in so that an
// update block inherits the id of the variant it belongs to.
func (l *Loader) convertVariant(
	pkgID, id string,
	dto *VariantDTO,
	globals []domain.OptionDefinition,
) (*domain.VariantDefinition, error) {
	if dto.Version != "" && !semver.Valid(dto.Version) {
		l.logger.Warn(fmt.Sprintf("package %q variant %q has a non-semantic version %q", pkgID, id, dto.Version))
	}

	v := &domain.VariantDefinition{
		ID:       id,
		Name:     dto.Name,
		Version:  dto.Version,
		Features: dto.Features,
	}

	// Options first: requirement keys are classified against them.
	local := make([]domain.OptionDefinition, 0, len(dto.Options))
	for i := range dto.Options {
		def, err := convertOption(&dto.Options[i])
		if err != nil {
			return nil, zerr.With(err, "variant", id)
		}
		local = append(local, def)
	}
	for i := range dto.Options {
		if err := convertChoiceConditions(&local[i], &dto.Options[i], local, globals); err != nil {
			return nil, zerr.With(err, "variant", id)
		}
	}
	v.Options = local

	reqs, err := convertRequirements(&dto.Requirements, local, globals)
	if err != nil {
		return nil, zerr.With(zerr.With(err, "variant", id), "field", "requirements")
	}
	v.Requirements = reqs

	for _, dep := range dto.Dependencies {
		transitive := true
		if dep.Transitive != nil {
			transitive = *dep.Transitive
		}
		v.Dependencies = append(v.Dependencies, domain.DependencyRef{ID: dep.ID, Transitive: transitive})
	}

	for i := range dto.Files {
		cond, err := convertRequirements(&dto.Files[i].Condition, local, globals)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "variant", id), "file", dto.Files[i].Path)
		}
		v.Files = append(v.Files, domain.FileEntry{Path: dto.Files[i].Path, Condition: cond})
	}

	return v, nil
}

// convertRequirements decodes a requirement mapping, keeping declaration order.
func convertRequirements(node *yaml.Node, local, globals []domain.OptionDefinition) (domain.Requirements, error) {
	if node.Kind == 0 || node.ShortTag() == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, zerr.With(domain.ErrCatalogParseFailed, "line", node.Line)
	}

	reqs := make(domain.Requirements, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		var raw any
		if err := val.Decode(&raw); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrCatalogParseFailed.Error()), "key", key.Value)
		}
		reqs = append(reqs, domain.Requirement{
			Key:   domain.ClassifyRequirementKey(key.Value, local, globals),
			Value: domain.NormalizeValue(raw),
		})
	}
	return reqs, nil
}

// convertOption builds an option definition without choice conditions.
// Conditions need the full local option list, see convertChoiceConditions.
func convertOption(dto *OptionDTO) (domain.OptionDefinition, error) {
	def := domain.OptionDefinition{
		ID:      dto.ID,
		Kind:    domain.OptionKind(dto.Type),
		Multi:   dto.Multi,
		Global:  dto.Global,
		Min:     dto.Min,
		Max:     dto.Max,
		Default: domain.NormalizeValue(dto.Default),
	}
	for _, c := range dto.Choices {
		def.Choices = append(def.Choices, domain.OptionChoice{
			Value: domain.NormalizeValue(c.Value),
			Label: c.Label,
		})
	}
	if def.Kind == "" {
		def.Kind = inferKind(&def)
	}

	if err := validateOption(&def); err != nil {
		return def, err
	}
	return def, nil
}

func convertChoiceConditions(def *domain.OptionDefinition, dto *OptionDTO, local, globals []domain.OptionDefinition) error {
	for i := range dto.Choices {
		cond, err := convertRequirements(&dto.Choices[i].Condition, local, globals)
		if err != nil {
			return zerr.With(err, "option", def.ID)
		}
		def.Choices[i].Condition = cond
	}
	return nil
}

// inferKind derives the option kind from its default or first choice.
func inferKind(def *domain.OptionDefinition) domain.OptionKind {
	sample := def.Default
	if list, ok := sample.([]domain.OptionValue); ok && len(list) > 0 {
		sample = list[0]
	}
	if sample == nil && len(def.Choices) > 0 {
		sample = def.Choices[0].Value
	}
	if sample == nil && (def.Min != nil || def.Max != nil) {
		return domain.OptionNumber
	}
	return kindOf(sample)
}

func kindOf(v domain.OptionValue) domain.OptionKind {
	switch v.(type) {
	case bool:
		return domain.OptionBoolean
	case float64:
		return domain.OptionNumber
	default:
		return domain.OptionString
	}
}

func validateOption(def *domain.OptionDefinition) error {
	invalid := func(reason string) error {
		return zerr.With(zerr.With(domain.ErrInvalidOption, "option", def.ID), "reason", reason)
	}

	if (def.Min != nil || def.Max != nil) && def.Kind != domain.OptionNumber {
		return invalid("min and max need a number option")
	}
	if def.Min != nil && def.Max != nil && *def.Min > *def.Max {
		return invalid("min is greater than max")
	}
	for _, c := range def.Choices {
		if kindOf(c.Value) != def.Kind {
			return invalid(fmt.Sprintf("choice %v is not a %s", c.Value, def.Kind))
		}
	}

	if def.Default == nil {
		return nil
	}
	values := []domain.OptionValue{def.Default}
	if list, ok := def.Default.([]domain.OptionValue); ok {
		if !def.Multi {
			return invalid("list default on a single-value option")
		}
		values = list
	}
	for _, v := range values {
		if kindOf(v) != def.Kind {
			return invalid(fmt.Sprintf("default %v is not a %s", v, def.Kind))
		}
	}
	return nil
}
