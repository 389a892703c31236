package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
	k8syaml "sigs.k8s.io/yaml"
)

const schemaName = "catalog.schema.json"

//go:embed catalog.schema.json
var schemaJSON []byte

// Schema references for the two descriptor kinds.
const (
	packageRef = schemaName + "#/definitions/package"
	optionsRef = schemaName + "#/definitions/optionsFile"
)

var compileSchemas = sync.OnceValues(func() (map[string]*jsonschema.Schema, error) {
	comp := jsonschema.NewCompiler()
	if err := comp.AddResource(schemaName, bytes.NewReader(schemaJSON)); err != nil {
		return nil, zerr.Wrap(err, "failed to load catalog schema")
	}

	schemas := make(map[string]*jsonschema.Schema, 2)
	for _, ref := range []string{packageRef, optionsRef} {
		sch, err := comp.Compile(ref)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to compile catalog schema"), "ref", ref)
		}
		schemas[ref] = sch
	}
	return schemas, nil
})

// validate checks raw YAML against the schema at ref.
func validate(ref string, data []byte) error {
	schemas, err := compileSchemas()
	if err != nil {
		return err
	}

	raw, err := k8syaml.YAMLToJSON(data)
	if err != nil {
		return zerr.Wrap(err, "failed to convert descriptor to JSON")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return zerr.Wrap(err, "failed to decode descriptor JSON")
	}

	return schemas[ref].Validate(doc)
}

// PackageFile is the on-disk layout of one package descriptor.
type PackageFile struct {
	ID       string       `yaml:"id"`
	Name     string       `yaml:"name"`
	Variants []VariantDTO `yaml:"variants"`
}

// OptionsFile is the on-disk layout of the global option definitions.
type OptionsFile struct {
	Options []OptionDTO `yaml:"options"`
}

// VariantDTO represents one variant, or the pending update of one.
type VariantDTO struct {
	ID           string          `yaml:"id"`
	Name         string          `yaml:"name"`
	Version      string          `yaml:"version"`
	Features     []string        `yaml:"features"`
	Requirements yaml.Node       `yaml:"requirements"`
	Dependencies []DependencyDTO `yaml:"dependencies"`
	Options      []OptionDTO     `yaml:"options"`
	Files        []FileDTO       `yaml:"files"`
	Update       *VariantDTO     `yaml:"update"`
}

// DependencyDTO is either a bare package id or a mapping with a transitive flag.
type DependencyDTO struct {
	ID         string `yaml:"id"`
	Transitive *bool  `yaml:"transitive"`
}

// UnmarshalYAML accepts the short scalar form.
func (d *DependencyDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		d.ID = node.Value
		return nil
	}
	type plain DependencyDTO
	return node.Decode((*plain)(d))
}

// FileDTO is either a bare path or a mapping with a condition.
type FileDTO struct {
	Path      string    `yaml:"path"`
	Condition yaml.Node `yaml:"condition"`
}

// UnmarshalYAML accepts the short scalar form.
func (f *FileDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.Path = node.Value
		return nil
	}
	type plain FileDTO
	return node.Decode((*plain)(f))
}

// OptionDTO represents an option definition.
type OptionDTO struct {
	ID      string      `yaml:"id"`
	Type    string      `yaml:"type"`
	Multi   bool        `yaml:"multi"`
	Global  bool        `yaml:"global"`
	Default any         `yaml:"default"`
	Min     *float64    `yaml:"min"`
	Max     *float64    `yaml:"max"`
	Choices []ChoiceDTO `yaml:"choices"`
}

// ChoiceDTO is either a bare value or a mapping with a label and a condition.
type ChoiceDTO struct {
	Value     any       `yaml:"value"`
	Label     string    `yaml:"label"`
	Condition yaml.Node `yaml:"condition"`
}

// UnmarshalYAML accepts the short scalar form.
func (c *ChoiceDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&c.Value)
	}
	type plain ChoiceDTO
	return node.Decode((*plain)(c))
}
