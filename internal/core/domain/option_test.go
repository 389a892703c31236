package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/modman/internal/core/domain"
)

func TestOptionDefaultValue(t *testing.T) {
	minimum := 3.0

	tests := []struct {
		name string
		def  domain.OptionDefinition
		want domain.OptionValue
	}{
		{
			name: "Declared default wins",
			def: domain.OptionDefinition{
				Kind:    domain.OptionString,
				Default: "b",
				Choices: []domain.OptionChoice{{Value: "a"}, {Value: "b"}},
			},
			want: "b",
		},
		{
			name: "Multi option defaults to empty list",
			def:  domain.OptionDefinition{Kind: domain.OptionString, Multi: true, Choices: []domain.OptionChoice{{Value: "a"}}},
			want: []domain.OptionValue{},
		},
		{
			name: "First choice",
			def:  domain.OptionDefinition{Kind: domain.OptionString, Choices: []domain.OptionChoice{{Value: "a"}, {Value: "b"}}},
			want: "a",
		},
		{
			name: "Numeric minimum",
			def:  domain.OptionDefinition{Kind: domain.OptionNumber, Min: &minimum},
			want: 3.0,
		},
		{
			name: "Boolean zero value",
			def:  domain.OptionDefinition{Kind: domain.OptionBoolean},
			want: false,
		},
		{
			name: "Number zero value",
			def:  domain.OptionDefinition{Kind: domain.OptionNumber},
			want: 0.0,
		},
		{
			name: "String zero value",
			def:  domain.OptionDefinition{Kind: domain.OptionString},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.OptionDefaultValue(&tt.def))
		})
	}
}

func TestGetOptionValue(t *testing.T) {
	def := &domain.OptionDefinition{ID: "mode", Kind: domain.OptionString, Default: "auto"}

	assert.Equal(t, "manual", domain.GetOptionValue(def, domain.Options{"mode": "manual"}))
	assert.Equal(t, "auto", domain.GetOptionValue(def, domain.Options{"other": "manual"}))
	assert.Equal(t, "auto", domain.GetOptionValue(def, domain.Options{"mode": nil}))
	assert.Equal(t, "auto", domain.GetOptionValue(def, nil))
}

func TestIsOptionDefaultValue(t *testing.T) {
	multi := &domain.OptionDefinition{
		Kind:    domain.OptionString,
		Multi:   true,
		Default: []domain.OptionValue{"a", "b"},
	}

	assert.True(t, domain.IsOptionDefaultValue(multi, []domain.OptionValue{"b", "a"}))
	assert.True(t, domain.IsOptionDefaultValue(multi, []domain.OptionValue{"a", "b", "a"}))
	assert.False(t, domain.IsOptionDefaultValue(multi, []domain.OptionValue{"a"}))
	assert.False(t, domain.IsOptionDefaultValue(multi, "a"))
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.OptionValue
		want bool
	}{
		{name: "Equal strings", a: "x", b: "x", want: true},
		{name: "Different kinds", a: "1", b: 1.0, want: false},
		{name: "Int and float", a: 1, b: 1.0, want: true},
		{name: "Booleans", a: true, b: false, want: false},
		{name: "Nil", a: nil, b: nil, want: true},
		{name: "Nil and value", a: nil, b: false, want: false},
		{name: "Lists as sets", a: []domain.OptionValue{"a", "b"}, b: []domain.OptionValue{"b", "a"}, want: true},
		{name: "List and scalar", a: []domain.OptionValue{"a"}, b: "a", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ValuesEqual(tt.a, tt.b))
		})
	}
}

func TestValueMatches(t *testing.T) {
	list := []domain.OptionValue{"a", "b"}

	assert.True(t, domain.ValueMatches(list, "a"))
	assert.False(t, domain.ValueMatches(list, "c"))
	assert.True(t, domain.ValueMatches(list, []domain.OptionValue{"b", "a"}))
	assert.True(t, domain.ValueMatches(2.0, 2))
	assert.False(t, domain.ValueMatches("a", list))
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, 3.0, domain.NormalizeValue(3))
	assert.Equal(t, 3.0, domain.NormalizeValue(int64(3)))
	assert.Equal(t, "x", domain.NormalizeValue("x"))
	assert.Equal(t, true, domain.NormalizeValue(true))
	assert.Nil(t, domain.NormalizeValue(nil))
	assert.Equal(t,
		[]domain.OptionValue{1.0, "b", []domain.OptionValue{false}},
		domain.NormalizeValue([]any{1, "b", []any{false}}),
	)
}

func TestOptions_Clone(t *testing.T) {
	var nilOpts domain.Options
	assert.NotNil(t, nilOpts.Clone())

	opts := domain.Options{"a": 1.0}
	clone := opts.Clone()
	clone["a"] = 2.0
	assert.Equal(t, 1.0, opts["a"])
}

func TestCoerceValue(t *testing.T) {
	str := &domain.OptionDefinition{Kind: domain.OptionString}
	num := &domain.OptionDefinition{Kind: domain.OptionNumber}
	boolean := &domain.OptionDefinition{Kind: domain.OptionBoolean}
	multi := &domain.OptionDefinition{Kind: domain.OptionString, Multi: true}

	tests := []struct {
		name string
		def  *domain.OptionDefinition
		in   domain.OptionValue
		want domain.OptionValue
	}{
		{name: "Number as string", def: str, in: 4.0, want: "4"},
		{name: "Fraction as string", def: str, in: 1.5, want: "1.5"},
		{name: "Boolean as string", def: str, in: true, want: "true"},
		{name: "String as number", def: num, in: "4", want: 4.0},
		{name: "String as boolean", def: boolean, in: "false", want: false},
		{name: "Unparsable value is kept", def: num, in: "many", want: "many"},
		{name: "Nil stays nil", def: str, in: nil, want: nil},
		{name: "List items", def: multi, in: []domain.OptionValue{1.0, "b"}, want: []domain.OptionValue{"1", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CoerceValue(tt.def, tt.in))
		})
	}
}
