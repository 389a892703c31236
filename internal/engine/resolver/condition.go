package resolver

import (
	"go.trai.ch/modman/internal/core/domain"
)

// ConditionContext is everything a requirement set may be evaluated against.
// PackageID, Variant and Config are empty when evaluating package-agnostic conditions.
type ConditionContext struct {
	PackageID      string
	Variant        *domain.VariantDefinition
	Config         *domain.PackageConfig
	ProfileOptions domain.Options
	GlobalOptions  []domain.OptionDefinition
	Features       domain.Features
	Settings       *domain.Settings
}

// global drops the package part of the context.
func (c ConditionContext) global() ConditionContext {
	return ConditionContext{
		ProfileOptions: c.ProfileOptions,
		GlobalOptions:  c.GlobalOptions,
		Features:       c.Features,
		Settings:       c.Settings,
	}
}

// CheckCondition reports whether every requirement holds in the given context.
// An empty requirement set is always satisfied.
func CheckCondition(reqs domain.Requirements, c ConditionContext) bool {
	for _, req := range reqs {
		if !checkRequirement(req, c) {
			return false
		}
	}
	return true
}

func checkRequirement(req domain.Requirement, c ConditionContext) bool {
	switch req.Key.Kind {
	case domain.KeyMinVersion:
		return minVersionSatisfied(req.Value, c.Settings)
	case domain.KeyHardwarePatch:
		return hardwarePatchSatisfied(req.Value, c.Settings)
	case domain.KeyOption:
		if !req.Key.Global {
			if def, ok := localOption(c, req.Key.Name); ok {
				return checkLocalOption(def, req.Value, c)
			}
		}
		if def, ok := globalOption(c, req.Key.Name); ok {
			return checkGlobalOption(def, req.Value, c)
		}
		return false
	default:
		return requiredFlag(req.Value) == c.Features.Provided(req.Key.Name)
	}
}

func checkLocalOption(def *domain.OptionDefinition, required domain.OptionValue, c ConditionContext) bool {
	opts := c.ProfileOptions.Clone()
	if c.Config != nil {
		for k, v := range c.Config.Options {
			opts[k] = v
		}
	}
	if !domain.ValueMatches(domain.GetOptionValue(def, opts), required) {
		return false
	}
	choice, ok := def.Choice(required)
	if !ok {
		return true
	}
	return CheckCondition(choice.Condition, c)
}

func checkGlobalOption(def *domain.OptionDefinition, required domain.OptionValue, c ConditionContext) bool {
	if !domain.ValueMatches(domain.GetOptionValue(def, c.ProfileOptions), required) {
		return false
	}
	choice, ok := def.Choice(required)
	if !ok {
		return true
	}
	return CheckCondition(choice.Condition, c.global())
}

func localOption(c ConditionContext, id string) (*domain.OptionDefinition, bool) {
	if c.Variant == nil {
		return nil, false
	}
	def, ok := c.Variant.Option(id)
	if !ok || def.Global {
		return nil, false
	}
	return def, true
}

// globalOption prefers the profile-level definition, then a global option the variant redeclares.
func globalOption(c ConditionContext, id string) (*domain.OptionDefinition, bool) {
	for i := range c.GlobalOptions {
		if c.GlobalOptions[i].ID == id {
			return &c.GlobalOptions[i], true
		}
	}
	if c.Variant != nil {
		if def, ok := c.Variant.Option(id); ok && def.Global {
			return def, true
		}
	}
	return nil, false
}

func minVersionSatisfied(required domain.OptionValue, s *domain.Settings) bool {
	if s == nil || s.PatchVersion == nil {
		return true
	}
	minVersion, ok := requiredNumber(required)
	if !ok {
		return true
	}
	return *s.PatchVersion >= minVersion
}

func hardwarePatchSatisfied(required domain.OptionValue, s *domain.Settings) bool {
	if !requiredFlag(required) || s == nil || s.HardwarePatched == nil {
		return true
	}
	return *s.HardwarePatched
}

func requiredFlag(v domain.OptionValue) bool {
	b, ok := v.(bool)
	return ok && b
}

func requiredNumber(v domain.OptionValue) (int, bool) {
	if n, ok := v.(float64); ok {
		return int(n), true
	}
	if n, ok := v.(int); ok {
		return n, true
	}
	return 0, false
}

// FilterFiles returns the files whose inclusion condition holds in the context.
func FilterFiles(files []domain.FileEntry, c ConditionContext) []domain.FileEntry {
	var out []domain.FileEntry
	for _, f := range files {
		if CheckCondition(f.Condition, c) {
			out = append(out, f)
		}
	}
	return out
}
