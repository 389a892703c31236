package resolver

import (
	"go.trai.ch/modman/internal/core/domain"
)

// VariantIssues lists what makes a variant incompatible with the current features,
// options and settings. Feature conflicts come first, then requirements in
// declaration order. Every issue is reported.
//
// Option requirements compare against the configured value only: an option left
// unset is not checked against its default.
func VariantIssues(
	packageID string,
	variant *domain.VariantDefinition,
	opts domain.Options,
	features domain.Features,
	settings *domain.Settings,
) []domain.Issue {
	issues := []domain.Issue{}

	for _, f := range variant.Features {
		others, external := features.Others(f, packageID)
		if len(others) > 0 || external {
			issues = append(issues, domain.ConflictingFeature(f, others, external))
		}
	}

	for _, req := range variant.Requirements {
		switch req.Key.Kind {
		case domain.KeyFeature:
			// The variant's own claim satisfies a requirement but never conflicts with one.
			required := requiredFlag(req.Value)
			others, external := features.Others(req.Key.Name, packageID)
			switch {
			case required && !features.Provided(req.Key.Name):
				issues = append(issues, domain.MissingFeature(req.Key.Name))
			case !required && (len(others) > 0 || external):
				issues = append(issues, domain.IncompatibleFeature(req.Key.Name, others, external))
			}
		case domain.KeyMinVersion:
			if !minVersionSatisfied(req.Value, settings) {
				minVersion, _ := requiredNumber(req.Value)
				issues = append(issues, domain.IncompatibleVersion(minVersion))
			}
		case domain.KeyHardwarePatch:
			if !hardwarePatchSatisfied(req.Value, settings) {
				issues = append(issues, domain.MissingHardwarePatch())
			}
		case domain.KeyOption:
			value, ok := opts[req.Key.Name]
			if ok && value != nil && !domain.ValueMatches(value, req.Value) {
				issues = append(issues, domain.IncompatibleOption(req.Key.Name, req.Value))
			}
		}
	}

	return issues
}
