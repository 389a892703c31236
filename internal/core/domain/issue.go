package domain

import (
	"fmt"
	"strings"
)

// IssueKind tags the reason a variant is incompatible.
type IssueKind string

const (
	// IssueConflictingFeature means another enabled package claims a feature the variant provides.
	IssueConflictingFeature IssueKind = "conflictingFeature"
	// IssueIncompatibleFeature means a feature the variant requires absent is provided.
	IssueIncompatibleFeature IssueKind = "incompatibleFeature"
	// IssueMissingFeature means a feature the variant requires is not provided.
	IssueMissingFeature IssueKind = "missingFeature"
	// IssueIncompatibleOption means an option is configured to a different value than required.
	IssueIncompatibleOption IssueKind = "incompatibleOption"
	// IssueIncompatibleDependencies means some dependency has no compatible variant.
	IssueIncompatibleDependencies IssueKind = "incompatibleDependencies"
	// IssueIncompatibleVersion means the configured patch version is too old.
	IssueIncompatibleVersion IssueKind = "incompatibleVersion"
	// IssueMissingHardwarePatch means the executable patch is required but not applied.
	IssueMissingHardwarePatch IssueKind = "missingHardwarePatch"
)

// Issue explains why a variant is incompatible. Kind selects which fields are set.
type Issue struct {
	Kind       IssueKind   `json:"kind"`
	Feature    string      `json:"feature,omitempty"`
	Packages   []string    `json:"packages,omitempty"`
	External   bool        `json:"external,omitempty"`
	Option     string      `json:"option,omitempty"`
	Value      OptionValue `json:"value,omitempty"`
	MinVersion int         `json:"minVersion,omitempty"`
}

// ConflictingFeature builds an IssueConflictingFeature.
func ConflictingFeature(feature string, packages []string, external bool) Issue {
	return Issue{Kind: IssueConflictingFeature, Feature: feature, Packages: packages, External: external}
}

// IncompatibleFeature builds an IssueIncompatibleFeature.
func IncompatibleFeature(feature string, packages []string, external bool) Issue {
	return Issue{Kind: IssueIncompatibleFeature, Feature: feature, Packages: packages, External: external}
}

// MissingFeature builds an IssueMissingFeature.
func MissingFeature(feature string) Issue {
	return Issue{Kind: IssueMissingFeature, Feature: feature}
}

// IncompatibleOption builds an IssueIncompatibleOption.
func IncompatibleOption(option string, required OptionValue) Issue {
	return Issue{Kind: IssueIncompatibleOption, Option: option, Value: required}
}

// IncompatibleDependencies builds an IssueIncompatibleDependencies.
func IncompatibleDependencies(packages []string) Issue {
	return Issue{Kind: IssueIncompatibleDependencies, Packages: packages}
}

// IncompatibleVersion builds an IssueIncompatibleVersion.
func IncompatibleVersion(minVersion int) Issue {
	return Issue{Kind: IssueIncompatibleVersion, MinVersion: minVersion}
}

// MissingHardwarePatch builds an IssueMissingHardwarePatch.
func MissingHardwarePatch() Issue {
	return Issue{Kind: IssueMissingHardwarePatch}
}

// String renders the issue for humans.
func (i Issue) String() string {
	switch i.Kind {
	case IssueConflictingFeature:
		return fmt.Sprintf("feature %q is also provided by %s", i.Feature, i.providers())
	case IssueIncompatibleFeature:
		return fmt.Sprintf("incompatible with feature %q provided by %s", i.Feature, i.providers())
	case IssueMissingFeature:
		return fmt.Sprintf("requires feature %q", i.Feature)
	case IssueIncompatibleOption:
		return fmt.Sprintf("requires option %q = %v", i.Option, i.Value)
	case IssueIncompatibleDependencies:
		return "incompatible dependencies: " + strings.Join(i.Packages, ", ")
	case IssueIncompatibleVersion:
		return fmt.Sprintf("requires patch version %d or newer", i.MinVersion)
	case IssueMissingHardwarePatch:
		return "requires the executable memory patch"
	default:
		return string(i.Kind)
	}
}

func (i Issue) providers() string {
	names := append([]string(nil), i.Packages...)
	if i.External {
		names = append(names, "an external installation")
	}
	if len(names) == 0 {
		return "nothing"
	}
	return strings.Join(names, ", ")
}
