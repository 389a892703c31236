package domain

// Reserved requirement keys.
const (
	// MinVersionKey names the minimum game patch version a variant needs.
	MinVersionKey = "minVersion"
	// HardwarePatchKey names the executable memory patch marker.
	HardwarePatchKey = "exe4gbPatch"
)

// RequirementKind tells how a requirement key is evaluated.
type RequirementKind int

const (
	// KeyFeature is a feature tag that must be present (true) or absent (false).
	KeyFeature RequirementKind = iota
	// KeyOption references an option declared by the variant or the profile.
	KeyOption
	// KeyMinVersion is the minimum patch version marker.
	KeyMinVersion
	// KeyHardwarePatch is the hardware patch marker.
	KeyHardwarePatch
)

// String returns the kind name.
func (k RequirementKind) String() string {
	switch k {
	case KeyOption:
		return "option"
	case KeyMinVersion:
		return "minVersion"
	case KeyHardwarePatch:
		return "hardwarePatch"
	default:
		return "feature"
	}
}

// RequirementKey is a classified requirement key.
// Global is only meaningful for KeyOption and marks profile-level options.
type RequirementKey struct {
	Kind   RequirementKind
	Name   string
	Global bool
}

// Requirement pairs a key with its required value.
type Requirement struct {
	Key   RequirementKey
	Value OptionValue
}

// Requirements is an ordered requirement set. Order follows the descriptor.
type Requirements []Requirement

// ClassifyRequirementKey resolves a raw descriptor key against the options visible
// to a variant. Local options shadow global ones of the same id.
func ClassifyRequirementKey(key string, local, global []OptionDefinition) RequirementKey {
	switch key {
	case MinVersionKey:
		return RequirementKey{Kind: KeyMinVersion, Name: key}
	case HardwarePatchKey:
		return RequirementKey{Kind: KeyHardwarePatch, Name: key}
	}
	for i := range local {
		if local[i].ID == key {
			return RequirementKey{Kind: KeyOption, Name: key, Global: local[i].Global}
		}
	}
	for i := range global {
		if global[i].ID == key {
			return RequirementKey{Kind: KeyOption, Name: key, Global: true}
		}
	}
	return RequirementKey{Kind: KeyFeature, Name: key}
}

// Settings describes the environment the catalog is installed into.
// Nil fields are unknown and never make a requirement fail.
type Settings struct {
	PatchVersion    *int  `json:"patchVersion,omitempty"`
	HardwarePatched *bool `json:"hardwarePatched,omitempty"`
}

// Merge returns s with every known field of o applied on top.
func (s Settings) Merge(o Settings) Settings {
	if o.PatchVersion != nil {
		s.PatchVersion = o.PatchVersion
	}
	if o.HardwarePatched != nil {
		s.HardwarePatched = o.HardwarePatched
	}
	return s
}

// Equal reports whether both settings describe the same environment.
func (s Settings) Equal(o Settings) bool {
	return equalPtr(s.PatchVersion, o.PatchVersion) && equalPtr(s.HardwarePatched, o.HardwarePatched)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
