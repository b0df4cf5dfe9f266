package models

// Optionality classifies how a Swift type admits absence
type Optionality int

const (
	// Required types carry no optionality marker
	Required Optionality = iota
	// Optional types are spelled T?
	Optional
	// ImplicitlyUnwrapped types are spelled T!
	ImplicitlyUnwrapped
)

// String returns the name of the optionality kind
func (o Optionality) String() string {
	switch o {
	case Optional:
		return "Optional"
	case ImplicitlyUnwrapped:
		return "ImplicitlyUnwrapped"
	default:
		return "Required"
	}
}

// Marker returns the Swift suffix for the optionality kind
func (o Optionality) Marker() string {
	switch o {
	case Optional:
		return "?"
	case ImplicitlyUnwrapped:
		return "!"
	default:
		return ""
	}
}

// Nullable reports whether a value of this kind may be absent at runtime
func (o Optionality) Nullable() bool {
	return o != Required
}

// OptionalityFromMarker maps a Swift suffix to its optionality kind
func OptionalityFromMarker(marker string) Optionality {
	switch marker {
	case "?":
		return Optional
	case "!":
		return ImplicitlyUnwrapped
	default:
		return Required
	}
}
