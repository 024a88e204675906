package domain

import "strings"

const (
	// MethodGenerateContent is the capability a model needs to be relayed to
	MethodGenerateContent = "generateContent"

	// ModelNamePrefix is the namespace the catalog puts in front of model ids
	ModelNamePrefix = "models/"

	// DefaultFastMarker identifies low-latency model variants
	DefaultFastMarker = "flash"
)

// ModelID is the identifier used to address a model in generate requests
type ModelID string

// String implements fmt.Stringer
func (id ModelID) String() string {
	return string(id)
}

// IsZero reports whether no model has been chosen
func (id ModelID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

// NormalizeModelID strips the catalog namespace prefix
func NormalizeModelID(name string) ModelID {
	return ModelID(strings.TrimPrefix(strings.TrimSpace(name), ModelNamePrefix))
}

// Model is a catalog entry
type Model struct {
	Name             string // e.g. "models/gemini-2.5-flash"
	DisplayName      string
	SupportedMethods []string
}

// Supports checks whether the model advertises the given generation method
func (m Model) Supports(method string) bool {
	for _, s := range m.SupportedMethods {
		if s == method {
			return true
		}
	}
	return false
}

// ContentCapable filters models to those supporting generateContent, keeping
// catalog order.
func ContentCapable(models []Model) []Model {
	var out []Model
	for _, m := range models {
		if m.Supports(MethodGenerateContent) {
			out = append(out, m)
		}
	}
	return out
}

// PickModel applies the selection policy: the first content-capable model whose
// name contains fastMarker, else the first content-capable model.
func PickModel(models []Model, fastMarker string) (ModelID, error) {
	candidates := ContentCapable(models)
	if len(candidates) == 0 {
		return "", ErrNoUsableModel
	}

	if fastMarker != "" {
		for _, m := range candidates {
			if strings.Contains(m.Name, fastMarker) {
				return NormalizeModelID(m.Name), nil
			}
		}
	}

	return NormalizeModelID(candidates[0].Name), nil
}
