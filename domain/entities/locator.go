package entities

import "sort"

// FilterValue is one entry of an AttributeFilter. PresenceOnly entries
// require the attribute to exist and ignore Value.
type FilterValue struct {
	Value        string `json:"value,omitempty"`
	PresenceOnly bool   `json:"presence_only,omitempty"`
}

// Present - builds the "attribute must exist" marker
func Present() FilterValue {
	return FilterValue{PresenceOnly: true}
}

// Equals - builds an exact-value filter entry
func Equals(value string) FilterValue {
	return FilterValue{Value: value}
}

// AttributeFilter maps lower-cased attribute names to the value they must carry.
type AttributeFilter map[string]FilterValue

// Names - returns the filter keys in sorted order
func (f AttributeFilter) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Without - returns a copy of the filter with the given key removed
func (f AttributeFilter) Without(name string) AttributeFilter {
	out := make(AttributeFilter, len(f))
	for k, v := range f {
		if k != name {
			out[k] = v
		}
	}
	return out
}

// LocatorSpec describes how a TAG command finds its element.
// A nil Form means the element is searched in the whole document.
type LocatorSpec struct {
	Position    int             `json:"position"`
	ElementType string          `json:"element_type"`
	Form        AttributeFilter `json:"form,omitempty"`
	Attributes  AttributeFilter `json:"attributes"`
	Content     *Value          `json:"content,omitempty"`
	Extract     *string         `json:"extract,omitempty"`
}

const (
	DefaultPosition    = 1
	DefaultElementType = "div"
)

// NewLocatorSpec - returns a spec carrying the documented defaults
func NewLocatorSpec() LocatorSpec {
	return LocatorSpec{
		Position:    DefaultPosition,
		ElementType: DefaultElementType,
		Attributes:  AttributeFilter{},
	}
}
