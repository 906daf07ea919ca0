// Package dom holds the host-side prop patching the generated render code
// relies on. Style, event and attribute patching are supplied by the host.
package dom

import "regexp"

// StylePatcher applies a style value to an element
type StylePatcher interface {
	PatchStyle(el any, value any)
}

// EventPatcher binds, rebinds or removes the handler for an onXxx key
type EventPatcher interface {
	PatchEvent(el any, key string, value any)
}

// AttrPatcher sets or removes a plain attribute
type AttrPatcher interface {
	PatchAttr(el any, key string, value any)
}

// PropPatcher dispatches prop updates to the style, event and attribute patchers
type PropPatcher struct {
	Style  StylePatcher
	Events EventPatcher
	Attrs  AttrPatcher
}

// NewPropPatcher creates a dispatcher over the given host patchers
func NewPropPatcher(style StylePatcher, events EventPatcher, attrs AttrPatcher) *PropPatcher {
	return &PropPatcher{Style: style, Events: events, Attrs: attrs}
}

var onRE = regexp.MustCompile(`^on[^a-z]`)

// IsOn reports whether key names an event binding: "on" followed by a
// character that is not a lowercase letter, as in onClick.
func IsOn(key string) bool {
	return onRE.MatchString(key)
}

// PatchProp applies value for key on el
func (p *PropPatcher) PatchProp(el any, key string, value any) {
	switch {
	case key == "style":
		p.Style.PatchStyle(el, value)
	case IsOn(key):
		p.Events.PatchEvent(el, key, value)
	default:
		p.Attrs.PatchAttr(el, key, value)
	}
}
