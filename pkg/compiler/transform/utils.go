package transform

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ToValidAssetID turns a component or directive name into the local variable
// holding its resolved value, e.g. my-comp -> _component_my_comp.
func ToValidAssetID(name, kind string) string {
	var b strings.Builder
	b.WriteString("_" + kind + "_")
	for _, r := range name {
		switch {
		case r == '-':
			b.WriteByte('_')
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteString(strconv.Itoa(int(r)))
		}
	}
	return b.String()
}

// toHandlerKey maps an event name to its prop key: click -> onClick
func toHandlerKey(event string) string {
	if event == "" {
		return ""
	}
	return "on" + capitalize(camelize(event))
}

// capitalize upper-cases the first rune of s
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// camelize converts kebab-case to camelCase
func camelize(s string) string {
	parts := strings.Split(s, "-")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = capitalize(parts[i])
		}
	}
	return strings.Join(parts, "")
}
