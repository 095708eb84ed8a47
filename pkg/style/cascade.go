package style

import "strings"

// Target describes one element for selector matching.
type Target struct {
	Edge    bool              // edge element; node otherwise
	ID      string            // element id
	Data    map[string]string // data attributes (group, edge_type)
	Classes []string
}

// Match reports whether selector applies to t. It understands the selector
// forms used by this package: "node", "edge", "[key = 'v']", "node[key = 'v']",
// "edge[key = 'v']" and ".class". Pseudo-classes such as ":active" never match
// a static element.
func Match(selector string, t Target) bool {
	sel := strings.TrimSpace(selector)
	if strings.HasPrefix(sel, ".") {
		for _, c := range t.Classes {
			if c == sel[1:] {
				return true
			}
		}
		return false
	}
	if strings.Contains(sel, ":") && !strings.Contains(sel, "[") {
		return false
	}

	elem, attr, hasAttr := strings.Cut(sel, "[")
	switch elem {
	case "":
	case "node":
		if t.Edge {
			return false
		}
	case "edge":
		if !t.Edge {
			return false
		}
	default:
		return false
	}
	if !hasAttr {
		return elem != ""
	}

	key, want, ok := parseAttr(attr)
	if !ok {
		return false
	}
	if key == "id" {
		return t.ID == want
	}
	got, ok := t.Data[key]
	return ok && got == want
}

// parseAttr parses "key = 'value']" with backslash escapes in the value.
func parseAttr(s string) (key, value string, ok bool) {
	k, rest, found := strings.Cut(s, "=")
	if !found {
		return "", "", false
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "'") || !strings.HasSuffix(rest, "']") {
		return "", "", false
	}
	rest = rest[1 : len(rest)-2]

	var b strings.Builder
	escaped := false
	for _, r := range rest {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(k), b.String(), true
}

// Cascade merges the properties of every rule matching t, in order, so later
// rules override earlier ones.
func Cascade(rules []Rule, t Target) Properties {
	out := Properties{}
	for _, r := range rules {
		if !Match(r.Selector, t) {
			continue
		}
		for k, v := range r.Style {
			out[k] = v
		}
	}
	return out
}
