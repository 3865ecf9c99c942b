package extract

import (
	"regexp"
	"strings"

	"github.com/jamescalam/autodocs/internal/model"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var paramNameRe = regexp.MustCompile(`^\*{0,2}[A-Za-z_]\w*$`)

// ParseParameters parses the body of a Parameters section into an ordered
// map of entries.
//
// The indentation of the first non-blank line is the entry column: lines at
// or left of it are `name : type` entries, deeper lines continue the current
// entry's description. A type containing "optional" marks the entry optional
// and is cut at its first comma. A repeated name keeps its first position
// and takes the later value.
//
// Several comma-separated names ("x1, x2 : array_like") produce one entry
// each, sharing the type and description. Within each name only the
// identifier next to the colon counts. An entry line without a colon, or
// with no identifier before it, returns a *FormatError whose Line is
// relative to text.
func ParseParameters(text string) (*orderedmap.OrderedMap[string, *model.Parameter], error) {
	params := model.NewParameters()
	base := -1

	var cur []*model.Parameter
	var desc []string
	flush := func() {
		description := collapse(strings.Join(desc, " "))
		for _, p := range cur {
			p.Description = description
			params.Set(p.Name, p)
		}
		cur, desc = nil, nil
	}

	for i, raw := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		if cur == nil && isUnderline(trimmed) {
			continue
		}

		indent := indentOf(raw)
		if base < 0 {
			base = indent
		}
		if indent > base {
			desc = append(desc, trimmed)
			continue
		}

		flush()
		name, dtype, ok := strings.Cut(trimmed, ":")
		if !ok {
			return nil, &FormatError{Line: i + 1, Text: trimmed, Reason: "parameter entry is missing its ':' type separator"}
		}
		names := entryNames(name)
		if len(names) == 0 {
			return nil, &FormatError{Line: i + 1, Text: trimmed, Reason: "parameter entry has no valid name"}
		}

		dtype = strings.TrimSpace(dtype)
		optional := strings.Contains(dtype, "optional")
		if optional {
			dtype, _, _ = strings.Cut(dtype, ",")
			dtype = strings.TrimSpace(dtype)
		}
		for _, n := range names {
			cur = append(cur, &model.Parameter{Name: n, DType: dtype, Optional: optional})
		}
	}
	flush()

	return params, nil
}

// entryNames splits the name part of an entry line on commas and keeps the
// last word of each piece when it is an identifier.
func entryNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		if name := fields[len(fields)-1]; paramNameRe.MatchString(name) {
			names = append(names, name)
		}
	}
	return names
}

// collapse replaces every whitespace run with a single space and trims.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// isUnderline reports whether s is a section underline such as "-------".
func isUnderline(s string) bool {
	return len(s) >= 3 && strings.Trim(s, "-") == ""
}
