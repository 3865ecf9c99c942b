package extract

import (
	"strings"

	"github.com/jamescalam/autodocs/internal/model"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DocBlock is a parsed function docstring.
type DocBlock struct {
	Description string
	Parameters  *orderedmap.OrderedMap[string, *model.Parameter]
}

// ParseDocBlock splits one docstring (delimiters included) into its summary
// description and its Parameters section. Returns and every other section
// are dropped. A docstring without a Parameters heading has no parameters.
//
// Line numbers in a returned *FormatError are relative to raw.
func ParseDocBlock(raw string) (*DocBlock, error) {
	lines := strings.Split(stripDelimiters(raw), "\n")

	descEnd := len(lines)
	for i := range lines {
		if isHeading(lines, i) {
			descEnd = i
			break
		}
	}
	doc := &DocBlock{
		Description: collapse(strings.Join(lines[:descEnd], "\n")),
		Parameters:  model.NewParameters(),
	}

	start := -1
	for i, l := range lines {
		if strings.TrimSpace(l) == "Parameters" {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return doc, nil
	}
	if start < len(lines) && isUnderline(strings.TrimSpace(lines[start])) {
		start++
	}

	end := len(lines)
	for i := start; i < len(lines); i++ {
		if isHeading(lines, i) {
			end = i
			break
		}
	}

	params, err := ParseParameters(strings.Join(lines[start:end], "\n"))
	if err != nil {
		return nil, annotate(err, "", "", "", start)
	}
	doc.Parameters = params
	return doc, nil
}

// isHeading reports whether lines[i] opens a docstring section: the literal
// Parameters or Returns headings, or any line underlined with dashes.
func isHeading(lines []string, i int) bool {
	t := strings.TrimSpace(lines[i])
	if t == "" || isUnderline(t) {
		return false
	}
	if t == "Parameters" || t == "Returns" {
		return true
	}
	return i+1 < len(lines) && isUnderline(strings.TrimSpace(lines[i+1]))
}

// stripDelimiters removes the string prefix and triple quotes around a
// docstring body.
func stripDelimiters(raw string) string {
	s := strings.TrimSpace(raw)
	idx, delim := firstDelim(s)
	if idx < 0 {
		return raw
	}
	s = s[idx+len(delim):]
	s = strings.TrimSuffix(s, delim)
	return s
}
