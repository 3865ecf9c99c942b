package extract

import (
	"strings"
)

const (
	developersMarker  = "Developers:"
	descriptionMarker = "Description:"
)

// Header is the metadata from a module's leading docstring.
type Header struct {
	Name        string
	Developers  string
	Description string
}

// ParseModuleHeader extracts the module name, developers and description
// from the first triple-quoted block that opens at column 0 of text.
func ParseModuleHeader(text string) (*Header, error) {
	return parseHeader(lex(text))
}

func parseHeader(src *source) (*Header, error) {
	var b block
	found := false
	for _, candidate := range src.blocks {
		if candidate.leading && candidate.openCol == 0 {
			b, found = candidate, true
			break
		}
	}
	if !found {
		return nil, &FormatError{Reason: "no module docstring at the start of a line"}
	}
	if !b.closed {
		return nil, &FormatError{Line: b.first + 1, Reason: "module docstring is not terminated"}
	}

	lines := strings.Split(stripDelimiters(src.text(b)), "\n")
	h := &Header{}
	devAt, descAt := -1, -1
	for i, l := range lines {
		switch strings.TrimSpace(l) {
		case developersMarker:
			if devAt < 0 {
				devAt = i
			}
		case descriptionMarker:
			if descAt < 0 {
				descAt = i
			}
		}
	}

	for _, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		if t != developersMarker && t != descriptionMarker {
			h.Name = t
		}
		break
	}
	if h.Name == "" {
		return nil, &FormatError{Line: b.first + 1, Reason: "module docstring has no name line"}
	}

	if devAt < 0 {
		return nil, &FormatError{Module: h.Name, Line: b.first + 1, Reason: "module docstring is missing the " + developersMarker + " marker"}
	}
	if descAt < 0 {
		return nil, &FormatError{Module: h.Name, Line: b.first + 1, Reason: "module docstring is missing the " + descriptionMarker + " marker"}
	}

	var devs []string
	for _, l := range lines[devAt+1:] {
		t := strings.TrimSpace(l)
		if t == "" || t == descriptionMarker {
			break
		}
		devs = append(devs, t)
	}
	h.Developers = strings.Join(devs, ", ")
	h.Description = strings.TrimSpace(strings.Join(lines[descAt+1:], "\n"))

	return h, nil
}
