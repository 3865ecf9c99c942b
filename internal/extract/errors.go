package extract

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFormat is matched by every *FormatError via errors.Is.
var ErrFormat = errors.New("documentation format error")

// FormatError reports a mandatory structural marker that is absent or
// malformed. It is always fatal to the extraction call that produced it.
type FormatError struct {
	Module   string // module name, when already known
	Class    string // enclosing class, if any
	Function string // enclosing function, if any
	Line     int    // 1-based line number, 0 when unknown
	Text     string // offending text
	Reason   string
}

func (e *FormatError) Error() string {
	var sb strings.Builder
	sb.WriteString("format error")
	if e.Line > 0 {
		fmt.Fprintf(&sb, " at line %d", e.Line)
	}
	if loc := e.location(); loc != "" {
		fmt.Fprintf(&sb, " in %s", loc)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Reason)
	if e.Text != "" {
		fmt.Fprintf(&sb, " (%q)", e.Text)
	}
	return sb.String()
}

// Is makes errors.Is(err, ErrFormat) hold for any *FormatError.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func (e *FormatError) location() string {
	var parts []string
	for _, p := range []string{e.Module, e.Class, e.Function} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// annotate fills in context on a *FormatError bubbling up from a nested
// parser. lineBase is added to a relative line number.
func annotate(err error, module, class, function string, lineBase int) error {
	var fe *FormatError
	if !errors.As(err, &fe) {
		return err
	}
	if fe.Module == "" {
		fe.Module = module
	}
	if fe.Class == "" {
		fe.Class = class
	}
	if fe.Function == "" {
		fe.Function = function
	}
	if fe.Line > 0 {
		fe.Line += lineBase
	}
	return fe
}
