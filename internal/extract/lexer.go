package extract

import (
	"regexp"
	"strings"
)

// lineKind classifies a physical source line.
type lineKind int

const (
	lineBlank lineKind = iota
	lineComment
	lineCode
	lineClass
	lineDef
	// lineString marks a line that opens a triple-quoted block as its first
	// token, or that starts inside a block opened on an earlier line.
	lineString
)

var (
	classHeaderRe = regexp.MustCompile(`^class\s+(\w+)\s*[(:]`)
	defHeaderRe   = regexp.MustCompile(`^(?:async\s+)?def\s+(\w+)\s*\(`)
)

// line is one classified source line.
type line struct {
	num    int // 1-based
	text   string
	indent int
	kind   lineKind
	name   string // class or function name for header lines
	block  int    // index of the block this line opens or continues, -1 if none
}

// block is a triple-quoted span. Columns are byte offsets into the first and
// last line respectively.
type block struct {
	first, last int
	openCol     int // offset of the opening delimiter
	closeCol    int // offset just past the closing delimiter
	delim       string
	leading     bool // the opener is the first token on its line
	closed      bool
}

// source is the lexed form of one text: classified lines plus the arena of
// triple-quoted spans that index into them. The text itself is never
// modified.
type source struct {
	lines  []line
	blocks []block
}

// lex classifies every line of text in one forward pass.
func lex(text string) *source {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	src := &source{lines: make([]line, 0, len(raw))}
	open := -1

	for i, r := range raw {
		ln := line{num: i + 1, text: r, indent: indentOf(r), block: -1}

		if open >= 0 {
			ln.kind = lineString
			ln.block = open
			b := &src.blocks[open]
			end := strings.Index(r, b.delim)
			if end < 0 {
				b.last = i
				src.lines = append(src.lines, ln)
				continue
			}
			b.last = i
			b.closeCol = end + len(b.delim)
			b.closed = true
			open = src.scan(i, r, b.closeCol, false)
			src.lines = append(src.lines, ln)
			continue
		}

		trimmed := strings.TrimSpace(r)
		switch {
		case trimmed == "":
			ln.kind = lineBlank
		case strings.HasPrefix(trimmed, "#"):
			ln.kind = lineComment
		case startsWithDelim(trimmed):
			ln.kind = lineString
			ln.block = len(src.blocks)
			open = src.scan(i, r, ln.indent, true)
		default:
			if m := classHeaderRe.FindStringSubmatch(trimmed); m != nil {
				ln.kind = lineClass
				ln.name = m[1]
			} else if m := defHeaderRe.FindStringSubmatch(trimmed); m != nil {
				ln.kind = lineDef
				ln.name = m[1]
			} else {
				ln.kind = lineCode
			}
			open = src.scan(i, r, 0, false)
		}
		src.lines = append(src.lines, ln)
	}

	return src
}

// scan records every triple-quoted block that opens in r at or after from.
// It returns the index of a block left open at end of line, or -1.
func (s *source) scan(i int, r string, from int, leading bool) int {
	for from < len(r) {
		rest := r[from:]
		idx, delim := firstDelim(rest)
		if idx < 0 {
			return -1
		}
		if c := commentStart(rest); c >= 0 && c < idx {
			return -1
		}

		b := block{
			first:   i,
			last:    i,
			openCol: from + idx,
			delim:   delim,
			leading: leading,
		}
		leading = false

		bodyStart := from + idx + len(delim)
		end := strings.Index(r[bodyStart:], delim)
		if end < 0 {
			s.blocks = append(s.blocks, b)
			return len(s.blocks) - 1
		}
		b.closed = true
		b.closeCol = bodyStart + end + len(delim)
		s.blocks = append(s.blocks, b)
		from = b.closeCol
	}
	return -1
}

// text returns the raw block including its delimiters.
func (s *source) text(b block) string {
	if b.first == b.last {
		l := s.lines[b.first].text
		end := len(l)
		if b.closed {
			end = b.closeCol
		}
		return l[b.openCol:end]
	}

	var sb strings.Builder
	sb.WriteString(s.lines[b.first].text[b.openCol:])
	for i := b.first + 1; i < b.last; i++ {
		sb.WriteByte('\n')
		sb.WriteString(s.lines[i].text)
	}
	sb.WriteByte('\n')
	last := s.lines[b.last].text
	if b.closed {
		last = last[:b.closeCol]
	}
	sb.WriteString(last)
	return sb.String()
}

// headerEnd returns the index of the line that terminates the class or def
// header starting at i (the line ending in ':' once brackets balance), or -1
// when the header is a one-liner or never closes.
func (s *source) headerEnd(i int) int {
	depth := 0
	for j := i; j < len(s.lines); j++ {
		ln := s.lines[j]
		if j > i && (ln.kind == lineClass || ln.kind == lineDef) {
			return -1
		}
		code := ln.text
		if c := commentStart(code); c >= 0 {
			code = code[:c]
		}
		depth += bracketDelta(code)
		if depth <= 0 {
			if strings.HasSuffix(strings.TrimSpace(code), ":") {
				return j
			}
			return -1
		}
	}
	return -1
}

// docstringAfter returns the block that opens at the start of the first
// non-blank line after j, if any.
func (s *source) docstringAfter(j int) (block, bool) {
	for k := j + 1; k < len(s.lines); k++ {
		ln := s.lines[k]
		if ln.kind == lineBlank {
			continue
		}
		if ln.kind == lineString && ln.block >= 0 {
			b := s.blocks[ln.block]
			if b.first == k && b.leading {
				return b, true
			}
		}
		return block{}, false
	}
	return block{}, false
}

// topLevel reports whether line k starts a new column-0 construct. Lines
// continuing a triple-quoted block, blank lines and comments never do.
func (s *source) topLevel(k int) bool {
	ln := s.lines[k]
	if ln.indent != 0 {
		return false
	}
	switch ln.kind {
	case lineCode, lineClass, lineDef:
		return true
	case lineString:
		return s.blocks[ln.block].first == k
	}
	return false
}

// classEnd returns the exclusive end of the class span that starts at i.
func (s *source) classEnd(i int) int {
	for k := i + 1; k < len(s.lines); k++ {
		if s.topLevel(k) {
			return k
		}
	}
	return len(s.lines)
}

func indentOf(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t"))
}

func startsWithDelim(trimmed string) bool {
	idx, _ := firstDelim(trimmed)
	if idx < 0 {
		return false
	}
	// string prefixes such as r""" or u'''
	prefix := strings.ToLower(trimmed[:idx])
	return prefix == "" || prefix == "r" || prefix == "u" || prefix == "b" || prefix == "rb" || prefix == "br"
}

// firstDelim finds the earliest triple-quote delimiter in s.
func firstDelim(s string) (int, string) {
	d := strings.Index(s, `"""`)
	q := strings.Index(s, `'''`)
	switch {
	case d < 0 && q < 0:
		return -1, ""
	case q < 0 || (d >= 0 && d < q):
		return d, `"""`
	default:
		return q, `'''`
	}
}

// bracketDelta returns opening minus closing brackets outside single-line
// quotes.
func bracketDelta(s string) int {
	var quote rune
	escaped := false
	delta := 0
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(' || r == '[' || r == '{':
			delta++
		case r == ')' || r == ']' || r == '}':
			delta--
		}
	}
	return delta
}

// commentStart returns the offset of a '#' outside single-line quotes, or -1.
func commentStart(s string) int {
	var quote rune
	escaped := false
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '#':
			return i
		}
	}
	return -1
}
