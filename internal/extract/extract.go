// Package extract turns Python source whose docstrings follow the
// NumPy/SciPy convention into a documentation model.
//
// Extraction runs in one forward pass over classified lines: the module
// docstring first, then every top-level class with the documented functions
// in its body, then the documented free functions outside any class. Spans
// are tracked as line ranges over the lexed text, which is never rewritten.
//
// Undocumented functions and classes without a docstring are omitted or
// left with an empty description. Missing mandatory markers produce a
// *FormatError and no model.
package extract

import (
	"strings"

	"github.com/jamescalam/autodocs/internal/model"
)

// Extract builds the documentation model for one source text.
func Extract(text string) (*model.Module, error) {
	src := lex(text)

	h, err := parseHeader(src)
	if err != nil {
		return nil, err
	}

	p := &parser{
		src: src,
		mod: model.NewModule(h.Name, h.Developers, h.Description),
	}
	if err := p.parseBody(); err != nil {
		return nil, err
	}
	return p.mod, nil
}

type parser struct {
	src *source
	pos int
	mod *model.Module
}

func (p *parser) parseBody() error {
	for p.pos < len(p.src.lines) {
		ln := p.src.lines[p.pos]
		switch {
		case ln.kind == lineClass && ln.indent == 0:
			cls, err := p.parseClass()
			if err != nil {
				return err
			}
			p.mod.Classes.Set(cls.Name, cls)

		case ln.kind == lineDef:
			fn, next, err := p.parseFunction(p.pos, "")
			if err != nil {
				return err
			}
			if fn != nil {
				p.mod.Functions.Set(fn.Name, fn)
			}
			p.pos = next

		default:
			p.pos++
		}
	}
	return nil
}

// parseClass consumes the class span starting at p.pos.
func (p *parser) parseClass() (*model.Class, error) {
	start := p.pos
	end := p.src.classEnd(start)
	name := p.src.lines[start].name

	body := p.src.headerEnd(start)
	if body < 0 {
		body = start
	}

	cls := model.NewClass(name, "")
	k := body + 1
	if b, ok := p.src.docstringAfter(body); ok && b.first < end {
		if !b.closed {
			return nil, &FormatError{Module: p.mod.Name, Class: name, Line: b.first + 1, Reason: "class docstring is not terminated"}
		}
		cls.Description = collapse(stripDelimiters(p.src.text(b)))
		k = b.last + 1
	}

	for k < end {
		if p.src.lines[k].kind != lineDef {
			k++
			continue
		}
		fn, next, err := p.parseFunction(k, name)
		if err != nil {
			return nil, err
		}
		if fn != nil {
			cls.Functions.Set(fn.Name, fn)
		}
		k = next
	}

	p.pos = end
	return cls, nil
}

// parseFunction parses the def header at line i and its docstring. It
// returns a nil function when the def has no adjacent docstring, plus the
// index of the next line to examine.
func (p *parser) parseFunction(i int, class string) (*model.Function, int, error) {
	name := p.src.lines[i].name

	j := p.src.headerEnd(i)
	if j < 0 {
		return nil, i + 1, nil
	}
	b, ok := p.src.docstringAfter(j)
	if !ok {
		return nil, j + 1, nil
	}
	if !b.closed {
		return nil, 0, &FormatError{
			Module:   p.mod.Name,
			Class:    class,
			Function: name,
			Line:     b.first + 1,
			Text:     strings.TrimSpace(p.src.lines[b.first].text),
			Reason:   "function docstring is not terminated",
		}
	}

	doc, err := ParseDocBlock(p.src.text(b))
	if err != nil {
		return nil, 0, annotate(err, p.mod.Name, class, name, b.first)
	}

	return model.NewFunction(name, doc.Description, doc.Parameters), b.last + 1, nil
}
