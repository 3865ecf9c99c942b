package render

import (
	"strings"
)

// Crumb is one breadcrumb entry. The current page's crumb has no Href.
type Crumb struct {
	Label   string
	Href    string
	Current bool
}

// Page is one rendered document.
type Page struct {
	ID         string
	Title      string
	Breadcrumb []Crumb
	Body       []byte
}

// Filename is the file the page is written to, also its link target.
func (p Page) Filename() string {
	return p.ID + ".html"
}

// ModuleID normalises a module name into a page id: lowercase, spaces
// replaced with underscores.
func ModuleID(name string) string {
	return normalise(name)
}

// ClassID is the page id of a class page. The class name keeps its case.
func ClassID(module, class string) string {
	return ModuleID(module) + "." + class
}

// Breadcrumb builds one crumb per path segment. Every segment but the last
// links to the lowercase dot-joined path up to it.
func Breadcrumb(path ...string) []Crumb {
	crumbs := make([]Crumb, 0, len(path))
	for i, label := range path {
		if i == len(path)-1 {
			crumbs = append(crumbs, Crumb{Label: label, Current: true})
			continue
		}
		parts := make([]string, i+1)
		for j, seg := range path[:i+1] {
			parts[j] = normalise(seg)
		}
		crumbs = append(crumbs, Crumb{Label: label, Href: strings.Join(parts, ".") + ".html"})
	}
	return crumbs
}

func normalise(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "_")
}
