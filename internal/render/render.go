// Package render turns documentation models into linked HTML pages.
//
// Rendering is a pure transform: the same model always produces the same
// bytes. Pages reference static assets under a relative templates/
// directory and link to each other by page id.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strings"
	texttemplate "text/template"

	"github.com/jamescalam/autodocs/internal/model"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Asset names the pages expect under templates/.
const (
	AssetStylesheet = "bootstrap.min.css"
	AssetBundle     = "bootstrap.bundle.min.js"
	AssetJQuery     = "jquery.min.js"
	NavbarFile      = "navbar.js"
	ReadmeID        = "readme"
)

// Assets lists the static assets that must exist before pages are served.
var Assets = []string{AssetStylesheet, AssetBundle, AssetJQuery}

// Renderer holds the parsed page templates.
type Renderer struct {
	html   *template.Template
	navbar *texttemplate.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	html, err := template.ParseFS(templatesFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	navbar, err := texttemplate.New("navbar.js.tmpl").
		Funcs(texttemplate.FuncMap{"jsString": jsString}).
		ParseFS(templatesFS, "templates/navbar.js.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse navbar template: %w", err)
	}
	return &Renderer{html: html, navbar: navbar}, nil
}

// Render renders one module: its page first, then one page per class in
// insertion order.
func Render(m *model.Module) ([]Page, error) {
	r, err := New()
	if err != nil {
		return nil, err
	}
	return r.Render(m)
}

type pageView struct {
	Title       string
	Description string
	Developers  string
	Breadcrumb  []Crumb
	Classes     []classView
	Functions   []functionView
}

type classView struct {
	Name        string
	Description string
	Href        string
}

type functionView struct {
	Name        string
	Signature   string
	Description string
	Parameters  []*model.Parameter
}

type moduleLink struct {
	Name        string
	Description string
	Href        string
}

// Render renders one module. See the package-level Render.
func (r *Renderer) Render(m *model.Module) ([]Page, error) {
	pages := make([]Page, 0, 1+m.Classes.Len())

	view := pageView{
		Title:       m.Name,
		Description: m.Description,
		Developers:  m.Developers,
		Breadcrumb:  Breadcrumb(m.Name),
		Functions:   functionViews(m.FunctionList()),
	}
	for _, c := range m.ClassList() {
		view.Classes = append(view.Classes, classView{
			Name:        c.Name,
			Description: c.Description,
			Href:        ClassID(m.Name, c.Name) + ".html",
		})
	}
	page, err := r.page(ModuleID(m.Name), view)
	if err != nil {
		return nil, fmt.Errorf("failed to render module %s: %w", m.Name, err)
	}
	pages = append(pages, page)

	for _, c := range m.ClassList() {
		page, err := r.page(ClassID(m.Name, c.Name), pageView{
			Title:       c.Name,
			Description: c.Description,
			Developers:  m.Developers,
			Breadcrumb:  Breadcrumb(m.Name, c.Name),
			Functions:   functionViews(c.FunctionList()),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to render class %s.%s: %w", m.Name, c.Name, err)
		}
		pages = append(pages, page)
	}

	return pages, nil
}

// Readme renders the index page linking every module, sorted by page id.
func (r *Renderer) Readme(title string, mods []*model.Module) (Page, error) {
	var buf bytes.Buffer
	data := struct {
		Title   string
		Modules []moduleLink
	}{Title: title, Modules: moduleLinks(mods)}

	if err := r.html.ExecuteTemplate(&buf, "readme", data); err != nil {
		return Page{}, fmt.Errorf("failed to render readme: %w", err)
	}
	return Page{
		ID:         ReadmeID,
		Title:      title,
		Breadcrumb: Breadcrumb(title),
		Body:       buf.Bytes(),
	}, nil
}

// Navbar renders templates/navbar.js linking every module, sorted by page id.
func (r *Renderer) Navbar(mods []*model.Module) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.navbar.ExecuteTemplate(&buf, "navbar.js.tmpl", moduleLinks(mods)); err != nil {
		return nil, fmt.Errorf("failed to render navbar: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) page(id string, view pageView) (Page, error) {
	var buf bytes.Buffer
	if err := r.html.ExecuteTemplate(&buf, "page", view); err != nil {
		return Page{}, err
	}
	return Page{
		ID:         id,
		Title:      view.Title,
		Breadcrumb: view.Breadcrumb,
		Body:       buf.Bytes(),
	}, nil
}

func functionViews(fns []*model.Function) []functionView {
	views := make([]functionView, 0, len(fns))
	for _, fn := range fns {
		views = append(views, functionView{
			Name:        fn.Name,
			Signature:   fn.Name + "(" + strings.Join(fn.ParameterNames(), ", ") + ")",
			Description: fn.Description,
			Parameters:  fn.ParameterList(),
		})
	}
	return views
}

func moduleLinks(mods []*model.Module) []moduleLink {
	links := make([]moduleLink, 0, len(mods))
	for _, m := range mods {
		links = append(links, moduleLink{
			Name:        m.Name,
			Description: m.Description,
			Href:        ModuleID(m.Name) + ".html",
		})
	}
	sort.Slice(links, func(i, j int) bool { return links[i].Href < links[j].Href })
	return links
}

func jsString(s string) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
