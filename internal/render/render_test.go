package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/jamescalam/autodocs/internal/extract"
	"github.com/jamescalam/autodocs/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Render:
// - Module page comes first, then one page per class in insertion order
// - Page ids are lowercase with underscores; class ids keep class case
// - Every page has exactly one unlinked breadcrumb entry and it is the last
// - Non-terminal crumbs link to the dot-joined lowercase path
// - Class index links every class page
// - Optional parameters are marked with <em>name*</em>
// - Class pages only list the class's own functions
// - Rendering the same model twice is byte-identical
// - Readme and navbar list modules sorted by page id
// - Navbar labels are inserted as text nodes, never parsed as markup
// - Extracting then rendering a source file twice is byte-identical

func fixtureModule() *model.Module {
	params := model.NewParameters()
	params.Set("x", &model.Parameter{Name: "x", DType: "float", Description: "Horizontal."})
	params.Set("y", &model.Parameter{Name: "y", DType: "float", Description: "Vertical.", Optional: true})

	point := model.NewClass("Point", "A point.")
	point.Functions.Set("__init__", model.NewFunction("__init__", "Create a point.", params))

	shape := model.NewClass("Shape", "")

	m := model.NewModule("Plot Tools", "Ada", "Plotting helpers.")
	m.Classes.Set(point.Name, point)
	m.Classes.Set(shape.Name, shape)
	m.Functions.Set("origin", model.NewFunction("origin", "Return the origin.", nil))
	return m
}

func parse(t *testing.T, p Page) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	require.NoError(t, err)
	return doc
}

func TestRender_PageSet(t *testing.T) {
	t.Parallel()

	pages, err := Render(fixtureModule())
	require.NoError(t, err)

	ids := make([]string, 0, len(pages))
	for _, p := range pages {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"plot_tools", "plot_tools.Point", "plot_tools.Shape"}, ids)
	assert.Equal(t, "plot_tools.Point.html", pages[1].Filename())
}

func TestRender_BreadcrumbHasOneCurrentEntry(t *testing.T) {
	t.Parallel()

	pages, err := Render(fixtureModule())
	require.NoError(t, err)

	for _, p := range pages {
		doc := parse(t, p)
		items := doc.Find("ol.breadcrumb li")
		current := items.Filter("[aria-current=page]")
		require.Equal(t, 1, current.Length(), p.ID)
		assert.Equal(t, 0, current.Find("a").Length(), p.ID)
		assert.True(t, items.Last().Is("[aria-current=page]"), p.ID)
	}

	classPage := parse(t, pages[1])
	link := classPage.Find("ol.breadcrumb li a")
	require.Equal(t, 1, link.Length())
	href, _ := link.Attr("href")
	assert.Equal(t, "plot_tools.html", href)
	assert.Equal(t, "Plot Tools", link.Text())
}

func TestBreadcrumb_NestedPath(t *testing.T) {
	t.Parallel()

	crumbs := Breadcrumb("My Pkg", "Sub Mod", "Thing")
	require.Len(t, crumbs, 3)
	assert.Equal(t, "my_pkg.html", crumbs[0].Href)
	assert.Equal(t, "my_pkg.sub_mod.html", crumbs[1].Href)
	assert.True(t, crumbs[2].Current)
	assert.Empty(t, crumbs[2].Href)
}

func TestRender_ModulePageContent(t *testing.T) {
	t.Parallel()

	pages, err := Render(fixtureModule())
	require.NoError(t, err)
	doc := parse(t, pages[0])

	assert.Equal(t, "Plot Tools", doc.Find("h1").Text())
	assert.Equal(t, "Plotting helpers.", strings.TrimSpace(doc.Find("p.lead").Text()))

	var hrefs []string
	doc.Find("#nav-tabContent a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		hrefs = append(hrefs, href)
	})
	assert.Equal(t, []string{"plot_tools.Point.html", "plot_tools.Shape.html"}, hrefs)

	// Module page lists only free functions
	assert.Equal(t, 1, doc.Find("#functions > li").Length())
	assert.Equal(t, "origin()", doc.Find("#func_origin kbd").Text())
	assert.Equal(t, 0, doc.Find("#func_origin table").Length())
}

func TestRender_ClassPageParameters(t *testing.T) {
	t.Parallel()

	pages, err := Render(fixtureModule())
	require.NoError(t, err)
	doc := parse(t, pages[1])

	assert.Equal(t, "Point", doc.Find("h1").Text())
	assert.Equal(t, "A point.", strings.TrimSpace(doc.Find("p.lead").Text()))
	assert.Equal(t, 0, doc.Find("#classes").Length())
	assert.Equal(t, "__init__(x, y)", doc.Find("#func___init__ kbd").Text())

	rows := doc.Find("#func___init__ tbody tr")
	require.Equal(t, 2, rows.Length())
	assert.Equal(t, 0, rows.Eq(0).Find("em").Length())
	assert.Equal(t, "y*", rows.Eq(1).Find("th em").Text())
	assert.Equal(t, "float", rows.Eq(1).Find("code").Text())

	// Empty class renders without a functions list
	assert.Equal(t, 0, parse(t, pages[2]).Find("#functions").Length())
}

func TestRender_EmptyModule(t *testing.T) {
	t.Parallel()

	pages, err := Render(model.NewModule("Empty", "", ""))
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "empty", pages[0].ID)

	require.Len(t, pages[0].Breadcrumb, 1)
	assert.True(t, pages[0].Breadcrumb[0].Current)
	assert.Empty(t, pages[0].Breadcrumb[0].Href)

	doc := parse(t, pages[0])
	assert.Equal(t, 0, doc.Find("ol.breadcrumb a").Length())
}

func TestRender_EscapesContent(t *testing.T) {
	t.Parallel()

	m := model.NewModule("Esc", "", "Uses <b>tags</b> & ampersands.")
	pages, err := Render(m)
	require.NoError(t, err)

	body := string(pages[0].Body)
	assert.Contains(t, body, "Uses &lt;b&gt;tags&lt;/b&gt; &amp; ampersands.")
}

func TestRender_Idempotent(t *testing.T) {
	t.Parallel()

	first, err := Render(fixtureModule())
	require.NoError(t, err)
	second, err := Render(fixtureModule())
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Body, second[i].Body, first[i].ID)
	}
}

func TestRender_ExtractedSourceIsStable(t *testing.T) {
	t.Parallel()

	src, err := os.ReadFile(filepath.Join("..", "..", "testdata", "python", "geometry.py"))
	require.NoError(t, err)

	build := func() []Page {
		m, err := extract.Extract(string(src))
		require.NoError(t, err)
		pages, err := Render(m)
		require.NoError(t, err)
		return pages
	}

	first, second := build(), build()
	require.NotEmpty(t, first)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.True(t, bytes.Equal(first[i].Body, second[i].Body), first[i].ID)
	}
}

func TestRenderer_ReadmeAndNavbar(t *testing.T) {
	t.Parallel()

	r, err := New()
	require.NoError(t, err)

	mods := []*model.Module{
		model.NewModule("Zoo", "", "Animals."),
		model.NewModule("Alpha Beta", "", "Letters."),
	}

	readme, err := r.Readme("Project docs", mods)
	require.NoError(t, err)
	assert.Equal(t, "readme.html", readme.Filename())

	doc := parse(t, readme)
	var hrefs []string
	doc.Find("#modules a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		hrefs = append(hrefs, href)
	})
	assert.Equal(t, []string{"alpha_beta.html", "zoo.html"}, hrefs)

	js, err := r.Navbar(mods)
	require.NoError(t, err)
	out := string(js)
	assert.Contains(t, out, `{ label: "Alpha Beta", href: "alpha_beta.html" }`)
	assert.Less(t, strings.Index(out, "alpha_beta.html"), strings.Index(out, "zoo.html"))
	assert.Contains(t, out, `setAttribute('href', 'readme.html')`)
}

func TestRenderer_NavbarLabelsAreText(t *testing.T) {
	t.Parallel()

	r, err := New()
	require.NoError(t, err)

	js, err := r.Navbar([]*model.Module{model.NewModule(`<img src=x onerror="alert(1)">`, "", "")})
	require.NoError(t, err)
	out := string(js)

	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, `\u003cimg src=x onerror=\"alert(1)\"\u003e`)
	assert.Contains(t, out, "textContent = text")
	assert.NotContains(t, out, "document.write")
	assert.NotContains(t, out, "innerHTML")
}
