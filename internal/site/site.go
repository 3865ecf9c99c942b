// Package site checks the link structure of a generated documentation set.
//
// Pages are vertices and local .html links are directed edges. Validate
// reports links pointing at pages that were never generated and pages that
// cannot be reached from the entry page.
package site

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dominikbraun/graph"
	"github.com/jamescalam/autodocs/internal/render"
)

// Node is one page in the site graph.
type Node struct {
	ID    string
	Title string
}

// Link is a directed reference between two page ids.
type Link struct {
	From string
	To   string
}

// Report is the result of Validate.
type Report struct {
	Pages       int
	Links       int
	Broken      []Link
	Unreachable []string
}

// OK reports whether the site has no broken links and no unreachable pages.
func (r *Report) OK() bool {
	return len(r.Broken) == 0 && len(r.Unreachable) == 0
}

// Graph collects pages and the links between them.
type Graph struct {
	g     graph.Graph[string, *Node]
	links []Link
}

// New creates an empty site graph.
func New() *Graph {
	return &Graph{
		g: graph.New(func(n *Node) string { return n.ID }, graph.Directed()),
	}
}

// AddPage registers a page and records every local link in its body.
func (s *Graph) AddPage(p render.Page) error {
	if err := s.g.AddVertex(&Node{ID: p.ID, Title: p.Title}); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return fmt.Errorf("failed to add page %s: %w", p.ID, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return fmt.Errorf("failed to parse page %s: %w", p.ID, err)
	}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if id, ok := pageID(href); ok {
			s.AddLink(p.ID, id)
		}
	})
	return nil
}

// AddLink records a link that does not appear in a page body, such as the
// navbar entries injected by script.
func (s *Graph) AddLink(from, to string) {
	s.links = append(s.links, Link{From: from, To: to})
}

// Validate resolves recorded links and walks the graph from root. An empty
// root skips the reachability check.
func (s *Graph) Validate(root string) (*Report, error) {
	report := &Report{}

	order, err := s.g.Order()
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}
	report.Pages = order

	for _, l := range s.links {
		if _, err := s.g.Vertex(l.To); err != nil {
			report.Broken = append(report.Broken, l)
			continue
		}
		if l.From == l.To {
			continue
		}
		if err := s.g.AddEdge(l.From, l.To); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return nil, fmt.Errorf("failed to add link %s -> %s: %w", l.From, l.To, err)
		}
	}

	size, err := s.g.Size()
	if err != nil {
		return nil, fmt.Errorf("failed to count links: %w", err)
	}
	report.Links = size

	if root == "" {
		return report, nil
	}
	if _, err := s.g.Vertex(root); err != nil {
		return nil, fmt.Errorf("entry page %s not found: %w", root, err)
	}

	visited := map[string]bool{}
	if err := graph.BFS(s.g, root, func(id string) bool {
		visited[id] = true
		return false
	}); err != nil {
		return nil, fmt.Errorf("failed to walk site: %w", err)
	}

	adjacency, err := s.g.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("failed to read site graph: %w", err)
	}
	for id := range adjacency {
		if !visited[id] {
			report.Unreachable = append(report.Unreachable, id)
		}
	}
	sort.Strings(report.Unreachable)

	return report, nil
}

func pageID(href string) (string, bool) {
	if strings.Contains(href, "://") || strings.HasPrefix(href, "#") {
		return "", false
	}
	if i := strings.IndexAny(href, "#?"); i >= 0 {
		href = href[:i]
	}
	if !strings.HasSuffix(href, ".html") || strings.Contains(href, "/") {
		return "", false
	}
	return strings.TrimSuffix(href, ".html"), true
}
