package search

import (
	"context"
	"testing"

	"github.com/jamescalam/autodocs/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Index:
// - Entries flattens a module into module, class and function entries with page links
// - Keyword search finds functions through parameter descriptions
// - Kind filter restricts results
// - Field-scoped queries work on name
// - An empty index returns no results

func geometry() *model.Module {
	params := model.NewParameters()
	params.Set("squared", &model.Parameter{Name: "squared", DType: "bool", Description: "Return the squared distance.", Optional: true})

	point := model.NewClass("Point", "A point in the plane.")
	point.Functions.Set("distance", model.NewFunction("distance", "Distance to another point.", params))

	m := model.NewModule("Geometry", "Ada", "Shapes and points.")
	m.Classes.Set(point.Name, point)
	m.Functions.Set("area", model.NewFunction("area", "Area of a polygon.", nil))
	return m
}

func newIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })
	require.NoError(t, ix.Add(context.Background(), geometry()))
	return ix
}

func TestEntries(t *testing.T) {
	t.Parallel()

	entries := Entries(geometry())
	require.Len(t, entries, 4)

	assert.Equal(t, KindModule, entries[0].Kind)
	assert.Equal(t, "geometry.html", entries[0].Page)
	assert.Equal(t, "geometry.Point.html", entries[1].Page)
	assert.Equal(t, "Geometry.Point.distance", entries[2].Path)
	assert.Equal(t, "geometry.Point.html#func_distance", entries[2].Page)
	assert.Contains(t, entries[2].Text, "squared (bool): Return the squared distance.")
	assert.Equal(t, "geometry.html#func_area", entries[3].Page)
}

func TestIndex_Search(t *testing.T) {
	t.Parallel()

	ix := newIndex(t)
	count, err := ix.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	results, err := ix.Search(context.Background(), "squared", nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "distance", results[0].Entry.Name)
	assert.NotEmpty(t, results[0].Highlights)
}

func TestIndex_SearchKindFilter(t *testing.T) {
	t.Parallel()

	ix := newIndex(t)
	results, err := ix.Search(context.Background(), "point", &Options{Kind: KindClass})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Point", results[0].Entry.Name)
}

func TestIndex_SearchByName(t *testing.T) {
	t.Parallel()

	ix := newIndex(t)
	results, err := ix.Search(context.Background(), "name:area", &Options{Limit: 5})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, KindFunction, results[0].Entry.Kind)
	assert.Equal(t, "Geometry", results[0].Entry.Owner)
}

func TestIndex_Empty(t *testing.T) {
	t.Parallel()

	ix, err := New()
	require.NoError(t, err)
	defer ix.Close()

	results, err := ix.Search(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
