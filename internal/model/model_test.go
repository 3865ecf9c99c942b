package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleModule() *Module {
	params := NewParameters()
	params.Set("zeta", &Parameter{Name: "zeta", DType: "int", Description: "Last letter."})
	params.Set("alpha", &Parameter{Name: "alpha", DType: "str", Description: "First letter.", Optional: true})

	cls := NewClass("Widget", "A widget.")
	cls.Functions.Set("render", NewFunction("render", "Draw it.", nil))

	m := NewModule("Sample Module", "Ada", "Sample.")
	m.Classes.Set(cls.Name, cls)
	m.Functions.Set("build", NewFunction("build", "Build things.", params))
	return m
}

func TestModule_ListsPreserveInsertionOrder(t *testing.T) {
	t.Parallel()

	m := sampleModule()
	fn, ok := m.Functions.Get("build")
	require.True(t, ok)

	assert.Equal(t, []string{"zeta", "alpha"}, fn.ParameterNames())
	require.Len(t, fn.ParameterList(), 2)
	assert.True(t, fn.ParameterList()[1].Optional)
	require.Len(t, m.ClassList(), 1)
	assert.Equal(t, "render", m.ClassList()[0].FunctionList()[0].Name)
}

func TestNewFunction_NilParameters(t *testing.T) {
	t.Parallel()

	fn := NewFunction("f", "", nil)
	require.NotNil(t, fn.Parameters)
	assert.Empty(t, fn.ParameterNames())
}

func TestModule_MarshalJSONKeepsOrder(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(sampleModule())
	require.NoError(t, err)

	out := string(data)
	assert.Less(t, strings.Index(out, `"zeta"`), strings.Index(out, `"alpha"`))
	assert.Contains(t, out, `"optional":true`)
	assert.Contains(t, out, `"Widget"`)
}

func TestModule_MarshalYAMLKeepsOrder(t *testing.T) {
	t.Parallel()

	data, err := yaml.Marshal(sampleModule())
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "name: Sample Module")
	assert.Contains(t, out, "optional: true")
	assert.Less(t, strings.Index(out, "zeta:"), strings.Index(out, "alpha:"))
	assert.Less(t, strings.Index(out, "classes:"), strings.Index(out, "functions:"))
}
