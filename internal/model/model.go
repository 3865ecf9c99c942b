// Package model holds the documentation model produced by extraction and
// consumed by rendering: one module containing classes and free functions,
// each function carrying its documented parameters.
//
// Every collection is an insertion-ordered map keyed by name. Setting an
// existing key keeps the original position and replaces the value, so a
// later duplicate definition wins without reordering the output.
package model

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Module is the record for one source file.
type Module struct {
	Name        string                                    `json:"name"`
	Developers  string                                    `json:"developers"`
	Description string                                    `json:"description"`
	Classes     *orderedmap.OrderedMap[string, *Class]    `json:"classes"`
	Functions   *orderedmap.OrderedMap[string, *Function] `json:"functions"`
}

// Class is a top-level class and the documented functions in its body.
type Class struct {
	Name        string                                    `json:"name"`
	Description string                                    `json:"description"`
	Functions   *orderedmap.OrderedMap[string, *Function] `json:"functions"`
}

// Function is a documented function or method.
type Function struct {
	Name        string                                     `json:"name"`
	Description string                                     `json:"description"`
	Parameters  *orderedmap.OrderedMap[string, *Parameter] `json:"parameters"`
}

// Parameter is one entry of a function's Parameters section.
type Parameter struct {
	Name        string `json:"-"`
	DType       string `json:"dtype"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
}

// NewModule creates an empty module record.
func NewModule(name, developers, description string) *Module {
	return &Module{
		Name:        name,
		Developers:  developers,
		Description: description,
		Classes:     orderedmap.New[string, *Class](),
		Functions:   NewFunctions(),
	}
}

// NewClass creates an empty class record.
func NewClass(name, description string) *Class {
	return &Class{
		Name:        name,
		Description: description,
		Functions:   NewFunctions(),
	}
}

// NewFunction creates a function record. A nil params map is replaced with
// an empty one.
func NewFunction(name, description string, params *orderedmap.OrderedMap[string, *Parameter]) *Function {
	if params == nil {
		params = NewParameters()
	}
	return &Function{
		Name:        name,
		Description: description,
		Parameters:  params,
	}
}

// NewFunctions returns an empty ordered function map.
func NewFunctions() *orderedmap.OrderedMap[string, *Function] {
	return orderedmap.New[string, *Function]()
}

// NewParameters returns an empty ordered parameter map.
func NewParameters() *orderedmap.OrderedMap[string, *Parameter] {
	return orderedmap.New[string, *Parameter]()
}

// ClassList returns the classes in insertion order.
func (m *Module) ClassList() []*Class {
	return values(m.Classes)
}

// FunctionList returns the free functions in insertion order.
func (m *Module) FunctionList() []*Function {
	return values(m.Functions)
}

// FunctionList returns the class's functions in insertion order.
func (c *Class) FunctionList() []*Function {
	return values(c.Functions)
}

// ParameterList returns the parameters in declaration order.
func (f *Function) ParameterList() []*Parameter {
	return values(f.Parameters)
}

// ParameterNames returns the parameter names in declaration order.
func (f *Function) ParameterNames() []string {
	names := make([]string, 0, f.Parameters.Len())
	for pair := f.Parameters.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

func values[V any](om *orderedmap.OrderedMap[string, V]) []V {
	if om == nil {
		return nil
	}
	out := make([]V, 0, om.Len())
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}
