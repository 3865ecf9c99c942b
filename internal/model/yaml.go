package model

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalYAML emits the module as an ordered YAML mapping.
func (m *Module) MarshalYAML() (interface{}, error) {
	classes := mappingNode()
	for _, c := range m.ClassList() {
		appendPair(classes, c.Name, classNode(c))
	}

	root := mappingNode()
	appendPair(root, "name", scalarNode(m.Name))
	appendPair(root, "developers", scalarNode(m.Developers))
	appendPair(root, "description", scalarNode(m.Description))
	appendPair(root, "classes", classes)
	appendPair(root, "functions", functionsNode(m.FunctionList()))
	return root, nil
}

func classNode(c *Class) *yaml.Node {
	n := mappingNode()
	appendPair(n, "description", scalarNode(c.Description))
	appendPair(n, "functions", functionsNode(c.FunctionList()))
	return n
}

func functionsNode(funcs []*Function) *yaml.Node {
	n := mappingNode()
	for _, f := range funcs {
		params := mappingNode()
		for _, p := range f.ParameterList() {
			pn := mappingNode()
			appendPair(pn, "dtype", scalarNode(p.DType))
			appendPair(pn, "description", scalarNode(p.Description))
			appendPair(pn, "optional", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(p.Optional)})
			appendPair(params, p.Name, pn)
		}

		fn := mappingNode()
		appendPair(fn, "description", scalarNode(f.Description))
		appendPair(fn, "parameters", params)
		appendPair(n, f.Name, fn)
	}
	return n
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func appendPair(n *yaml.Node, key string, value *yaml.Node) {
	n.Content = append(n.Content, scalarNode(key), value)
}
