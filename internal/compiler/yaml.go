package compiler

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/quill/internal/ir"
)

// topLevelKeys are the keys a YAML grammar document may use.
var topLevelKeys = []string{"name", "options", "rule"}

// ParseYAML parses a YAML grammar. The document has the same shape as the CUE
// form: optional name and options, and a rule mapping keyed by rule name.
// file is used only for error positions.
func ParseYAML(file string, data []byte) (*ir.Grammar, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &CompileError{Field: "yaml", Message: err.Error(), File: file}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &CompileError{Field: "rule", Message: "empty grammar", File: file}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, yamlError(file, root, "grammar", "top level must be a mapping")
	}

	g := &ir.Grammar{}
	var rulesNode *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "name":
			if err := val.Decode(&g.Name); err != nil {
				return nil, yamlError(file, val, "name", err.Error())
			}
		case "options":
			opts, err := parseYAMLOptions(file, val)
			if err != nil {
				return nil, err
			}
			g.Options = opts
		case "rule":
			rulesNode = val
		default:
			return nil, yamlError(file, key, key.Value, checkKeys([]string{key.Value}, topLevelKeys))
		}
	}

	if rulesNode == nil || rulesNode.Kind != yaml.MappingNode || len(rulesNode.Content) == 0 {
		line := root
		if rulesNode != nil {
			line = rulesNode
		}
		return nil, yamlError(file, line, "rule", "at least one rule is required")
	}

	for i := 0; i+1 < len(rulesNode.Content); i += 2 {
		def, err := parseYAMLRule(file, rulesNode.Content[i].Value, rulesNode.Content[i+1])
		if err != nil {
			return nil, err
		}
		g.Rules = append(g.Rules, def)
	}
	return g, nil
}

func parseYAMLOptions(file string, n *yaml.Node) (ir.Options, error) {
	if msg := checkKeys(mappingKeys(n), optionKeys); msg != "" {
		return ir.Options{}, yamlError(file, n, "options", msg)
	}
	var form optionsForm
	if err := n.Decode(&form); err != nil {
		return ir.Options{}, yamlError(file, n, "options", err.Error())
	}
	return form.toOptions(), nil
}

func parseYAMLRule(file, name string, n *yaml.Node) (ir.RuleDef, error) {
	field := fmt.Sprintf("rule.%s", name)

	switch n.Kind {
	case yaml.SequenceNode:
		values := []string{}
		if err := n.Decode(&values); err != nil {
			return ir.RuleDef{}, yamlError(file, n, field, err.Error())
		}
		return ir.RuleDef{Name: name, Kind: ir.KindStatic, Values: values, Line: n.Line}, nil

	case yaml.ScalarNode:
		return ir.RuleDef{Name: name, Kind: ir.KindTemplate, Template: n.Value, Line: n.Line}, nil

	case yaml.MappingNode:
		if msg := checkKeys(mappingKeys(n), ruleFormKeys); msg != "" {
			return ir.RuleDef{}, yamlError(file, n, field, msg)
		}
		var form ruleForm
		if err := n.Decode(&form); err != nil {
			return ir.RuleDef{}, yamlError(file, n, field, err.Error())
		}
		def, err := form.toRuleDef(name)
		if err != nil {
			return ir.RuleDef{}, yamlError(file, n, field, err.Error())
		}
		def.Line = n.Line
		return def, nil
	}

	return ir.RuleDef{}, yamlError(file, n, field, "rule must be a list, a string or a mapping")
}

func mappingKeys(n *yaml.Node) []string {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
	}
	return keys
}

func yamlError(file string, n *yaml.Node, field, msg string) *CompileError {
	return &CompileError{Field: field, Message: msg, File: file, Line: n.Line}
}
