package resolve

import (
	"strings"

	"github.com/graphfeed/graphfeed/internal/language"
)

// collectedField groups all selections sharing one response name, in query
// order.
type collectedField struct {
	ResponseName string
	Fields       []*language.Field
}

// Name returns the schema field name behind the response name.
func (cf *collectedField) Name() string {
	return cf.Fields[0].Name
}

// Selections returns the merged sub-selection of all grouped fields.
func (cf *collectedField) Selections() language.SelectionSet {
	if len(cf.Fields) == 1 {
		return cf.Fields[0].SelectionSet
	}
	var merged language.SelectionSet
	for _, f := range cf.Fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// collectFields flattens a selection set for the object type named
// typeName, resolving fragments and honoring @skip/@include. Field order
// follows the query.
func collectFields(typeName string, sel language.SelectionSet, vars map[string]any, frags language.FragmentDefinitionList) []*collectedField {
	c := &collector{typeName: typeName, vars: vars, frags: frags, index: map[string]int{}, visited: map[string]bool{}}
	c.walk(sel)
	return c.fields
}

type collector struct {
	typeName string
	vars     map[string]any
	frags    language.FragmentDefinitionList
	fields   []*collectedField
	index    map[string]int
	visited  map[string]bool
}

func (c *collector) walk(sel language.SelectionSet) {
	for _, s := range sel {
		switch v := s.(type) {
		case *language.Field:
			if !c.include(v.Directives) {
				continue
			}
			name := v.Alias
			if name == "" {
				name = v.Name
			}
			if i, ok := c.index[name]; ok {
				c.fields[i].Fields = append(c.fields[i].Fields, v)
			} else {
				c.index[name] = len(c.fields)
				c.fields = append(c.fields, &collectedField{ResponseName: name, Fields: []*language.Field{v}})
			}
		case *language.InlineFragment:
			if !c.include(v.Directives) {
				continue
			}
			if v.TypeCondition != "" && v.TypeCondition != c.typeName {
				continue
			}
			c.walk(v.SelectionSet)
		case *language.FragmentSpread:
			if !c.include(v.Directives) || c.visited[v.Name] {
				continue
			}
			frag := c.frags.ForName(v.Name)
			if frag == nil {
				continue
			}
			if frag.TypeCondition != "" && frag.TypeCondition != c.typeName {
				continue
			}
			c.visited[v.Name] = true
			c.walk(frag.SelectionSet)
		}
	}
}

// include evaluates @skip and @include against the request variables.
func (c *collector) include(directives language.DirectiveList) bool {
	if d := directives.ForName("skip"); d != nil {
		if v, ok := c.directiveIf(d); ok && v {
			return false
		}
	}
	if d := directives.ForName("include"); d != nil {
		if v, ok := c.directiveIf(d); ok && !v {
			return false
		}
	}
	return true
}

func (c *collector) directiveIf(d *language.Directive) (bool, bool) {
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false, false
	}
	val := valueFromAST(arg.Value, c.vars)
	b, ok := val.(bool)
	return b, ok
}

// trimVariablePrefix normalizes a variable reference name.
func trimVariablePrefix(name string) string {
	return strings.TrimPrefix(name, "$")
}
