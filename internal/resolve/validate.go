package resolve

import (
	"fmt"

	"github.com/graphfeed/graphfeed/internal/language"
)

// validateSelections checks an operation's full selection tree against the
// schema before any resolution: unknown fields, unknown fragments, and
// selections on leaf types are all reported up front so a failing query
// costs zero storage calls.
func validateSelections(schema *language.Schema, def *language.Definition, sel language.SelectionSet, frags language.FragmentDefinitionList) []Error {
	v := &validator{schema: schema, frags: frags, visited: map[string]bool{}}
	v.selectionSet(def, sel)
	return v.errs
}

type validator struct {
	schema  *language.Schema
	frags   language.FragmentDefinitionList
	visited map[string]bool
	errs    []Error
}

func (v *validator) selectionSet(def *language.Definition, sel language.SelectionSet) {
	for _, s := range sel {
		switch sl := s.(type) {
		case *language.Field:
			v.field(def, sl)
		case *language.InlineFragment:
			v.fragmentTarget(def, sl.TypeCondition, sl.SelectionSet)
		case *language.FragmentSpread:
			if v.visited[sl.Name] {
				continue
			}
			v.visited[sl.Name] = true
			frag := v.frags.ForName(sl.Name)
			if frag == nil {
				v.errs = append(v.errs, Error{Message: fmt.Sprintf("Unknown fragment '%s'", sl.Name)})
				continue
			}
			v.fragmentTarget(def, frag.TypeCondition, frag.SelectionSet)
		}
	}
}

func (v *validator) fragmentTarget(parent *language.Definition, typeCondition string, sel language.SelectionSet) {
	def := parent
	if typeCondition != "" {
		def = v.schema.Types[typeCondition]
		if def == nil {
			v.errs = append(v.errs, Error{Message: fmt.Sprintf("Unknown type '%s' in fragment condition", typeCondition)})
			return
		}
	}
	v.selectionSet(def, sel)
}

func (v *validator) field(def *language.Definition, f *language.Field) {
	if f.Name == "__typename" {
		return
	}
	fd := def.Fields.ForName(f.Name)
	if fd == nil {
		v.errs = append(v.errs, Error{Message: fmt.Sprintf("Cannot query field '%s' on type '%s'", f.Name, def.Name)})
		return
	}
	typeDef := v.schema.Types[fd.Type.Name()]
	if typeDef == nil {
		return
	}
	if typeDef.Kind == language.Object {
		if len(f.SelectionSet) == 0 {
			v.errs = append(v.errs, Error{Message: fmt.Sprintf("Field '%s' of type '%s' must have a selection of subfields", f.Name, fd.Type.String())})
			return
		}
		v.selectionSet(typeDef, f.SelectionSet)
		return
	}
	if len(f.SelectionSet) > 0 {
		v.errs = append(v.errs, Error{Message: fmt.Sprintf("Field '%s' must not have a selection since type '%s' has no subfields", f.Name, fd.Type.String())})
	}
}
