package resolve

import "github.com/graphfeed/graphfeed/internal/language"

// DefaultMaxDepth is the selection nesting ceiling enforced before any
// resolution begins.
const DefaultMaxDepth = 5

// operationDepth computes the syntactic nesting depth of a selection set.
// A field without a sub-selection contributes 0; fragment spreads and
// inline fragments contribute the depth of their contents without adding a
// level of their own.
func operationDepth(sel language.SelectionSet, frags language.FragmentDefinitionList) int {
	return selectionDepth(sel, frags, map[string]bool{})
}

func selectionDepth(sel language.SelectionSet, frags language.FragmentDefinitionList, visited map[string]bool) int {
	max := 0
	for _, s := range sel {
		d := 0
		switch v := s.(type) {
		case *language.Field:
			if len(v.SelectionSet) > 0 {
				d = 1 + selectionDepth(v.SelectionSet, frags, visited)
			}
		case *language.InlineFragment:
			d = selectionDepth(v.SelectionSet, frags, visited)
		case *language.FragmentSpread:
			if visited[v.Name] {
				continue
			}
			visited[v.Name] = true
			if frag := frags.ForName(v.Name); frag != nil {
				d = selectionDepth(frag.SelectionSet, frags, visited)
			}
			visited[v.Name] = false
		}
		if d > max {
			max = d
		}
	}
	return max
}
