package resolve

import "github.com/graphfeed/graphfeed/internal/language"

// UserShape records which subscription relations a query actually selected
// on a User-typed field, at every depth. It is extracted once per root
// field and threaded through the recursive expansion: absence means "do
// not fetch", presence with an empty sub-shape means "fetch one level,
// stop".
type UserShape struct {
	SubscribedTo Relation
	Subscribers  Relation
}

// Relation is the requested state of one subscription direction.
type Relation struct {
	Requested bool
	// Shape describes the nested User selection of the relation; nil when
	// the relation was selected without further subscription nesting.
	Shape *UserShape
}

// empty reports whether no subscription relation was requested at this
// level.
func (s *UserShape) empty() bool {
	return s == nil || (!s.SubscribedTo.Requested && !s.Subscribers.Requested)
}

// extractUserShape derives the shape from a User-typed selection set,
// resolving fragments. A relation selected several times (aliases,
// fragments) merges by union of its sub-shapes.
func extractUserShape(sel language.SelectionSet, frags language.FragmentDefinitionList) *UserShape {
	shape := &UserShape{}
	walkUserShape(sel, frags, map[string]bool{}, shape)
	return shape
}

// walkUserShape threads one visited set through every nesting level. A
// fragment is skipped only while its own expansion is still on the
// stack, which terminates cyclic spreads without blocking legitimate
// reuse of a fragment at several levels.
func walkUserShape(sel language.SelectionSet, frags language.FragmentDefinitionList, visited map[string]bool, shape *UserShape) {
	for _, s := range sel {
		switch v := s.(type) {
		case *language.Field:
			switch v.Name {
			case "userSubscribedTo":
				shape.SubscribedTo = mergeRelation(shape.SubscribedTo, v.SelectionSet, frags, visited)
			case "subscribedToUser":
				shape.Subscribers = mergeRelation(shape.Subscribers, v.SelectionSet, frags, visited)
			}
		case *language.InlineFragment:
			if v.TypeCondition == "" || v.TypeCondition == "User" {
				walkUserShape(v.SelectionSet, frags, visited, shape)
			}
		case *language.FragmentSpread:
			if visited[v.Name] {
				continue
			}
			visited[v.Name] = true
			if frag := frags.ForName(v.Name); frag != nil && (frag.TypeCondition == "" || frag.TypeCondition == "User") {
				walkUserShape(frag.SelectionSet, frags, visited, shape)
			}
			visited[v.Name] = false
		}
	}
}

func mergeRelation(rel Relation, sel language.SelectionSet, frags language.FragmentDefinitionList, visited map[string]bool) Relation {
	sub := &UserShape{}
	walkUserShape(sel, frags, visited, sub)
	if sub.empty() {
		sub = nil
	}
	if !rel.Requested {
		return Relation{Requested: true, Shape: sub}
	}
	return Relation{Requested: true, Shape: mergeShapes(rel.Shape, sub)}
}

// mergeShapes unions two shapes; either may be nil.
func mergeShapes(a, b *UserShape) *UserShape {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := &UserShape{}
	out.SubscribedTo = mergeRelations(a.SubscribedTo, b.SubscribedTo)
	out.Subscribers = mergeRelations(a.Subscribers, b.Subscribers)
	return out
}

func mergeRelations(a, b Relation) Relation {
	if !a.Requested {
		return b
	}
	if !b.Requested {
		return a
	}
	return Relation{Requested: true, Shape: mergeShapes(a.Shape, b.Shape)}
}
