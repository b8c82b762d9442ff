package resolve

import (
	"testing"

	"github.com/graphfeed/graphfeed/internal/language"
)

func userSelection(t *testing.T, query string) (language.SelectionSet, language.FragmentDefinitionList) {
	t.Helper()
	doc, err := language.ParseQuery(query)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	root := doc.Operations[0].SelectionSet
	field := root[0].(*language.Field)
	return field.SelectionSet, doc.Fragments
}

func TestShapeEmptyWithoutRelations(t *testing.T) {
	sel, frags := userSelection(t, `{ users { id name balance posts { title } } }`)
	shape := extractUserShape(sel, frags)
	if !shape.empty() {
		t.Fatalf("shape = %+v, want empty", shape)
	}
}

func TestShapeSingleDirection(t *testing.T) {
	sel, frags := userSelection(t, `{ users { userSubscribedTo { id } } }`)
	shape := extractUserShape(sel, frags)
	if !shape.SubscribedTo.Requested || shape.Subscribers.Requested {
		t.Fatalf("shape = %+v", shape)
	}
	if shape.SubscribedTo.Shape != nil {
		t.Fatalf("sub-shape = %+v, want nil for a scalar-only selection", shape.SubscribedTo.Shape)
	}
}

func TestShapeNested(t *testing.T) {
	sel, frags := userSelection(t, `{
		users {
			userSubscribedTo {
				subscribedToUser { id }
			}
		}
	}`)
	shape := extractUserShape(sel, frags)
	sub := shape.SubscribedTo.Shape
	if sub == nil || !sub.Subscribers.Requested {
		t.Fatalf("nested shape = %+v", sub)
	}
	if sub.Subscribers.Shape != nil {
		t.Fatalf("leaf shape = %+v, want nil", sub.Subscribers.Shape)
	}
}

func TestShapeThroughFragments(t *testing.T) {
	sel, frags := userSelection(t, `
		query {
			users { ...a ...b }
		}
		fragment a on User { userSubscribedTo { id } }
		fragment b on User { subscribedToUser { id } }
	`)
	shape := extractUserShape(sel, frags)
	if !shape.SubscribedTo.Requested || !shape.Subscribers.Requested {
		t.Fatalf("shape = %+v", shape)
	}
}

func TestShapeThroughInlineFragment(t *testing.T) {
	sel, frags := userSelection(t, `{
		users {
			... on User { userSubscribedTo { id } }
		}
	}`)
	shape := extractUserShape(sel, frags)
	if !shape.SubscribedTo.Requested {
		t.Fatalf("shape = %+v", shape)
	}
}

// The same relation selected twice merges by union of sub-shapes.
func TestShapeMergesDuplicateSelections(t *testing.T) {
	sel, frags := userSelection(t, `{
		users {
			userSubscribedTo { id }
			userSubscribedTo { userSubscribedTo { id } }
		}
	}`)
	shape := extractUserShape(sel, frags)
	sub := shape.SubscribedTo.Shape
	if sub == nil || !sub.SubscribedTo.Requested {
		t.Fatalf("merged shape = %+v", shape)
	}
}

func TestShapeIgnoresRecursiveFragmentCycles(t *testing.T) {
	// Cyclic fragments are invalid GraphQL; extraction must still
	// terminate on them.
	sel, frags := userSelection(t, `
		query {
			users { ...loop }
		}
		fragment loop on User { userSubscribedTo { ...loop } }
	`)
	shape := extractUserShape(sel, frags)
	if !shape.SubscribedTo.Requested {
		t.Fatalf("shape = %+v", shape)
	}
}
