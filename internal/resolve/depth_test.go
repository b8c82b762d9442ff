package resolve

import (
	"testing"

	"github.com/graphfeed/graphfeed/internal/language"
)

func depthOf(t *testing.T, query string) int {
	t.Helper()
	doc, err := language.ParseQuery(query)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return operationDepth(doc.Operations[0].SelectionSet, doc.Fragments)
}

func TestOperationDepth(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  int
	}{
		{"scalars only", `{ users { id name } }`, 1},
		{"two levels", `{ users { posts { title } } }`, 2},
		{"deepest branch wins", `{
			users {
				id
				profile { memberType { discount } }
			}
		}`, 3},
		{"siblings do not add up", `{
			users { posts { title } }
			posts { id }
		}`, 2},
		{"five levels", `{
			users {
				userSubscribedTo {
					userSubscribedTo {
						userSubscribedTo {
							userSubscribedTo { id }
						}
					}
				}
			}
		}`, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := depthOf(t, tc.query); got != tc.want {
				t.Fatalf("depth = %d, want %d", got, tc.want)
			}
		})
	}
}

// Fragment spreads are transparent: they contribute their contents'
// depth without adding a level.
func TestFragmentSpreadAddsNoLevel(t *testing.T) {
	got := depthOf(t, `
		query {
			users { ...deep }
		}
		fragment deep on User {
			userSubscribedTo { id }
		}
	`)
	if got != 2 {
		t.Fatalf("depth = %d, want 2", got)
	}
}

func TestInlineFragmentAddsNoLevel(t *testing.T) {
	got := depthOf(t, `{
		users {
			... on User { posts { title } }
		}
	}`)
	if got != 2 {
		t.Fatalf("depth = %d, want 2", got)
	}
}

// A fragment that spreads itself must not hang the measurement.
func TestCyclicFragmentTerminates(t *testing.T) {
	got := depthOf(t, `
		query {
			users { ...loop }
		}
		fragment loop on User {
			userSubscribedTo { ...loop }
		}
	`)
	if got < 1 {
		t.Fatalf("depth = %d", got)
	}
}
