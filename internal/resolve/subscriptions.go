package resolve

import (
	"context"

	"github.com/graphfeed/graphfeed/internal/loader"
	"github.com/graphfeed/graphfeed/internal/model"
)

// resolvedUser is a user together with its expanded subscription edges.
// Expansion always produces a finite tree: depth is bounded by the
// requested shape, never by the stored graph, so cycles in the data are
// harmless.
type resolvedUser struct {
	user         *model.User
	subscribedTo []*resolvedUser
	subscribers  []*resolvedUser
}

type levelNode struct {
	node  *resolvedUser
	shape *UserShape
}

// expandSubscriptions walks the subscription graph level by level. All
// edge targets of one level are enqueued before any thunk is forced, so
// the whole level resolves through a single user batch regardless of
// how many parents or directions feed it.
func expandSubscriptions(ctx context.Context, l *Loaders, users []*model.User, shape *UserShape) ([]*resolvedUser, error) {
	nodes := make([]*resolvedUser, len(users))
	level := make([]levelNode, 0, len(users))
	for i, u := range users {
		nodes[i] = &resolvedUser{user: u}
		level = append(level, levelNode{node: nodes[i], shape: shape})
	}
	for len(level) > 0 {
		next, err := expandLevel(ctx, l, level)
		if err != nil {
			return nil, err
		}
		level = next
	}
	return nodes, nil
}

func expandLevel(ctx context.Context, l *Loaders, level []levelNode) ([]levelNode, error) {
	type pending struct {
		ln    levelNode
		sub   bool
		thunk loader.ThunkMany[*model.User]
	}
	var work []pending
	for _, ln := range level {
		if ln.shape == nil || ln.shape.empty() {
			continue
		}
		if ln.shape.SubscribedTo.Requested {
			work = append(work, pending{ln, true, l.Users.LoadMany(ctx, ln.node.user.SubscribedToIDs)})
		}
		if ln.shape.Subscribers.Requested {
			work = append(work, pending{ln, false, l.Users.LoadMany(ctx, ln.node.user.SubscriberIDs)})
		}
	}
	var next []levelNode
	for _, w := range work {
		var childShape *UserShape
		if w.sub {
			childShape = w.ln.shape.SubscribedTo.Shape
		} else {
			childShape = w.ln.shape.Subscribers.Shape
		}
		results := w.thunk()
		children := make([]*resolvedUser, 0, len(results))
		for _, res := range results {
			if res.Err != nil {
				return nil, res.Err
			}
			if !res.OK {
				// Edge to a vanished user; drop it rather than
				// surfacing a hole in the list.
				continue
			}
			child := &resolvedUser{user: res.Value}
			children = append(children, child)
			if childShape != nil && !childShape.empty() {
				next = append(next, levelNode{node: child, shape: childShape})
			}
		}
		if w.sub {
			w.ln.node.subscribedTo = children
		} else {
			w.ln.node.subscribers = children
		}
	}
	return next, nil
}
