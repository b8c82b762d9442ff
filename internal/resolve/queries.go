package resolve

import (
	"context"
	"fmt"

	"github.com/graphfeed/graphfeed/internal/model"
)

// resolveQuery dispatches one root query field. args holds the coerced
// argument values of the field.
func (e *execution) resolveQuery(ctx context.Context, cf *collectedField, args map[string]any) (any, error) {
	switch cf.Name() {
	case "users":
		return e.queryUsers(ctx, cf)
	case "user":
		return e.queryUser(ctx, cf, args["id"].(string))
	case "posts":
		return e.queryPosts(ctx, cf)
	case "post":
		return e.queryPost(ctx, cf, args["id"].(string))
	case "profiles":
		return e.queryProfiles(ctx, cf)
	case "profile":
		return e.queryProfile(ctx, cf, args["id"].(string))
	case "memberTypes":
		return e.queryMemberTypes(ctx, cf)
	case "memberType":
		return e.queryMemberType(ctx, cf, args["id"].(string))
	case "__typename":
		return "Query", nil
	}
	return nil, fmt.Errorf("unresolvable field %q on Query", cf.Name())
}

// renderUsers expands the subscription relations the selection asks for
// and projects the result. Shared by every User-returning field.
func (e *execution) renderUsers(ctx context.Context, users []*model.User, cf *collectedField) ([]map[string]any, error) {
	sel := cf.Selections()
	shape := extractUserShape(sel, e.frags)
	nodes, err := expandSubscriptions(ctx, e.loaders, users, shape)
	if err != nil {
		return nil, err
	}
	return e.proj.projectUsers(ctx, nodes, sel)
}

func (e *execution) queryUsers(ctx context.Context, cf *collectedField) (any, error) {
	users, err := e.store.Users().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		e.loaders.primeUser(u)
	}
	return e.renderUsers(ctx, users, cf)
}

func (e *execution) queryUser(ctx context.Context, cf *collectedField, id string) (any, error) {
	res := e.loaders.Users.Load(ctx, id)()
	if res.Err != nil {
		return nil, res.Err
	}
	if !res.OK {
		return nil, nil
	}
	rendered, err := e.renderUsers(ctx, []*model.User{res.Value}, cf)
	if err != nil {
		return nil, err
	}
	return rendered[0], nil
}

func (e *execution) queryPosts(ctx context.Context, cf *collectedField) (any, error) {
	posts, err := e.store.Posts().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		e.loaders.primePost(p)
	}
	return e.proj.projectPostList(posts, cf.Selections()), nil
}

func (e *execution) queryPost(ctx context.Context, cf *collectedField, id string) (any, error) {
	res := e.loaders.Posts.Load(ctx, id)()
	if res.Err != nil {
		return nil, res.Err
	}
	if !res.OK {
		return nil, nil
	}
	return e.proj.projectPost(res.Value, cf.Selections()), nil
}

func (e *execution) queryProfiles(ctx context.Context, cf *collectedField) (any, error) {
	profiles, err := e.store.Profiles().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		e.loaders.primeProfile(p)
	}
	return e.proj.projectProfiles(ctx, profiles, cf.Selections())
}

func (e *execution) queryProfile(ctx context.Context, cf *collectedField, id string) (any, error) {
	res := e.loaders.Profiles.Load(ctx, id)()
	if res.Err != nil {
		return nil, res.Err
	}
	if !res.OK {
		return nil, nil
	}
	rendered, err := e.proj.projectProfiles(ctx, []*model.Profile{res.Value}, cf.Selections())
	if err != nil {
		return nil, err
	}
	return rendered[0], nil
}

func (e *execution) queryMemberTypes(ctx context.Context, cf *collectedField) (any, error) {
	mts, err := e.store.MemberTypes().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, len(mts))
	for i, mt := range mts {
		out[i] = e.proj.projectMemberType(mt, cf.Selections())
	}
	return out, nil
}

func (e *execution) queryMemberType(ctx context.Context, cf *collectedField, id string) (any, error) {
	mts, err := e.store.MemberTypes().FindByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(mts) == 0 {
		return nil, nil
	}
	return e.proj.projectMemberType(mts[0], cf.Selections()), nil
}
