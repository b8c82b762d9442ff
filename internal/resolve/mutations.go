package resolve

import (
	"context"
	"fmt"

	"github.com/graphfeed/graphfeed/internal/model"
)

// resolveMutation dispatches one root mutation field. Writes go straight
// to the store; the request's loaders are primed with created and updated
// records and evicted on deletes, so any follow-up read in the same
// operation observes the write without another fetch.
func (e *execution) resolveMutation(ctx context.Context, cf *collectedField, args map[string]any) (any, error) {
	switch cf.Name() {
	case "createUser":
		return e.createUser(ctx, cf, args)
	case "changeUser":
		return e.changeUser(ctx, cf, args)
	case "deleteUser":
		return e.deleteUser(ctx, args["id"].(string)), nil
	case "createPost":
		return e.createPost(ctx, cf, args)
	case "changePost":
		return e.changePost(ctx, cf, args)
	case "deletePost":
		return e.deletePost(ctx, args["id"].(string)), nil
	case "createProfile":
		return e.createProfile(ctx, cf, args)
	case "changeProfile":
		return e.changeProfile(ctx, cf, args)
	case "deleteProfile":
		return e.deleteProfile(ctx, args["id"].(string)), nil
	case "subscribeTo":
		return e.subscribeTo(ctx, cf, args["userId"].(string), args["authorId"].(string))
	case "unsubscribeFrom":
		return e.unsubscribeFrom(ctx, args["userId"].(string), args["authorId"].(string)), nil
	case "__typename":
		return "Mutation", nil
	}
	return nil, fmt.Errorf("unresolvable field %q on Mutation", cf.Name())
}

func (e *execution) createUser(ctx context.Context, cf *collectedField, args map[string]any) (any, error) {
	dto := args["dto"].(map[string]any)
	user, err := e.store.Users().Create(ctx, model.CreateUser{
		Name:    dto["name"].(string),
		Balance: dto["balance"].(float64),
	})
	if err != nil {
		return nil, err
	}
	e.loaders.primeUser(user)
	return e.renderOneUser(ctx, user, cf)
}

func (e *execution) changeUser(ctx context.Context, cf *collectedField, args map[string]any) (any, error) {
	dto := args["dto"].(map[string]any)
	var data model.ChangeUser
	if v, ok := dto["name"].(string); ok {
		data.Name = ptr(v)
	}
	if v, ok := dto["balance"].(float64); ok {
		data.Balance = ptr(v)
	}
	user, err := e.store.Users().Update(ctx, args["id"].(string), data)
	if err != nil {
		return nil, err
	}
	e.loaders.primeUser(user)
	return e.renderOneUser(ctx, user, cf)
}

// deleteUser reports success as a bare boolean; any failure, including a
// missing record or dangling references, shows up as false rather than
// an error.
func (e *execution) deleteUser(ctx context.Context, id string) bool {
	if err := e.store.Users().Delete(ctx, id); err != nil {
		return false
	}
	e.loaders.Users.Clear(id)
	e.loaders.ProfilesByUser.Clear(id)
	e.loaders.PostsByAuthor.Clear(id)
	return true
}

func (e *execution) createPost(ctx context.Context, cf *collectedField, args map[string]any) (any, error) {
	dto := args["dto"].(map[string]any)
	post, err := e.store.Posts().Create(ctx, model.CreatePost{
		Title:    dto["title"].(string),
		Content:  dto["content"].(string),
		AuthorID: dto["authorId"].(string),
	})
	if err != nil {
		return nil, err
	}
	e.loaders.primePost(post)
	e.loaders.PostsByAuthor.Clear(post.AuthorID)
	return e.proj.projectPost(post, cf.Selections()), nil
}

func (e *execution) changePost(ctx context.Context, cf *collectedField, args map[string]any) (any, error) {
	dto := args["dto"].(map[string]any)
	var data model.ChangePost
	if v, ok := dto["title"].(string); ok {
		data.Title = ptr(v)
	}
	if v, ok := dto["content"].(string); ok {
		data.Content = ptr(v)
	}
	post, err := e.store.Posts().Update(ctx, args["id"].(string), data)
	if err != nil {
		return nil, err
	}
	e.loaders.primePost(post)
	e.loaders.PostsByAuthor.Clear(post.AuthorID)
	return e.proj.projectPost(post, cf.Selections()), nil
}

func (e *execution) deletePost(ctx context.Context, id string) bool {
	res := e.loaders.Posts.Load(ctx, id)()
	if err := e.store.Posts().Delete(ctx, id); err != nil {
		return false
	}
	e.loaders.Posts.Clear(id)
	if res.OK {
		e.loaders.PostsByAuthor.Clear(res.Value.AuthorID)
	}
	return true
}

func (e *execution) createProfile(ctx context.Context, cf *collectedField, args map[string]any) (any, error) {
	dto := args["dto"].(map[string]any)
	profile, err := e.store.Profiles().Create(ctx, model.CreateProfile{
		IsMale:       dto["isMale"].(bool),
		YearOfBirth:  dto["yearOfBirth"].(int),
		UserID:       dto["userId"].(string),
		MemberTypeID: dto["memberTypeId"].(string),
	})
	if err != nil {
		return nil, err
	}
	e.loaders.primeProfile(profile)
	return e.renderOneProfile(ctx, profile, cf)
}

func (e *execution) changeProfile(ctx context.Context, cf *collectedField, args map[string]any) (any, error) {
	dto := args["dto"].(map[string]any)
	var data model.ChangeProfile
	if v, ok := dto["isMale"].(bool); ok {
		data.IsMale = ptr(v)
	}
	if v, ok := dto["yearOfBirth"].(int); ok {
		data.YearOfBirth = ptr(v)
	}
	if v, ok := dto["memberTypeId"].(string); ok {
		data.MemberTypeID = ptr(v)
	}
	profile, err := e.store.Profiles().Update(ctx, args["id"].(string), data)
	if err != nil {
		return nil, err
	}
	e.loaders.primeProfile(profile)
	return e.renderOneProfile(ctx, profile, cf)
}

func (e *execution) deleteProfile(ctx context.Context, id string) bool {
	res := e.loaders.Profiles.Load(ctx, id)()
	if err := e.store.Profiles().Delete(ctx, id); err != nil {
		return false
	}
	e.loaders.Profiles.Clear(id)
	if res.OK {
		e.loaders.ProfilesByUser.Clear(res.Value.UserID)
	}
	return true
}

// subscribeTo adds the edge and re-reads the subscriber so the response
// reflects the new edge lists. Both endpoints are evicted first; their
// cached edge lists are stale the moment the edge lands.
func (e *execution) subscribeTo(ctx context.Context, cf *collectedField, userID, authorID string) (any, error) {
	if err := e.store.Users().Subscribe(ctx, userID, authorID); err != nil {
		return nil, err
	}
	e.loaders.Users.Clear(userID)
	e.loaders.Users.Clear(authorID)
	res := e.loaders.Users.Load(ctx, userID)()
	if res.Err != nil {
		return nil, res.Err
	}
	if !res.OK {
		return nil, fmt.Errorf("subscriber %s vanished during subscribe", userID)
	}
	return e.renderOneUser(ctx, res.Value, cf)
}

func (e *execution) unsubscribeFrom(ctx context.Context, userID, authorID string) bool {
	if err := e.store.Users().Unsubscribe(ctx, userID, authorID); err != nil {
		return false
	}
	e.loaders.Users.Clear(userID)
	e.loaders.Users.Clear(authorID)
	return true
}

func (e *execution) renderOneUser(ctx context.Context, user *model.User, cf *collectedField) (any, error) {
	rendered, err := e.renderUsers(ctx, []*model.User{user}, cf)
	if err != nil {
		return nil, err
	}
	return rendered[0], nil
}

func (e *execution) renderOneProfile(ctx context.Context, profile *model.Profile, cf *collectedField) (any, error) {
	rendered, err := e.proj.projectProfiles(ctx, []*model.Profile{profile}, cf.Selections())
	if err != nil {
		return nil, err
	}
	return rendered[0], nil
}

func ptr[T any](v T) *T { return &v }
