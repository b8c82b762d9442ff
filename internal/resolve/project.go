package resolve

import (
	"context"

	"github.com/graphfeed/graphfeed/internal/language"

	"github.com/graphfeed/graphfeed/internal/loader"
	"github.com/graphfeed/graphfeed/internal/model"
	"github.com/graphfeed/graphfeed/internal/store"
)

// projector turns resolved values into response maps. It works in two
// phases per sibling list: first enqueue every load the list needs, then
// force the thunks, so one level of the response never costs more than
// one batch per kind. Nested user lists are flattened across their
// parents before recursing for the same reason.
type projector struct {
	loaders *Loaders
	store   store.Store
	vars    map[string]any
	frags   language.FragmentDefinitionList
}

// projectUsers renders a sibling list of expanded users against one
// shared selection set.
func (p *projector) projectUsers(ctx context.Context, nodes []*resolvedUser, sel language.SelectionSet) ([]map[string]any, error) {
	fields := collectFields("User", sel, p.vars, p.frags)
	needProfile := false
	needPosts := false
	for _, cf := range fields {
		switch cf.Name() {
		case "profile":
			needProfile = true
		case "posts":
			needPosts = true
		}
	}

	profThunks := make([]loader.Thunk[*model.Profile], len(nodes))
	postThunks := make([]loader.Thunk[[]*model.Post], len(nodes))
	for i, n := range nodes {
		if needProfile {
			profThunks[i] = p.loaders.ProfilesByUser.Load(ctx, n.user.ID)
		}
		if needPosts {
			postThunks[i] = p.loaders.PostsByAuthor.Load(ctx, n.user.ID)
		}
	}

	profiles := make([]*model.Profile, len(nodes))
	posts := make([][]*model.Post, len(nodes))
	for i := range nodes {
		if needProfile {
			res := profThunks[i]()
			if res.Err != nil {
				return nil, res.Err
			}
			if res.OK {
				profiles[i] = res.Value
			}
		}
		if needPosts {
			res := postThunks[i]()
			if res.Err != nil {
				return nil, res.Err
			}
			if res.OK {
				posts[i] = res.Value
			}
		}
	}

	// Aliased selections of the same field carry their own sub-selections,
	// so each response name is projected separately over the shared data.
	profileMaps := map[string][]map[string]any{}
	nestedMaps := map[string][][]map[string]any{}
	for _, cf := range fields {
		switch cf.Name() {
		case "profile":
			maps, err := p.projectProfiles(ctx, profiles, cf.Selections())
			if err != nil {
				return nil, err
			}
			profileMaps[cf.ResponseName] = maps
		case "userSubscribedTo":
			maps, err := p.projectNestedUsers(ctx, nodes, cf.Selections(), func(n *resolvedUser) []*resolvedUser { return n.subscribedTo })
			if err != nil {
				return nil, err
			}
			nestedMaps[cf.ResponseName] = maps
		case "subscribedToUser":
			maps, err := p.projectNestedUsers(ctx, nodes, cf.Selections(), func(n *resolvedUser) []*resolvedUser { return n.subscribers })
			if err != nil {
				return nil, err
			}
			nestedMaps[cf.ResponseName] = maps
		}
	}

	out := make([]map[string]any, len(nodes))
	for i, n := range nodes {
		m := make(map[string]any, len(fields))
		for _, cf := range fields {
			switch cf.Name() {
			case "__typename":
				m[cf.ResponseName] = "User"
			case "id":
				m[cf.ResponseName] = n.user.ID
			case "name":
				m[cf.ResponseName] = n.user.Name
			case "balance":
				m[cf.ResponseName] = n.user.Balance
			case "profile":
				if pm := profileMaps[cf.ResponseName][i]; pm == nil {
					m[cf.ResponseName] = nil
				} else {
					m[cf.ResponseName] = pm
				}
			case "posts":
				m[cf.ResponseName] = p.projectPostList(posts[i], cf.Selections())
			case "userSubscribedTo", "subscribedToUser":
				m[cf.ResponseName] = nestedMaps[cf.ResponseName][i]
			}
		}
		out[i] = m
	}
	return out, nil
}

// projectNestedUsers flattens the chosen relation of every parent into a
// single list, projects it once, and slices the rendered maps back to
// their parents.
func (p *projector) projectNestedUsers(ctx context.Context, nodes []*resolvedUser, sel language.SelectionSet, pick func(*resolvedUser) []*resolvedUser) ([][]map[string]any, error) {
	if sel == nil {
		return make([][]map[string]any, len(nodes)), nil
	}
	var flat []*resolvedUser
	counts := make([]int, len(nodes))
	for i, n := range nodes {
		children := pick(n)
		counts[i] = len(children)
		flat = append(flat, children...)
	}
	rendered, err := p.projectUsers(ctx, flat, sel)
	if err != nil {
		return nil, err
	}
	out := make([][]map[string]any, len(nodes))
	off := 0
	for i := range nodes {
		out[i] = rendered[off : off+counts[i]]
		off += counts[i]
	}
	return out, nil
}

// projectProfiles renders a sibling list of profiles; entries may be nil
// for users without one. Member types for the whole list are fetched in
// one direct read.
func (p *projector) projectProfiles(ctx context.Context, profiles []*model.Profile, sel language.SelectionSet) ([]map[string]any, error) {
	fields := collectFields("Profile", sel, p.vars, p.frags)
	var memberTypes map[string]*model.MemberType
	for _, cf := range fields {
		if cf.Name() != "memberType" {
			continue
		}
		ids := make([]string, 0, len(profiles))
		seen := map[string]bool{}
		for _, prof := range profiles {
			if prof == nil || seen[prof.MemberTypeID] {
				continue
			}
			seen[prof.MemberTypeID] = true
			ids = append(ids, prof.MemberTypeID)
		}
		memberTypes = map[string]*model.MemberType{}
		if len(ids) > 0 {
			mts, err := p.store.MemberTypes().FindByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			for _, mt := range mts {
				memberTypes[mt.ID] = mt
			}
		}
		break
	}

	out := make([]map[string]any, len(profiles))
	for i, prof := range profiles {
		if prof == nil {
			continue
		}
		m := make(map[string]any, len(fields))
		for _, cf := range fields {
			switch cf.Name() {
			case "__typename":
				m[cf.ResponseName] = "Profile"
			case "id":
				m[cf.ResponseName] = prof.ID
			case "isMale":
				m[cf.ResponseName] = prof.IsMale
			case "yearOfBirth":
				m[cf.ResponseName] = prof.YearOfBirth
			case "userId":
				m[cf.ResponseName] = prof.UserID
			case "memberTypeId":
				m[cf.ResponseName] = prof.MemberTypeID
			case "memberType":
				if mt := memberTypes[prof.MemberTypeID]; mt != nil {
					m[cf.ResponseName] = p.projectMemberType(mt, cf.Selections())
				} else {
					m[cf.ResponseName] = nil
				}
			}
		}
		out[i] = m
	}
	return out, nil
}

func (p *projector) projectPostList(posts []*model.Post, sel language.SelectionSet) []map[string]any {
	out := make([]map[string]any, len(posts))
	for i, post := range posts {
		out[i] = p.projectPost(post, sel)
	}
	return out
}

func (p *projector) projectPost(post *model.Post, sel language.SelectionSet) map[string]any {
	fields := collectFields("Post", sel, p.vars, p.frags)
	m := make(map[string]any, len(fields))
	for _, cf := range fields {
		switch cf.Name() {
		case "__typename":
			m[cf.ResponseName] = "Post"
		case "id":
			m[cf.ResponseName] = post.ID
		case "title":
			m[cf.ResponseName] = post.Title
		case "content":
			m[cf.ResponseName] = post.Content
		case "authorId":
			m[cf.ResponseName] = post.AuthorID
		}
	}
	return m
}

func (p *projector) projectMemberType(mt *model.MemberType, sel language.SelectionSet) map[string]any {
	fields := collectFields("MemberType", sel, p.vars, p.frags)
	m := make(map[string]any, len(fields))
	for _, cf := range fields {
		switch cf.Name() {
		case "__typename":
			m[cf.ResponseName] = "MemberType"
		case "id":
			m[cf.ResponseName] = mt.ID
		case "discount":
			m[cf.ResponseName] = mt.Discount
		case "postsLimitPerMonth":
			m[cf.ResponseName] = mt.PostsLimitPerMonth
		}
	}
	return m
}
