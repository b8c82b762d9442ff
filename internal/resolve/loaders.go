package resolve

import (
	"context"

	"github.com/graphfeed/graphfeed/internal/loader"
	"github.com/graphfeed/graphfeed/internal/model"
	"github.com/graphfeed/graphfeed/internal/store"
)

// Loaders is the per-request batching state. One set is constructed for
// every incoming operation and discarded with it; loaders are never
// retained across requests.
type Loaders struct {
	Users          *loader.Loader[string, *model.User]
	Posts          *loader.Loader[string, *model.Post]
	PostsByAuthor  *loader.Loader[string, []*model.Post]
	Profiles       *loader.Loader[string, *model.Profile]
	ProfilesByUser *loader.Loader[string, *model.Profile]
}

// NewLoaders wires a fresh loader set onto the store's set-read calls.
func NewLoaders(st store.Store) *Loaders {
	return &Loaders{
		Users: loader.New(func(ctx context.Context, ids []string) (map[string]*model.User, error) {
			users, err := st.Users().FindByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			out := make(map[string]*model.User, len(users))
			for _, u := range users {
				out[u.ID] = u
			}
			return out, nil
		}),
		Posts: loader.New(func(ctx context.Context, ids []string) (map[string]*model.Post, error) {
			posts, err := st.Posts().FindByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			out := make(map[string]*model.Post, len(posts))
			for _, p := range posts {
				out[p.ID] = p
			}
			return out, nil
		}),
		PostsByAuthor: loader.New(func(ctx context.Context, authorIDs []string) (map[string][]*model.Post, error) {
			posts, err := st.Posts().FindByAuthorIDs(ctx, authorIDs)
			if err != nil {
				return nil, err
			}
			// Authors without posts get an explicit empty list so the
			// result memoizes as found.
			out := make(map[string][]*model.Post, len(authorIDs))
			for _, id := range authorIDs {
				out[id] = []*model.Post{}
			}
			for _, p := range posts {
				out[p.AuthorID] = append(out[p.AuthorID], p)
			}
			return out, nil
		}),
		Profiles: loader.New(func(ctx context.Context, ids []string) (map[string]*model.Profile, error) {
			profiles, err := st.Profiles().FindByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			out := make(map[string]*model.Profile, len(profiles))
			for _, p := range profiles {
				out[p.ID] = p
			}
			return out, nil
		}),
		ProfilesByUser: loader.New(func(ctx context.Context, userIDs []string) (map[string]*model.Profile, error) {
			profiles, err := st.Profiles().FindByUserIDs(ctx, userIDs)
			if err != nil {
				return nil, err
			}
			out := make(map[string]*model.Profile, len(profiles))
			for _, p := range profiles {
				out[p.UserID] = p
			}
			return out, nil
		}),
	}
}

// primeUser records a user in the id-keyed memo.
func (l *Loaders) primeUser(u *model.User) {
	l.Users.Prime(u.ID, u)
}

// primePost records a post in both post-keyed memos' id side. The
// by-author list is left alone; it is only primed from whole-collection
// listings where the full grouping is known.
func (l *Loaders) primePost(p *model.Post) {
	l.Posts.Prime(p.ID, p)
}

// primeProfile records a profile under both its id and its owner's id.
func (l *Loaders) primeProfile(p *model.Profile) {
	l.Profiles.Prime(p.ID, p)
	l.ProfilesByUser.Prime(p.UserID, p)
}
