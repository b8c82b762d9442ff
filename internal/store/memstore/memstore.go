// Package memstore is an in-memory Store used by tests and the dev server.
// It enforces the same uniqueness and referential integrity rules the
// PostgreSQL store delegates to the database.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/graphfeed/graphfeed/internal/eventbus"
	"github.com/graphfeed/graphfeed/internal/events"
	"github.com/graphfeed/graphfeed/internal/model"
	"github.com/graphfeed/graphfeed/internal/store"
)

type edge struct {
	subscriberID string
	authorID     string
}

// Store keeps all records in maps guarded by one mutex. Insertion order is
// preserved for whole-collection reads and edge lists.
type Store struct {
	mu           sync.RWMutex
	users        map[string]*model.User
	userOrder    []string
	posts        map[string]*model.Post
	postOrder    []string
	profiles     map[string]*model.Profile
	profileOrder []string
	memberTypes  []*model.MemberType
	edges        []edge
}

// New returns an empty store with the member type enumeration seeded.
func New() *Store {
	return &Store{
		users:    make(map[string]*model.User),
		posts:    make(map[string]*model.Post),
		profiles: make(map[string]*model.Profile),
		memberTypes: []*model.MemberType{
			{ID: store.MemberTypeBasic, Discount: 0.1, PostsLimitPerMonth: 20},
			{ID: store.MemberTypeBusiness, Discount: 0.25, PostsLimitPerMonth: 100},
		},
	}
}

func (s *Store) Users() store.UserRepo             { return (*userRepo)(s) }
func (s *Store) Posts() store.PostRepo             { return (*postRepo)(s) }
func (s *Store) Profiles() store.ProfileRepo       { return (*profileRepo)(s) }
func (s *Store) MemberTypes() store.MemberTypeRepo { return (*memberTypeRepo)(s) }

func emit(ctx context.Context, kind, op string, keys int, err error, start time.Time) {
	eventbus.Publish(ctx, events.StoreQuery{
		Kind:     kind,
		Op:       op,
		Keys:     keys,
		Err:      err,
		Duration: time.Since(start),
	})
}

// userView returns a copy of u with its edge id lists attached, in edge
// insertion order.
func (s *Store) userView(u *model.User) *model.User {
	v := &model.User{ID: u.ID, Name: u.Name, Balance: u.Balance}
	for _, e := range s.edges {
		if e.subscriberID == u.ID {
			v.SubscribedToIDs = append(v.SubscribedToIDs, e.authorID)
		}
		if e.authorID == u.ID {
			v.SubscriberIDs = append(v.SubscriberIDs, e.subscriberID)
		}
	}
	return v
}

type userRepo Store

func (r *userRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	defer emit(ctx, "user", "findByIds", len(ids), nil, time.Now())
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, s.userView(u))
		}
	}
	return out, nil
}

func (r *userRepo) FindAll(ctx context.Context) ([]*model.User, error) {
	defer emit(ctx, "user", "findAll", 0, nil, time.Now())
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, s.userView(s.users[id]))
	}
	return out, nil
}

func (r *userRepo) Create(ctx context.Context, data model.CreateUser) (*model.User, error) {
	defer emit(ctx, "user", "create", 0, nil, time.Now())
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.User{ID: uuid.NewString(), Name: data.Name, Balance: data.Balance}
	s.users[u.ID] = u
	s.userOrder = append(s.userOrder, u.ID)
	return s.userView(u), nil
}

func (r *userRepo) Update(ctx context.Context, id string, data model.ChangeUser) (*model.User, error) {
	start := time.Now()
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		emit(ctx, "user", "update", 0, store.ErrNotFound, start)
		return nil, store.ErrNotFound
	}
	if data.Name != nil {
		u.Name = *data.Name
	}
	if data.Balance != nil {
		u.Balance = *data.Balance
	}
	emit(ctx, "user", "update", 0, nil, start)
	return s.userView(u), nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	start := time.Now()
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.deleteUserLocked(id)
	emit(ctx, "user", "delete", 0, err, start)
	return err
}

func (s *Store) deleteUserLocked(id string) error {
	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	for _, p := range s.posts {
		if p.AuthorID == id {
			return store.ErrForeignKey
		}
	}
	for _, p := range s.profiles {
		if p.UserID == id {
			return store.ErrForeignKey
		}
	}
	for _, e := range s.edges {
		if e.subscriberID == id || e.authorID == id {
			return store.ErrForeignKey
		}
	}
	delete(s.users, id)
	for i, uid := range s.userOrder {
		if uid == id {
			s.userOrder = append(s.userOrder[:i], s.userOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (r *userRepo) Subscribe(ctx context.Context, subscriberID, authorID string) error {
	start := time.Now()
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.subscribeLocked(subscriberID, authorID)
	emit(ctx, "user", "subscribe", 0, err, start)
	return err
}

func (s *Store) subscribeLocked(subscriberID, authorID string) error {
	if _, ok := s.users[subscriberID]; !ok {
		return store.ErrForeignKey
	}
	if _, ok := s.users[authorID]; !ok {
		return store.ErrForeignKey
	}
	if subscriberID == authorID {
		return store.ErrConflict
	}
	for _, e := range s.edges {
		if e.subscriberID == subscriberID && e.authorID == authorID {
			return store.ErrConflict
		}
	}
	s.edges = append(s.edges, edge{subscriberID: subscriberID, authorID: authorID})
	return nil
}

func (r *userRepo) Unsubscribe(ctx context.Context, subscriberID, authorID string) error {
	start := time.Now()
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.edges {
		if e.subscriberID == subscriberID && e.authorID == authorID {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			emit(ctx, "user", "unsubscribe", 0, nil, start)
			return nil
		}
	}
	emit(ctx, "user", "unsubscribe", 0, store.ErrNotFound, start)
	return store.ErrNotFound
}

type postRepo Store

func (r *postRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.Post, error) {
	defer emit(ctx, "post", "findByIds", len(ids), nil, time.Now())
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.posts[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *postRepo) FindByAuthorIDs(ctx context.Context, authorIDs []string) ([]*model.Post, error) {
	defer emit(ctx, "post", "findByAuthorIds", len(authorIDs), nil, time.Now())
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[string]struct{}, len(authorIDs))
	for _, id := range authorIDs {
		wanted[id] = struct{}{}
	}
	var out []*model.Post
	for _, id := range s.postOrder {
		p := s.posts[id]
		if _, ok := wanted[p.AuthorID]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *postRepo) FindAll(ctx context.Context) ([]*model.Post, error) {
	defer emit(ctx, "post", "findAll", 0, nil, time.Now())
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Post, 0, len(s.postOrder))
	for _, id := range s.postOrder {
		cp := *s.posts[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *postRepo) Create(ctx context.Context, data model.CreatePost) (*model.Post, error) {
	start := time.Now()
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[data.AuthorID]; !ok {
		emit(ctx, "post", "create", 0, store.ErrForeignKey, start)
		return nil, store.ErrForeignKey
	}
	p := &model.Post{ID: uuid.NewString(), Title: data.Title, Content: data.Content, AuthorID: data.AuthorID}
	s.posts[p.ID] = p
	s.postOrder = append(s.postOrder, p.ID)
	emit(ctx, "post", "create", 0, nil, start)
	cp := *p
	return &cp, nil
}

func (r *postRepo) Update(ctx context.Context, id string, data model.ChangePost) (*model.Post, error) {
	start := time.Now()
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		emit(ctx, "post", "update", 0, store.ErrNotFound, start)
		return nil, store.ErrNotFound
	}
	if data.Title != nil {
		p.Title = *data.Title
	}
	if data.Content != nil {
		p.Content = *data.Content
	}
	emit(ctx, "post", "update", 0, nil, start)
	cp := *p
	return &cp, nil
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	start := time.Now()
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		emit(ctx, "post", "delete", 0, store.ErrNotFound, start)
		return store.ErrNotFound
	}
	delete(s.posts, id)
	for i, pid := range s.postOrder {
		if pid == id {
			s.postOrder = append(s.postOrder[:i], s.postOrder[i+1:]...)
			break
		}
	}
	emit(ctx, "post", "delete", 0, nil, start)
	return nil
}

type profileRepo Store

func (r *profileRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.Profile, error) {
	defer emit(ctx, "profile", "findByIds", len(ids), nil, time.Now())
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *profileRepo) FindByUserIDs(ctx context.Context, userIDs []string) ([]*model.Profile, error) {
	defer emit(ctx, "profile", "findByUserIds", len(userIDs), nil, time.Now())
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}
	var out []*model.Profile
	for _, id := range s.profileOrder {
		p := s.profiles[id]
		if _, ok := wanted[p.UserID]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *profileRepo) FindAll(ctx context.Context) ([]*model.Profile, error) {
	defer emit(ctx, "profile", "findAll", 0, nil, time.Now())
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Profile, 0, len(s.profileOrder))
	for _, id := range s.profileOrder {
		cp := *s.profiles[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *profileRepo) Create(ctx context.Context, data model.CreateProfile) (*model.Profile, error) {
	start := time.Now()
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.createProfileLocked(data)
	emit(ctx, "profile", "create", 0, err, start)
	return p, err
}

func (s *Store) createProfileLocked(data model.CreateProfile) (*model.Profile, error) {
	if _, ok := s.users[data.UserID]; !ok {
		return nil, store.ErrForeignKey
	}
	if !validMemberType(s.memberTypes, data.MemberTypeID) {
		return nil, store.ErrForeignKey
	}
	for _, existing := range s.profiles {
		if existing.UserID == data.UserID {
			return nil, store.ErrConflict
		}
	}
	p := &model.Profile{
		ID:           uuid.NewString(),
		IsMale:       data.IsMale,
		YearOfBirth:  data.YearOfBirth,
		UserID:       data.UserID,
		MemberTypeID: data.MemberTypeID,
	}
	s.profiles[p.ID] = p
	s.profileOrder = append(s.profileOrder, p.ID)
	cp := *p
	return &cp, nil
}

func (r *profileRepo) Update(ctx context.Context, id string, data model.ChangeProfile) (*model.Profile, error) {
	start := time.Now()
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		emit(ctx, "profile", "update", 0, store.ErrNotFound, start)
		return nil, store.ErrNotFound
	}
	if data.MemberTypeID != nil && !validMemberType(s.memberTypes, *data.MemberTypeID) {
		emit(ctx, "profile", "update", 0, store.ErrForeignKey, start)
		return nil, store.ErrForeignKey
	}
	if data.IsMale != nil {
		p.IsMale = *data.IsMale
	}
	if data.YearOfBirth != nil {
		p.YearOfBirth = *data.YearOfBirth
	}
	if data.MemberTypeID != nil {
		p.MemberTypeID = *data.MemberTypeID
	}
	emit(ctx, "profile", "update", 0, nil, start)
	cp := *p
	return &cp, nil
}

func (r *profileRepo) Delete(ctx context.Context, id string) error {
	start := time.Now()
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		emit(ctx, "profile", "delete", 0, store.ErrNotFound, start)
		return store.ErrNotFound
	}
	delete(s.profiles, id)
	for i, pid := range s.profileOrder {
		if pid == id {
			s.profileOrder = append(s.profileOrder[:i], s.profileOrder[i+1:]...)
			break
		}
	}
	emit(ctx, "profile", "delete", 0, nil, start)
	return nil
}

type memberTypeRepo Store

func (r *memberTypeRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.MemberType, error) {
	defer emit(ctx, "memberType", "findByIds", len(ids), nil, time.Now())
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.MemberType, 0, len(ids))
	for _, id := range ids {
		for _, mt := range s.memberTypes {
			if mt.ID == id {
				cp := *mt
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (r *memberTypeRepo) FindAll(ctx context.Context) ([]*model.MemberType, error) {
	defer emit(ctx, "memberType", "findAll", 0, nil, time.Now())
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.MemberType, 0, len(s.memberTypes))
	for _, mt := range s.memberTypes {
		cp := *mt
		out = append(out, &cp)
	}
	return out, nil
}

func validMemberType(mts []*model.MemberType, id string) bool {
	for _, mt := range mts {
		if mt.ID == id {
			return true
		}
	}
	return false
}
