package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/graphfeed/graphfeed/internal/model"
	"github.com/graphfeed/graphfeed/internal/store"
)

func mustUser(t *testing.T, s *Store, name string) *model.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), model.CreateUser{Name: name, Balance: 1})
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func TestMemberTypesSeeded(t *testing.T) {
	s := New()
	mts, err := s.MemberTypes().FindAll(context.Background())
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(mts) != 2 {
		t.Fatalf("member types = %v", mts)
	}
	if mts[0].ID != store.MemberTypeBasic || mts[0].Discount != 0.1 || mts[0].PostsLimitPerMonth != 20 {
		t.Fatalf("basic = %+v", mts[0])
	}
	if mts[1].ID != store.MemberTypeBusiness || mts[1].Discount != 0.25 || mts[1].PostsLimitPerMonth != 100 {
		t.Fatalf("business = %+v", mts[1])
	}
}

func TestFindByIDsSkipsMissing(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := mustUser(t, s, "a")
	got, err := s.Users().FindByIDs(ctx, []string{a.ID, "missing"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].ID != a.ID {
		t.Fatalf("got %v", got)
	}
}

func TestUserViewCarriesEdgeLists(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := mustUser(t, s, "a")
	b := mustUser(t, s, "b")
	c := mustUser(t, s, "c")
	for _, e := range [][2]string{{a.ID, b.ID}, {a.ID, c.ID}, {c.ID, a.ID}} {
		if err := s.Users().Subscribe(ctx, e[0], e[1]); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}

	got, err := s.Users().FindByIDs(ctx, []string{a.ID})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	u := got[0]
	if len(u.SubscribedToIDs) != 2 || u.SubscribedToIDs[0] != b.ID || u.SubscribedToIDs[1] != c.ID {
		t.Fatalf("subscribedTo = %v", u.SubscribedToIDs)
	}
	if len(u.SubscriberIDs) != 1 || u.SubscriberIDs[0] != c.ID {
		t.Fatalf("subscribers = %v", u.SubscriberIDs)
	}
}

func TestSubscribeConstraints(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := mustUser(t, s, "a")
	b := mustUser(t, s, "b")

	if err := s.Users().Subscribe(ctx, a.ID, a.ID); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("self subscribe err = %v", err)
	}
	if err := s.Users().Subscribe(ctx, a.ID, "missing"); !errors.Is(err, store.ErrForeignKey) {
		t.Fatalf("unknown author err = %v", err)
	}
	if err := s.Users().Subscribe(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := s.Users().Subscribe(ctx, a.ID, b.ID); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate subscribe err = %v", err)
	}
}

func TestUnsubscribeMissingEdge(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := mustUser(t, s, "a")
	b := mustUser(t, s, "b")
	if err := s.Users().Unsubscribe(ctx, a.ID, b.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestDeleteUserBlockedByReferences(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := mustUser(t, s, "a")
	b := mustUser(t, s, "b")

	post, err := s.Posts().Create(ctx, model.CreatePost{Title: "t", Content: "c", AuthorID: a.ID})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if err := s.Users().Delete(ctx, a.ID); !errors.Is(err, store.ErrForeignKey) {
		t.Fatalf("delete with post err = %v", err)
	}
	if err := s.Posts().Delete(ctx, post.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}

	if err := s.Users().Subscribe(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := s.Users().Delete(ctx, a.ID); !errors.Is(err, store.ErrForeignKey) {
		t.Fatalf("delete with edge err = %v", err)
	}
	if err := s.Users().Unsubscribe(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}

	if err := s.Users().Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Users().Delete(ctx, a.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestProfileOnePerUser(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := mustUser(t, s, "a")

	if _, err := s.Profiles().Create(ctx, model.CreateProfile{UserID: "missing", MemberTypeID: store.MemberTypeBasic}); !errors.Is(err, store.ErrForeignKey) {
		t.Fatalf("unknown user err = %v", err)
	}
	if _, err := s.Profiles().Create(ctx, model.CreateProfile{UserID: a.ID, MemberTypeID: "gold"}); !errors.Is(err, store.ErrForeignKey) {
		t.Fatalf("unknown member type err = %v", err)
	}
	if _, err := s.Profiles().Create(ctx, model.CreateProfile{UserID: a.ID, MemberTypeID: store.MemberTypeBasic, YearOfBirth: 2000}); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if _, err := s.Profiles().Create(ctx, model.CreateProfile{UserID: a.ID, MemberTypeID: store.MemberTypeBusiness}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("second profile err = %v", err)
	}
}

func TestFindByAuthorIDsFilters(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := mustUser(t, s, "a")
	b := mustUser(t, s, "b")
	for _, author := range []string{a.ID, b.ID, a.ID} {
		if _, err := s.Posts().Create(ctx, model.CreatePost{Title: "t", Content: "c", AuthorID: author}); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}

	got, err := s.Posts().FindByAuthorIDs(ctx, []string{a.ID})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("posts = %v", got)
	}
	for _, p := range got {
		if p.AuthorID != a.ID {
			t.Fatalf("wrong author: %+v", p)
		}
	}
}

func TestUpdatePartialFields(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := mustUser(t, s, "a")

	name := "renamed"
	u, err := s.Users().Update(ctx, a.ID, model.ChangeUser{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Name != "renamed" || u.Balance != 1 {
		t.Fatalf("updated user = %+v", u)
	}

	if _, err := s.Users().Update(ctx, "missing", model.ChangeUser{Name: &name}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing update err = %v", err)
	}
}

// Returned records are copies; mutating them must not leak back into
// the store.
func TestReadsReturnCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := mustUser(t, s, "a")

	got, _ := s.Users().FindByIDs(ctx, []string{a.ID})
	got[0].Name = "hacked"

	again, _ := s.Users().FindByIDs(ctx, []string{a.ID})
	if again[0].Name != "a" {
		t.Fatalf("store mutated through a read: %+v", again[0])
	}
}
