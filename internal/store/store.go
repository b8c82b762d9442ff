// Package store defines the storage collaborator boundary.
//
// The resolution engine only depends on the interfaces here. Set reads
// (FindByIDs and friends) are the primitive the per-request loaders batch
// onto: one call services the union of keys collected during a coalescing
// window. Implementations must return records in no particular order; the
// loader redistributes them by key.
package store

import (
	"context"
	"errors"

	"github.com/graphfeed/graphfeed/internal/model"
)

var (
	// ErrNotFound reports that a record addressed by id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict reports a uniqueness violation (duplicate subscription
	// edge, second profile for a user, duplicate id).
	ErrConflict = errors.New("unique constraint violation")
	// ErrForeignKey reports a broken or still-referenced foreign key.
	ErrForeignKey = errors.New("foreign key constraint violation")
)

// MemberTypeBasic and MemberTypeBusiness are the only valid member type ids.
const (
	MemberTypeBasic    = "basic"
	MemberTypeBusiness = "business"
)

type UserRepo interface {
	// FindByIDs returns the users whose ids are in ids, each with its
	// subscription edge id lists attached. Missing ids are simply absent
	// from the result.
	FindByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	FindAll(ctx context.Context) ([]*model.User, error)
	Create(ctx context.Context, data model.CreateUser) (*model.User, error)
	Update(ctx context.Context, id string, data model.ChangeUser) (*model.User, error)
	Delete(ctx context.Context, id string) error
	// Subscribe records the edge (subscriberID, authorID). Duplicate and
	// self-referential edges fail with ErrConflict; unknown endpoints fail
	// with ErrForeignKey.
	Subscribe(ctx context.Context, subscriberID, authorID string) error
	// Unsubscribe removes the edge; ErrNotFound if it does not exist.
	Unsubscribe(ctx context.Context, subscriberID, authorID string) error
}

type PostRepo interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.Post, error)
	// FindByAuthorIDs returns all posts whose author is in authorIDs.
	FindByAuthorIDs(ctx context.Context, authorIDs []string) ([]*model.Post, error)
	FindAll(ctx context.Context) ([]*model.Post, error)
	Create(ctx context.Context, data model.CreatePost) (*model.Post, error)
	Update(ctx context.Context, id string, data model.ChangePost) (*model.Post, error)
	Delete(ctx context.Context, id string) error
}

type ProfileRepo interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.Profile, error)
	// FindByUserIDs returns the profiles owned by the given users. At most
	// one profile exists per user.
	FindByUserIDs(ctx context.Context, userIDs []string) ([]*model.Profile, error)
	FindAll(ctx context.Context) ([]*model.Profile, error)
	Create(ctx context.Context, data model.CreateProfile) (*model.Profile, error)
	Update(ctx context.Context, id string, data model.ChangeProfile) (*model.Profile, error)
	Delete(ctx context.Context, id string) error
}

type MemberTypeRepo interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.MemberType, error)
	FindAll(ctx context.Context) ([]*model.MemberType, error)
}

// Store bundles the per-kind repositories.
type Store interface {
	Users() UserRepo
	Posts() PostRepo
	Profiles() ProfileRepo
	MemberTypes() MemberTypeRepo
}
