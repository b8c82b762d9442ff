// Package model defines the entity types served by the API.
//
// Users form a self-referential graph through subscription edges. A user
// record carries the edge endpoints as flat id lists rather than nested
// user values; nested views are materialized on demand by the resolver.
package model

// User is an account holder. SubscribedToIDs lists the authors this user
// follows; SubscriberIDs lists the users following this one. Both are
// populated by the store on read.
type User struct {
	ID              string
	Name            string
	Balance         float64
	SubscribedToIDs []string
	SubscriberIDs   []string
}

// Post is authored by exactly one user.
type Post struct {
	ID       string
	Title    string
	Content  string
	AuthorID string
}

// Profile is owned by exactly one user (one-to-one) and references a
// member type from the fixed enumeration.
type Profile struct {
	ID           string
	IsMale       bool
	YearOfBirth  int
	UserID       string
	MemberTypeID string
}

// MemberType is read-only reference data seeded out of band.
type MemberType struct {
	ID                 string
	Discount           float64
	PostsLimitPerMonth int
}

// CreateUser carries the fields required to insert a user.
type CreateUser struct {
	Name    string
	Balance float64
}

// ChangeUser carries a partial user update; nil fields are left untouched.
type ChangeUser struct {
	Name    *string
	Balance *float64
}

type CreatePost struct {
	Title    string
	Content  string
	AuthorID string
}

type ChangePost struct {
	Title   *string
	Content *string
}

type CreateProfile struct {
	IsMale       bool
	YearOfBirth  int
	UserID       string
	MemberTypeID string
}

type ChangeProfile struct {
	IsMale       *bool
	YearOfBirth  *int
	MemberTypeID *string
}
