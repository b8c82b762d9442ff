package pgstore

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/graphfeed/graphfeed/internal/model"
	"github.com/graphfeed/graphfeed/internal/store"
)

type userRepo struct{ s *Store }

// userSelect fetches users together with their subscription edge id lists
// in one round trip. Edge lists are ordered by edge creation time.
const userSelect = `
SELECT u.id::text, u.name, u.balance,
    COALESCE((SELECT array_agg(s.author_id::text ORDER BY s.created_at)
              FROM subscriptions s WHERE s.subscriber_id = u.id), '{}'),
    COALESCE((SELECT array_agg(s.subscriber_id::text ORDER BY s.created_at)
              FROM subscriptions s WHERE s.author_id = u.id), '{}')
FROM users u`

func scanUsers(rows pgx.Rows) ([]*model.User, error) {
	defer rows.Close()
	var out []*model.User
	for rows.Next() {
		u := &model.User{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Balance, &u.SubscribedToIDs, &u.SubscriberIDs); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *userRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	start := time.Now()
	rows, err := r.s.pool.Query(ctx, userSelect+` WHERE u.id::text = ANY($1)`, ids)
	if err != nil {
		emit(ctx, "user", "findByIds", len(ids), err, start)
		return nil, mapError(err)
	}
	users, err := scanUsers(rows)
	emit(ctx, "user", "findByIds", len(ids), err, start)
	return users, mapError(err)
}

func (r *userRepo) FindAll(ctx context.Context) ([]*model.User, error) {
	start := time.Now()
	rows, err := r.s.pool.Query(ctx, userSelect+` ORDER BY u.created_at`)
	if err != nil {
		emit(ctx, "user", "findAll", 0, err, start)
		return nil, mapError(err)
	}
	users, err := scanUsers(rows)
	emit(ctx, "user", "findAll", 0, err, start)
	return users, mapError(err)
}

func (r *userRepo) Create(ctx context.Context, data model.CreateUser) (*model.User, error) {
	start := time.Now()
	id := uuid.NewString()
	_, err := r.s.pool.Exec(ctx,
		`INSERT INTO users (id, name, balance) VALUES ($1, $2, $3)`,
		id, data.Name, data.Balance)
	emit(ctx, "user", "create", 0, err, start)
	if err != nil {
		return nil, mapError(err)
	}
	return &model.User{ID: id, Name: data.Name, Balance: data.Balance}, nil
}

func (r *userRepo) Update(ctx context.Context, id string, data model.ChangeUser) (*model.User, error) {
	start := time.Now()
	sets := []string{}
	args := []any{id}
	if data.Name != nil {
		args = append(args, *data.Name)
		sets = append(sets, "name = $"+strconv.Itoa(len(args)))
	}
	if data.Balance != nil {
		args = append(args, *data.Balance)
		sets = append(sets, "balance = $"+strconv.Itoa(len(args)))
	}
	if len(sets) > 0 {
		tag, err := r.s.pool.Exec(ctx,
			`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id::text = $1`, args...)
		if err == nil && tag.RowsAffected() == 0 {
			err = store.ErrNotFound
		}
		if err != nil {
			emit(ctx, "user", "update", 0, err, start)
			return nil, mapError(err)
		}
	}
	// Re-select through userSelect so the returned record carries its
	// subscription edge lists, like every other read path.
	rows, err := r.s.pool.Query(ctx, userSelect+` WHERE u.id::text = $1`, id)
	if err != nil {
		emit(ctx, "user", "update", 0, err, start)
		return nil, mapError(err)
	}
	users, err := scanUsers(rows)
	if err == nil && len(users) == 0 {
		err = store.ErrNotFound
	}
	emit(ctx, "user", "update", 0, err, start)
	if err != nil {
		return nil, mapError(err)
	}
	return users[0], nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	start := time.Now()
	tag, err := r.s.pool.Exec(ctx, `DELETE FROM users WHERE id::text = $1`, id)
	if err == nil && tag.RowsAffected() == 0 {
		err = store.ErrNotFound
	}
	emit(ctx, "user", "delete", 0, err, start)
	return mapError(err)
}

func (r *userRepo) Subscribe(ctx context.Context, subscriberID, authorID string) error {
	start := time.Now()
	_, err := r.s.pool.Exec(ctx,
		`INSERT INTO subscriptions (subscriber_id, author_id) VALUES ($1, $2)`,
		subscriberID, authorID)
	emit(ctx, "user", "subscribe", 0, err, start)
	return mapError(err)
}

func (r *userRepo) Unsubscribe(ctx context.Context, subscriberID, authorID string) error {
	start := time.Now()
	tag, err := r.s.pool.Exec(ctx,
		`DELETE FROM subscriptions WHERE subscriber_id::text = $1 AND author_id::text = $2`,
		subscriberID, authorID)
	if err == nil && tag.RowsAffected() == 0 {
		err = store.ErrNotFound
	}
	emit(ctx, "user", "unsubscribe", 0, err, start)
	return mapError(err)
}

