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

type postRepo struct{ s *Store }

const postSelect = `SELECT id::text, title, content, author_id::text FROM posts`

func scanPosts(rows pgx.Rows) ([]*model.Post, error) {
	defer rows.Close()
	var out []*model.Post
	for rows.Next() {
		p := &model.Post{}
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.Post, error) {
	start := time.Now()
	rows, err := r.s.pool.Query(ctx, postSelect+` WHERE id::text = ANY($1)`, ids)
	if err != nil {
		emit(ctx, "post", "findByIds", len(ids), err, start)
		return nil, mapError(err)
	}
	posts, err := scanPosts(rows)
	emit(ctx, "post", "findByIds", len(ids), err, start)
	return posts, mapError(err)
}

func (r *postRepo) FindByAuthorIDs(ctx context.Context, authorIDs []string) ([]*model.Post, error) {
	start := time.Now()
	rows, err := r.s.pool.Query(ctx,
		postSelect+` WHERE author_id::text = ANY($1) ORDER BY created_at`, authorIDs)
	if err != nil {
		emit(ctx, "post", "findByAuthorIds", len(authorIDs), err, start)
		return nil, mapError(err)
	}
	posts, err := scanPosts(rows)
	emit(ctx, "post", "findByAuthorIds", len(authorIDs), err, start)
	return posts, mapError(err)
}

func (r *postRepo) FindAll(ctx context.Context) ([]*model.Post, error) {
	start := time.Now()
	rows, err := r.s.pool.Query(ctx, postSelect+` ORDER BY created_at`)
	if err != nil {
		emit(ctx, "post", "findAll", 0, err, start)
		return nil, mapError(err)
	}
	posts, err := scanPosts(rows)
	emit(ctx, "post", "findAll", 0, err, start)
	return posts, mapError(err)
}

func (r *postRepo) Create(ctx context.Context, data model.CreatePost) (*model.Post, error) {
	start := time.Now()
	id := uuid.NewString()
	_, err := r.s.pool.Exec(ctx,
		`INSERT INTO posts (id, title, content, author_id) VALUES ($1, $2, $3, $4)`,
		id, data.Title, data.Content, data.AuthorID)
	emit(ctx, "post", "create", 0, err, start)
	if err != nil {
		return nil, mapError(err)
	}
	return &model.Post{ID: id, Title: data.Title, Content: data.Content, AuthorID: data.AuthorID}, nil
}

func (r *postRepo) Update(ctx context.Context, id string, data model.ChangePost) (*model.Post, error) {
	start := time.Now()
	sets := []string{}
	args := []any{id}
	if data.Title != nil {
		args = append(args, *data.Title)
		sets = append(sets, "title = $"+strconv.Itoa(len(args)))
	}
	if data.Content != nil {
		args = append(args, *data.Content)
		sets = append(sets, "content = $"+strconv.Itoa(len(args)))
	}
	p := &model.Post{}
	var err error
	if len(sets) == 0 {
		err = r.s.pool.QueryRow(ctx, postSelect+` WHERE id::text = $1`, id).
			Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID)
	} else {
		err = r.s.pool.QueryRow(ctx,
			`UPDATE posts SET `+strings.Join(sets, ", ")+
				` WHERE id::text = $1 RETURNING id::text, title, content, author_id::text`, args...).
			Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID)
	}
	emit(ctx, "post", "update", 0, err, start)
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	start := time.Now()
	tag, err := r.s.pool.Exec(ctx, `DELETE FROM posts WHERE id::text = $1`, id)
	if err == nil && tag.RowsAffected() == 0 {
		err = store.ErrNotFound
	}
	emit(ctx, "post", "delete", 0, err, start)
	return mapError(err)
}
