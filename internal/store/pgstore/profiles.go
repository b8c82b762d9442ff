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

type profileRepo struct{ s *Store }

const profileSelect = `SELECT id::text, is_male, year_of_birth, user_id::text, member_type_id FROM profiles`

func scanProfiles(rows pgx.Rows) ([]*model.Profile, error) {
	defer rows.Close()
	var out []*model.Profile
	for rows.Next() {
		p := &model.Profile{}
		if err := rows.Scan(&p.ID, &p.IsMale, &p.YearOfBirth, &p.UserID, &p.MemberTypeID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *profileRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.Profile, error) {
	start := time.Now()
	rows, err := r.s.pool.Query(ctx, profileSelect+` WHERE id::text = ANY($1)`, ids)
	if err != nil {
		emit(ctx, "profile", "findByIds", len(ids), err, start)
		return nil, mapError(err)
	}
	profiles, err := scanProfiles(rows)
	emit(ctx, "profile", "findByIds", len(ids), err, start)
	return profiles, mapError(err)
}

func (r *profileRepo) FindByUserIDs(ctx context.Context, userIDs []string) ([]*model.Profile, error) {
	start := time.Now()
	rows, err := r.s.pool.Query(ctx, profileSelect+` WHERE user_id::text = ANY($1)`, userIDs)
	if err != nil {
		emit(ctx, "profile", "findByUserIds", len(userIDs), err, start)
		return nil, mapError(err)
	}
	profiles, err := scanProfiles(rows)
	emit(ctx, "profile", "findByUserIds", len(userIDs), err, start)
	return profiles, mapError(err)
}

func (r *profileRepo) FindAll(ctx context.Context) ([]*model.Profile, error) {
	start := time.Now()
	rows, err := r.s.pool.Query(ctx, profileSelect)
	if err != nil {
		emit(ctx, "profile", "findAll", 0, err, start)
		return nil, mapError(err)
	}
	profiles, err := scanProfiles(rows)
	emit(ctx, "profile", "findAll", 0, err, start)
	return profiles, mapError(err)
}

func (r *profileRepo) Create(ctx context.Context, data model.CreateProfile) (*model.Profile, error) {
	start := time.Now()
	id := uuid.NewString()
	_, err := r.s.pool.Exec(ctx,
		`INSERT INTO profiles (id, is_male, year_of_birth, user_id, member_type_id)
		 VALUES ($1, $2, $3, $4, $5)`,
		id, data.IsMale, data.YearOfBirth, data.UserID, data.MemberTypeID)
	emit(ctx, "profile", "create", 0, err, start)
	if err != nil {
		return nil, mapError(err)
	}
	return &model.Profile{
		ID:           id,
		IsMale:       data.IsMale,
		YearOfBirth:  data.YearOfBirth,
		UserID:       data.UserID,
		MemberTypeID: data.MemberTypeID,
	}, nil
}

func (r *profileRepo) Update(ctx context.Context, id string, data model.ChangeProfile) (*model.Profile, error) {
	start := time.Now()
	sets := []string{}
	args := []any{id}
	if data.IsMale != nil {
		args = append(args, *data.IsMale)
		sets = append(sets, "is_male = $"+strconv.Itoa(len(args)))
	}
	if data.YearOfBirth != nil {
		args = append(args, *data.YearOfBirth)
		sets = append(sets, "year_of_birth = $"+strconv.Itoa(len(args)))
	}
	if data.MemberTypeID != nil {
		args = append(args, *data.MemberTypeID)
		sets = append(sets, "member_type_id = $"+strconv.Itoa(len(args)))
	}
	p := &model.Profile{}
	var err error
	if len(sets) == 0 {
		err = r.s.pool.QueryRow(ctx, profileSelect+` WHERE id::text = $1`, id).
			Scan(&p.ID, &p.IsMale, &p.YearOfBirth, &p.UserID, &p.MemberTypeID)
	} else {
		err = r.s.pool.QueryRow(ctx,
			`UPDATE profiles SET `+strings.Join(sets, ", ")+
				` WHERE id::text = $1 RETURNING id::text, is_male, year_of_birth, user_id::text, member_type_id`,
			args...).
			Scan(&p.ID, &p.IsMale, &p.YearOfBirth, &p.UserID, &p.MemberTypeID)
	}
	emit(ctx, "profile", "update", 0, err, start)
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *profileRepo) Delete(ctx context.Context, id string) error {
	start := time.Now()
	tag, err := r.s.pool.Exec(ctx, `DELETE FROM profiles WHERE id::text = $1`, id)
	if err == nil && tag.RowsAffected() == 0 {
		err = store.ErrNotFound
	}
	emit(ctx, "profile", "delete", 0, err, start)
	return mapError(err)
}
