package pgstore

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/graphfeed/graphfeed/internal/model"
)

type memberTypeRepo struct{ s *Store }

const memberTypeSelect = `SELECT id, discount, posts_limit_per_month FROM member_types`

func scanMemberTypes(rows pgx.Rows) ([]*model.MemberType, error) {
	defer rows.Close()
	var out []*model.MemberType
	for rows.Next() {
		mt := &model.MemberType{}
		if err := rows.Scan(&mt.ID, &mt.Discount, &mt.PostsLimitPerMonth); err != nil {
			return nil, err
		}
		out = append(out, mt)
	}
	return out, rows.Err()
}

func (r *memberTypeRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.MemberType, error) {
	start := time.Now()
	rows, err := r.s.pool.Query(ctx, memberTypeSelect+` WHERE id = ANY($1)`, ids)
	if err != nil {
		emit(ctx, "memberType", "findByIds", len(ids), err, start)
		return nil, mapError(err)
	}
	mts, err := scanMemberTypes(rows)
	emit(ctx, "memberType", "findByIds", len(ids), err, start)
	return mts, mapError(err)
}

func (r *memberTypeRepo) FindAll(ctx context.Context) ([]*model.MemberType, error) {
	start := time.Now()
	rows, err := r.s.pool.Query(ctx, memberTypeSelect+` ORDER BY id`)
	if err != nil {
		emit(ctx, "memberType", "findAll", 0, err, start)
		return nil, mapError(err)
	}
	mts, err := scanMemberTypes(rows)
	emit(ctx, "memberType", "findAll", 0, err, start)
	return mts, mapError(err)
}
