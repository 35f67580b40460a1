package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/MarkovDN/pulseblog/internal/common/db"
	commonerrors "github.com/MarkovDN/pulseblog/internal/common/errors"
)

type PgFollowRepository struct {
	pool *pgxpool.Pool
}

func NewPgFollowRepository(pool *pgxpool.Pool) *PgFollowRepository {
	return &PgFollowRepository{pool: pool}
}

// Create upserts the follow edge. Self-follows are rejected here, not left
// to call sites.
func (r *PgFollowRepository) Create(ctx context.Context, followerID, authorID string) error {
	if followerID == authorID {
		return commonerrors.ErrSelfFollow
	}

	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO follows (follower_id, author_id) VALUES ($1, $2)
		 ON CONFLICT (follower_id, author_id) DO NOTHING`,
		followerID,
		authorID,
	)
	if err != nil {
		return db.HandleExecError(err, "create follow", start)
	}
	db.MeasureQueryDuration("create follow", start)

	return nil
}

func (r *PgFollowRepository) Delete(ctx context.Context, followerID, authorID string) error {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND author_id = $2`,
		followerID,
		authorID,
	)
	if err != nil {
		return db.HandleExecError(err, "delete follow", start)
	}
	if tag.RowsAffected() == 0 {
		return commonerrors.ErrFollowNotFound
	}
	db.MeasureQueryDuration("delete follow", start)

	return nil
}

func (r *PgFollowRepository) Exists(ctx context.Context, followerID, authorID string) (bool, error) {
	start := time.Now()

	var exists bool
	err := r.pool.QueryRow(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND author_id = $2)`,
		followerID,
		authorID,
	).Scan(&exists)
	if err != nil {
		return false, db.HandleExecError(err, "check follow exists", start)
	}
	db.MeasureQueryDuration("check follow exists", start)

	return exists, nil
}
