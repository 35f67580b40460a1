package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/MarkovDN/pulseblog/internal/blog/domain"
	"github.com/MarkovDN/pulseblog/internal/common/db"
	commonerrors "github.com/MarkovDN/pulseblog/internal/common/errors"
)

type PgGroupRepository struct {
	pool *pgxpool.Pool
}

func NewPgGroupRepository(pool *pgxpool.Pool) *PgGroupRepository {
	return &PgGroupRepository{pool: pool}
}

func (r *PgGroupRepository) Create(ctx context.Context, group domain.Group) (domain.Group, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO groups (title, slug, description) VALUES ($1, $2, $3) RETURNING id`,
		group.Title,
		group.Slug,
		group.Description,
	)

	err := row.Scan(&group.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Group{}, commonerrors.ErrGroupSlugAlreadyExists
		}
		return domain.Group{}, db.HandleExecError(err, "create group", start)
	}
	db.MeasureQueryDuration("create group", start)

	return group, nil
}

func (r *PgGroupRepository) GetBySlug(ctx context.Context, slug string) (domain.Group, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, title, slug, description FROM groups WHERE slug = $1`,
		slug,
	)

	var group domain.Group
	err := row.Scan(&group.ID, &group.Title, &group.Slug, &group.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Group{}, commonerrors.ErrGroupNotFound
		}
		return domain.Group{}, db.HandleQueryError(err, commonerrors.ErrGroupNotFound, "get group by slug", start)
	}
	db.MeasureQueryDuration("get group by slug", start)

	return group, nil
}
