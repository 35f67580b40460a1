package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/MarkovDN/pulseblog/internal/blog/domain"
	"github.com/MarkovDN/pulseblog/internal/common/db"
	commonerrors "github.com/MarkovDN/pulseblog/internal/common/errors"
)

const postColumns = `p.id, p.text, p.author_id, u.username, g.id, g.slug, g.title, p.image_path, p.created_at`

const postFrom = `
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN groups g ON g.id = p.group_id`

type PgPostRepository struct {
	pool *pgxpool.Pool
}

func NewPgPostRepository(pool *pgxpool.Pool) *PgPostRepository {
	return &PgPostRepository{pool: pool}
}

func (r *PgPostRepository) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	start := time.Now()

	var groupID any
	if post.Group != nil {
		groupID = int64(post.Group.ID)
	}

	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO posts (text, author_id, group_id, image_path)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		post.Text,
		post.Author.ID,
		groupID,
		post.ImagePath,
	)

	err := row.Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return domain.Post{}, db.HandleExecError(err, "create post", start)
	}
	db.MeasureQueryDuration("create post", start)

	return post, nil
}

func (r *PgPostRepository) GetByID(ctx context.Context, id domain.PostID) (domain.Post, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+postColumns+postFrom+` WHERE p.id = $1`,
		int64(id),
	)

	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, commonerrors.ErrPostNotFound
		}
		return domain.Post{}, fmt.Errorf("failed to get post by id: %w", err)
	}
	db.MeasureQueryDuration("get post by id", start)

	return post, nil
}

func (r *PgPostRepository) Update(ctx context.Context, post domain.Post) error {
	start := time.Now()

	var groupID any
	if post.Group != nil {
		groupID = int64(post.Group.ID)
	}

	tag, err := r.pool.Exec(
		ctx,
		`UPDATE posts SET text = $1, group_id = $2, image_path = $3 WHERE id = $4`,
		post.Text,
		groupID,
		post.ImagePath,
		int64(post.ID),
	)
	if err != nil {
		return db.HandleExecError(err, "update post", start)
	}
	if tag.RowsAffected() == 0 {
		return commonerrors.ErrPostNotFound
	}
	db.MeasureQueryDuration("update post", start)

	return nil
}

func (r *PgPostRepository) Count(ctx context.Context, filter domain.Filter) (int, error) {
	start := time.Now()
	where, args := filterClause(filter)

	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+postFrom+where, args...).Scan(&count)
	if err != nil {
		return 0, db.HandleExecError(err, "count feed posts", start)
	}
	db.MeasureQueryDuration("count feed posts", start)

	return count, nil
}

func (r *PgPostRepository) List(ctx context.Context, filter domain.Filter, limit, offset int) ([]domain.Post, error) {
	start := time.Now()
	where, args := filterClause(filter)

	query := fmt.Sprintf(
		`SELECT %s%s%s ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d`,
		postColumns, postFrom, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.HandleExecError(err, "list feed posts", start)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}
	db.MeasureQueryDuration("list feed posts", start)

	return posts, nil
}

// filterClause builds the WHERE fragment for a feed filter. The followed
// filter matches posts whose author has a follow edge from the viewer.
func filterClause(filter domain.Filter) (string, []any) {
	switch filter.Mode {
	case domain.FilterByGroup:
		return ` WHERE p.group_id = $1`, []any{int64(filter.GroupID)}
	case domain.FilterByAuthor:
		return ` WHERE p.author_id = $1`, []any{filter.AuthorID}
	case domain.FilterFollowed:
		return ` WHERE p.author_id IN (SELECT author_id FROM follows WHERE follower_id = $1)`,
			[]any{filter.FollowerID}
	default:
		return ``, nil
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (domain.Post, error) {
	var (
		post       domain.Post
		groupID    *int64
		groupSlug  *string
		groupTitle *string
	)

	err := row.Scan(
		&post.ID,
		&post.Text,
		&post.Author.ID,
		&post.Author.Username,
		&groupID,
		&groupSlug,
		&groupTitle,
		&post.ImagePath,
		&post.CreatedAt,
	)
	if err != nil {
		return domain.Post{}, err
	}

	if groupID != nil {
		post.Group = &domain.GroupRef{
			ID:    domain.GroupID(*groupID),
			Slug:  *groupSlug,
			Title: *groupTitle,
		}
	}

	return post, nil
}
