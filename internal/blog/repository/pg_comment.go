package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/MarkovDN/pulseblog/internal/blog/domain"
	"github.com/MarkovDN/pulseblog/internal/common/db"
)

type PgCommentRepository struct {
	pool *pgxpool.Pool
}

func NewPgCommentRepository(pool *pgxpool.Pool) *PgCommentRepository {
	return &PgCommentRepository{pool: pool}
}

func (r *PgCommentRepository) Create(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO comments (post_id, author_id, text)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		int64(comment.PostID),
		comment.Author.ID,
		comment.Text,
	)

	err := row.Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return domain.Comment{}, db.HandleExecError(err, "create comment", start)
	}
	db.MeasureQueryDuration("create comment", start)

	return comment, nil
}

func (r *PgCommentRepository) ListByPost(ctx context.Context, postID domain.PostID) ([]domain.Comment, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT c.id, c.post_id, c.author_id, u.username, c.text, c.created_at
		 FROM comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.post_id = $1
		 ORDER BY c.created_at ASC, c.id ASC`,
		int64(postID),
	)
	if err != nil {
		return nil, db.HandleExecError(err, "list comments", start)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Author.ID, &c.Author.Username, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}
	db.MeasureQueryDuration("list comments", start)

	return comments, nil
}
