package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/MarkovDN/pulseblog/internal/blog/domain"
	commonerrors "github.com/MarkovDN/pulseblog/internal/common/errors"
)

type GroupRepository struct {
	db *sql.DB
}

func NewGroupRepository(db *sql.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, group domain.Group) (domain.Group, error) {
	res, err := r.db.ExecContext(
		ctx,
		`INSERT INTO groups (title, slug, description) VALUES (?, ?, ?)`,
		group.Title,
		group.Slug,
		group.Description,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.Group{}, commonerrors.ErrGroupSlugAlreadyExists
		}
		return domain.Group{}, fmt.Errorf("failed to create group: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Group{}, fmt.Errorf("failed to read group id: %w", err)
	}
	group.ID = domain.GroupID(id)

	return group, nil
}

func (r *GroupRepository) GetBySlug(ctx context.Context, slug string) (domain.Group, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, title, slug, description FROM groups WHERE slug = ?`,
		slug,
	)

	var group domain.Group
	err := row.Scan(&group.ID, &group.Title, &group.Slug, &group.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Group{}, commonerrors.ErrGroupNotFound
		}
		return domain.Group{}, fmt.Errorf("failed to get group by slug: %w", err)
	}

	return group, nil
}

const sqlitePostColumns = `p.id, p.text, p.author_id, u.username, g.id, g.slug, g.title, p.image_path, p.created_at`

const sqlitePostFrom = `
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN groups g ON g.id = p.group_id`

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	var groupID any
	if post.Group != nil {
		groupID = int64(post.Group.ID)
	}

	res, err := r.db.ExecContext(
		ctx,
		`INSERT INTO posts (text, author_id, group_id, image_path) VALUES (?, ?, ?, ?)`,
		post.Text,
		post.Author.ID,
		groupID,
		post.ImagePath,
	)
	if err != nil {
		return domain.Post{}, fmt.Errorf("failed to create post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Post{}, fmt.Errorf("failed to read post id: %w", err)
	}

	return r.GetByID(ctx, domain.PostID(id))
}

func (r *PostRepository) GetByID(ctx context.Context, id domain.PostID) (domain.Post, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+sqlitePostColumns+sqlitePostFrom+` WHERE p.id = ?`,
		int64(id),
	)

	post, err := scanSQLitePost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, commonerrors.ErrPostNotFound
		}
		return domain.Post{}, fmt.Errorf("failed to get post by id: %w", err)
	}

	return post, nil
}

func (r *PostRepository) Update(ctx context.Context, post domain.Post) error {
	var groupID any
	if post.Group != nil {
		groupID = int64(post.Group.ID)
	}

	res, err := r.db.ExecContext(
		ctx,
		`UPDATE posts SET text = ?, group_id = ?, image_path = ? WHERE id = ?`,
		post.Text,
		groupID,
		post.ImagePath,
		int64(post.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return commonerrors.ErrPostNotFound
	}

	return nil
}

func (r *PostRepository) Count(ctx context.Context, filter domain.Filter) (int, error) {
	where, args := sqliteFilterClause(filter)

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+sqlitePostFrom+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}

	return count, nil
}

func (r *PostRepository) List(ctx context.Context, filter domain.Filter, limit, offset int) ([]domain.Post, error) {
	where, args := sqliteFilterClause(filter)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+sqlitePostColumns+sqlitePostFrom+where+` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanSQLitePost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return posts, nil
}

func sqliteFilterClause(filter domain.Filter) (string, []any) {
	switch filter.Mode {
	case domain.FilterByGroup:
		return ` WHERE p.group_id = ?`, []any{int64(filter.GroupID)}
	case domain.FilterByAuthor:
		return ` WHERE p.author_id = ?`, []any{filter.AuthorID}
	case domain.FilterFollowed:
		return ` WHERE p.author_id IN (SELECT author_id FROM follows WHERE follower_id = ?)`,
			[]any{filter.FollowerID}
	default:
		return ``, nil
	}
}

type sqliteRowScanner interface {
	Scan(dest ...any) error
}

func scanSQLitePost(row sqliteRowScanner) (domain.Post, error) {
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

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	res, err := r.db.ExecContext(
		ctx,
		`INSERT INTO comments (post_id, author_id, text) VALUES (?, ?, ?)`,
		int64(comment.PostID),
		comment.Author.ID,
		comment.Text,
	)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Comment{}, fmt.Errorf("failed to read comment id: %w", err)
	}
	comment.ID = domain.CommentID(id)

	row := r.db.QueryRowContext(ctx, `SELECT created_at FROM comments WHERE id = ?`, id)
	if err := row.Scan(&comment.CreatedAt); err != nil {
		return domain.Comment{}, fmt.Errorf("failed to read comment timestamp: %w", err)
	}

	return comment, nil
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID domain.PostID) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT c.id, c.post_id, c.author_id, u.username, c.text, c.created_at
		 FROM comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.post_id = ?
		 ORDER BY c.created_at ASC, c.id ASC`,
		int64(postID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
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

	return comments, nil
}

type FollowRepository struct {
	db *sql.DB
}

func NewFollowRepository(db *sql.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) Create(ctx context.Context, followerID, authorID string) error {
	if followerID == authorID {
		return commonerrors.ErrSelfFollow
	}

	_, err := r.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO follows (follower_id, author_id) VALUES (?, ?)`,
		followerID,
		authorID,
	)
	if err != nil {
		return fmt.Errorf("failed to create follow: %w", err)
	}

	return nil
}

func (r *FollowRepository) Delete(ctx context.Context, followerID, authorID string) error {
	res, err := r.db.ExecContext(
		ctx,
		`DELETE FROM follows WHERE follower_id = ? AND author_id = ?`,
		followerID,
		authorID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return commonerrors.ErrFollowNotFound
	}

	return nil
}

func (r *FollowRepository) Exists(ctx context.Context, followerID, authorID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = ? AND author_id = ?)`,
		followerID,
		authorID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}

	return exists, nil
}
