package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/inkwell-press/apiserver/types"
)

// CommentRepository handles persistence for comments.
type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// ListByPost returns a post's comments newest-first.
func (r *CommentRepository) ListByPost(ctx context.Context, postID int) ([]types.Comment, error) {
	const query = `
		SELECT c.id, c.content, c.post_id, c.user_id, c.created_at,
			u.id, u.first_name, u.last_name, u.username, u.avatar
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at DESC, c.id DESC`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]types.Comment, 0)
	for rows.Next() {
		var comment types.Comment
		var user types.UserSummary
		var avatar sql.NullString
		if err := rows.Scan(
			&comment.ID,
			&comment.Content,
			&comment.PostID,
			&comment.UserID,
			&comment.CreatedAt,
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Username,
			&avatar,
		); err != nil {
			return nil, err
		}
		if avatar.Valid {
			user.Avatar = &avatar.String
		}
		comment.User = &user
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (r *CommentRepository) Get(ctx context.Context, id int) (types.Comment, error) {
	const query = `
		SELECT id, content, post_id, user_id, created_at
		FROM comments
		WHERE id = $1`
	var comment types.Comment
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID,
		&comment.Content,
		&comment.PostID,
		&comment.UserID,
		&comment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Comment{}, ErrNotFound
		}
		return types.Comment{}, err
	}
	return comment, nil
}

func (r *CommentRepository) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	comment.CreatedAt = time.Now()

	const query = `
		INSERT INTO comments (content, post_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		comment.Content,
		comment.PostID,
		comment.UserID,
		comment.CreatedAt,
	).Scan(&comment.ID); err != nil {
		return types.Comment{}, err
	}
	return comment, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM comments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
