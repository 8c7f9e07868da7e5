package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/inkwell-press/apiserver/types"
)

// PostRepository handles persistence for posts.
type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const postSelect = `
	SELECT p.id, p.title, p.content, p.summary, p.thumbnail, p.author_id, p.created_at, p.updated_at,
		u.id, u.first_name, u.last_name, u.username, u.avatar
	FROM posts p
	JOIN users u ON u.id = p.author_id`

func scanPost(scan func(dest ...any) error) (types.Post, error) {
	var post types.Post
	var summary, thumbnail, authorAvatar sql.NullString
	var author types.UserSummary
	err := scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&summary,
		&thumbnail,
		&post.AuthorID,
		&post.CreatedAt,
		&post.UpdatedAt,
		&author.ID,
		&author.FirstName,
		&author.LastName,
		&author.Username,
		&authorAvatar,
	)
	if err != nil {
		return types.Post{}, err
	}
	if summary.Valid {
		post.Summary = &summary.String
	}
	if thumbnail.Valid {
		post.Thumbnail = &thumbnail.String
	}
	if authorAvatar.Valid {
		author.Avatar = &authorAvatar.String
	}
	post.Author = &author
	return post, nil
}

// List returns all posts newest-first, optionally filtered by author.
// authorID == 0 means no filter. The result is fully materialized; this
// design has no pagination.
func (r *PostRepository) List(ctx context.Context, authorID int) ([]types.Post, error) {
	query := postSelect + `
	ORDER BY p.created_at DESC, p.id DESC`
	args := []any{}
	if authorID != 0 {
		query = postSelect + `
	WHERE p.author_id = $1
	ORDER BY p.created_at DESC, p.id DESC`
		args = append(args, authorID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]types.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows.Scan)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *PostRepository) Get(ctx context.Context, id int) (types.Post, error) {
	query := postSelect + `
	WHERE p.id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Post{}, ErrNotFound
		}
		return types.Post{}, err
	}
	return post, nil
}

func (r *PostRepository) Create(ctx context.Context, post types.Post) (types.Post, error) {
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	const query = `
		INSERT INTO posts (title, content, summary, thumbnail, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		post.Title,
		post.Content,
		post.Summary,
		post.Thumbnail,
		post.AuthorID,
		post.CreatedAt,
		post.UpdatedAt,
	).Scan(&post.ID); err != nil {
		return types.Post{}, err
	}
	return post, nil
}

func (r *PostRepository) Update(ctx context.Context, post types.Post) (types.Post, error) {
	post.UpdatedAt = time.Now()

	const query = `
		UPDATE posts
		SET title = $1,
			content = $2,
			summary = $3,
			thumbnail = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		post.Title,
		post.Content,
		post.Summary,
		post.Thumbnail,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return types.Post{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Post{}, err
	}
	if affected == 0 {
		return types.Post{}, ErrNotFound
	}
	return post, nil
}

// Delete removes a post and all of its comments in one transaction, so
// the cascade is explicit rather than delegated to the schema.
func (r *PostRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = $1`, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
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

	return tx.Commit()
}
