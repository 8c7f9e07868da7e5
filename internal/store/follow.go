package store

import (
	"context"
	"database/sql"
	"time"
)

// FollowRepository handles persistence for directed follow edges.
type FollowRepository struct {
	db *sql.DB
}

func NewFollowRepository(db *sql.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Create inserts the (follower, followee) edge. A concurrent duplicate
// insert trips the composite primary key and surfaces as ErrConflict.
func (r *FollowRepository) Create(ctx context.Context, followerID, followeeID int) error {
	const query = `
		INSERT INTO follows (follower_id, followee_id, created_at)
		VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, followerID, followeeID, time.Now()); err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

// Delete removes the (follower, followee) edge. ErrNotFound means the
// edge did not exist.
func (r *FollowRepository) Delete(ctx context.Context, followerID, followeeID int) error {
	const query = `
		DELETE FROM follows
		WHERE follower_id = $1 AND followee_id = $2`
	result, err := r.db.ExecContext(ctx, query, followerID, followeeID)
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

func (r *FollowRepository) Exists(ctx context.Context, followerID, followeeID int) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM follows
			WHERE follower_id = $1 AND followee_id = $2
		)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, followerID, followeeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// FollowerIDs returns the ids of users following the given user.
func (r *FollowRepository) FollowerIDs(ctx context.Context, userID int) ([]int, error) {
	const query = `
		SELECT follower_id FROM follows
		WHERE followee_id = $1
		ORDER BY follower_id`
	return r.queryIDs(ctx, query, userID)
}

// FollowingIDs returns the ids of users the given user follows.
func (r *FollowRepository) FollowingIDs(ctx context.Context, userID int) ([]int, error) {
	const query = `
		SELECT followee_id FROM follows
		WHERE follower_id = $1
		ORDER BY followee_id`
	return r.queryIDs(ctx, query, userID)
}

func (r *FollowRepository) queryIDs(ctx context.Context, query string, userID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
