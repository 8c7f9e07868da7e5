// Package storetest provides in-memory repository implementations that
// mirror the SQL store's contract, including its unique-constraint and
// cascade behavior. Service and handler tests run against these instead
// of a live database.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/inkwell-press/apiserver/internal/store"
	"github.com/inkwell-press/apiserver/types"
)

// Store holds all in-memory state behind one mutex. Sub-repositories
// share it, so cross-entity behavior (comment cascade on post delete)
// matches the SQL transaction.
type Store struct {
	mu sync.Mutex

	users    map[int]types.User
	follows  map[[2]int]bool
	posts    map[int]types.Post
	comments map[int]types.Comment

	nextUserID    int
	nextPostID    int
	nextCommentID int

	now time.Time
}

func New() *Store {
	return &Store{
		users:         make(map[int]types.User),
		follows:       make(map[[2]int]bool),
		posts:         make(map[int]types.Post),
		comments:      make(map[int]types.Comment),
		nextUserID:    1,
		nextPostID:    1,
		nextCommentID: 1,
		now:           time.Now(),
	}
}

// tick returns strictly increasing timestamps so newest-first ordering
// is deterministic even for back-to-back writes.
func (s *Store) tick() time.Time {
	s.now = s.now.Add(time.Millisecond)
	return s.now
}

func (s *Store) Users() *UserRepo       { return &UserRepo{s: s} }
func (s *Store) Follows() *FollowRepo   { return &FollowRepo{s: s} }
func (s *Store) Posts() *PostRepo       { return &PostRepo{s: s} }
func (s *Store) Comments() *CommentRepo { return &CommentRepo{s: s} }

// UserRepo is the in-memory services.UserRepository.
type UserRepo struct {
	s *Store
}

func (r *UserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *UserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return types.User{}, store.ErrConflict
		}
	}
	user.ID = r.s.nextUserID
	r.s.nextUserID++
	now := r.s.tick()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = user
	return user, nil
}

func (r *UserRepo) Update(ctx context.Context, user types.User) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	for _, existing := range r.s.users {
		if existing.ID != user.ID && (existing.Email == user.Email || existing.Username == user.Username) {
			return types.User{}, store.ErrConflict
		}
	}
	user.UpdatedAt = r.s.tick()
	r.s.users[user.ID] = user
	return user, nil
}

func (r *UserRepo) SetAvatar(ctx context.Context, id int, avatar string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Avatar = &avatar
	user.UpdatedAt = r.s.tick()
	r.s.users[id] = user
	return nil
}

// FollowRepo is the in-memory services.FollowRepository.
type FollowRepo struct {
	s *Store
}

func (r *FollowRepo) Create(ctx context.Context, followerID, followeeID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]int{followerID, followeeID}
	if r.s.follows[key] {
		return store.ErrConflict
	}
	r.s.follows[key] = true
	return nil
}

func (r *FollowRepo) Delete(ctx context.Context, followerID, followeeID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]int{followerID, followeeID}
	if !r.s.follows[key] {
		return store.ErrNotFound
	}
	delete(r.s.follows, key)
	return nil
}

func (r *FollowRepo) Exists(ctx context.Context, followerID, followeeID int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.follows[[2]int{followerID, followeeID}], nil
}

func (r *FollowRepo) FollowerIDs(ctx context.Context, userID int) ([]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]int, 0)
	for key := range r.s.follows {
		if key[1] == userID {
			ids = append(ids, key[0])
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (r *FollowRepo) FollowingIDs(ctx context.Context, userID int) ([]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]int, 0)
	for key := range r.s.follows {
		if key[0] == userID {
			ids = append(ids, key[1])
		}
	}
	sort.Ints(ids)
	return ids, nil
}

// PostRepo is the in-memory services.PostRepository.
type PostRepo struct {
	s *Store
}

func (r *PostRepo) List(ctx context.Context, authorID int) ([]types.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	posts := make([]types.Post, 0)
	for _, post := range r.s.posts {
		if authorID != 0 && post.AuthorID != authorID {
			continue
		}
		posts = append(posts, r.s.withAuthor(post))
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	return posts, nil
}

func (r *PostRepo) Get(ctx context.Context, id int) (types.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	post, ok := r.s.posts[id]
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	return r.s.withAuthor(post), nil
}

// Create returns the bare row without the author embed, matching the
// SQL store, which only scans the generated id back.
func (r *PostRepo) Create(ctx context.Context, post types.Post) (types.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	post.ID = r.s.nextPostID
	r.s.nextPostID++
	now := r.s.tick()
	post.CreatedAt = now
	post.UpdatedAt = now
	r.s.posts[post.ID] = post
	return post, nil
}

func (r *PostRepo) Update(ctx context.Context, post types.Post) (types.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.posts[post.ID]
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	post.CreatedAt = existing.CreatedAt
	post.AuthorID = existing.AuthorID
	post.UpdatedAt = r.s.tick()
	post.Author = nil
	r.s.posts[post.ID] = post
	return r.s.withAuthor(post), nil
}

// Delete removes the post and its comments, mirroring the SQL store's
// explicit cascade transaction.
func (r *PostRepo) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return store.ErrNotFound
	}
	for commentID, comment := range r.s.comments {
		if comment.PostID == id {
			delete(r.s.comments, commentID)
		}
	}
	delete(r.s.posts, id)
	return nil
}

// CommentRepo is the in-memory services.CommentRepository.
type CommentRepo struct {
	s *Store
}

func (r *CommentRepo) ListByPost(ctx context.Context, postID int) ([]types.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comments := make([]types.Comment, 0)
	for _, comment := range r.s.comments {
		if comment.PostID == postID {
			comments = append(comments, r.s.withUser(comment))
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.After(comments[j].CreatedAt)
		}
		return comments[i].ID > comments[j].ID
	})
	return comments, nil
}

func (r *CommentRepo) Get(ctx context.Context, id int) (types.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comment, ok := r.s.comments[id]
	if !ok {
		return types.Comment{}, store.ErrNotFound
	}
	return comment, nil
}

// Create returns the bare row without the user embed, matching the
// SQL store, which only scans the generated id back.
func (r *CommentRepo) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	comment.ID = r.s.nextCommentID
	r.s.nextCommentID++
	comment.CreatedAt = r.s.tick()
	r.s.comments[comment.ID] = comment
	return comment, nil
}

func (r *CommentRepo) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (s *Store) withAuthor(post types.Post) types.Post {
	if user, ok := s.users[post.AuthorID]; ok {
		post.Author = &types.UserSummary{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Username:  user.Username,
			Avatar:    user.Avatar,
		}
	}
	return post
}

func (s *Store) withUser(comment types.Comment) types.Comment {
	if user, ok := s.users[comment.UserID]; ok {
		comment.User = &types.UserSummary{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Username:  user.Username,
			Avatar:    user.Avatar,
		}
	}
	return comment
}
