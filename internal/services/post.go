package services

import (
	"context"
	"strings"

	"github.com/inkwell-press/apiserver/types"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	List(ctx context.Context, authorID int) ([]types.Post, error)
	Get(ctx context.Context, id int) (types.Post, error)
	Create(ctx context.Context, post types.Post) (types.Post, error)
	Update(ctx context.Context, post types.Post) (types.Post, error)
	Delete(ctx context.Context, id int) error
}

// PostInput carries the writable post fields.
type PostInput struct {
	Title     string
	Content   string
	Summary   *string
	Thumbnail *string
}

// PostService encapsulates post use-cases and enforces ownership on
// every mutation.
type PostService struct {
	repo PostRepository
}

func NewPostService(repo PostRepository) *PostService {
	return &PostService{repo: repo}
}

// List returns posts newest-first; authorID == 0 means all authors.
func (s *PostService) List(ctx context.Context, authorID int) ([]types.Post, error) {
	return s.repo.List(ctx, authorID)
}

func (s *PostService) Get(ctx context.Context, id int) (types.Post, error) {
	return s.repo.Get(ctx, id)
}

func (s *PostService) Create(ctx context.Context, authorID int, input PostInput) (types.Post, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" || strings.TrimSpace(input.Content) == "" {
		return types.Post{}, ErrValidation
	}

	return s.repo.Create(ctx, types.Post{
		Title:     input.Title,
		Content:   input.Content,
		Summary:   input.Summary,
		Thumbnail: input.Thumbnail,
		AuthorID:  authorID,
	})
}

// Update mutates a post after checking the requester owns it.
func (s *PostService) Update(ctx context.Context, postID, requesterID int, input PostInput) (types.Post, error) {
	post, err := s.repo.Get(ctx, postID)
	if err != nil {
		return types.Post{}, err
	}
	if post.AuthorID != requesterID {
		return types.Post{}, ErrForbidden
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" || strings.TrimSpace(input.Content) == "" {
		return types.Post{}, ErrValidation
	}

	post.Title = input.Title
	post.Content = input.Content
	if input.Summary != nil {
		post.Summary = input.Summary
	}
	if input.Thumbnail != nil {
		post.Thumbnail = input.Thumbnail
	}
	return s.repo.Update(ctx, post)
}

// Delete removes a post and, through the store transaction, every
// comment attached to it.
func (s *PostService) Delete(ctx context.Context, postID, requesterID int) error {
	post, err := s.repo.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != requesterID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, postID)
}
