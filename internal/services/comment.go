package services

import (
	"context"
	"strings"

	"github.com/inkwell-press/apiserver/types"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	ListByPost(ctx context.Context, postID int) ([]types.Comment, error)
	Get(ctx context.Context, id int) (types.Comment, error)
	Create(ctx context.Context, comment types.Comment) (types.Comment, error)
	Delete(ctx context.Context, id int) error
}

// CommentService encapsulates comment use-cases.
type CommentService struct {
	comments CommentRepository
	posts    PostRepository
}

func NewCommentService(comments CommentRepository, posts PostRepository) *CommentService {
	return &CommentService{comments: comments, posts: posts}
}

func (s *CommentService) ListByPost(ctx context.Context, postID int) ([]types.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

// Create adds a comment to an existing post.
func (s *CommentService) Create(ctx context.Context, postID, userID int, content string) (types.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return types.Comment{}, ErrValidation
	}

	if _, err := s.posts.Get(ctx, postID); err != nil {
		return types.Comment{}, err
	}

	return s.comments.Create(ctx, types.Comment{
		Content: content,
		PostID:  postID,
		UserID:  userID,
	})
}

// Delete removes a comment after checking the requester authored it.
func (s *CommentService) Delete(ctx context.Context, commentID, requesterID int) error {
	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != requesterID {
		return ErrForbidden
	}
	return s.comments.Delete(ctx, commentID)
}
