package services

import (
	"context"
	"testing"

	"github.com/inkwell-press/apiserver/internal/store/storetest"
	"github.com/stretchr/testify/require"
)

type contentFixture struct {
	users    *UserService
	posts    *PostService
	comments *CommentService
}

func newContentFixture() contentFixture {
	st := storetest.New()
	return contentFixture{
		users:    NewUserService(st.Users()),
		posts:    NewPostService(st.Posts()),
		comments: NewCommentService(st.Comments(), st.Posts()),
	}
}

func TestCreatePostValidation(t *testing.T) {
	f := newContentFixture()
	alice := mustRegister(t, f.users, "alice@x.com", "alice")

	_, err := f.posts.Create(context.Background(), alice.ID, PostInput{Title: "", Content: "body"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.posts.Create(context.Background(), alice.ID, PostInput{Title: "Hi", Content: ""})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdatePostOwnership(t *testing.T) {
	f := newContentFixture()
	alice := mustRegister(t, f.users, "alice@x.com", "alice")
	bob := mustRegister(t, f.users, "bob@x.com", "bob")

	post, err := f.posts.Create(context.Background(), alice.ID, PostInput{Title: "Hi", Content: "World"})
	require.NoError(t, err)

	_, err = f.posts.Update(context.Background(), post.ID, bob.ID, PostInput{Title: "Hacked", Content: "x"})
	require.ErrorIs(t, err, ErrForbidden)

	err = f.posts.Delete(context.Background(), post.ID, bob.ID)
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := f.posts.Update(context.Background(), post.ID, alice.ID, PostInput{Title: "Hi again", Content: "World"})
	require.NoError(t, err)
	require.Equal(t, "Hi again", updated.Title)
}

func TestUpdateMissingPost(t *testing.T) {
	f := newContentFixture()
	alice := mustRegister(t, f.users, "alice@x.com", "alice")

	_, err := f.posts.Update(context.Background(), 42, alice.ID, PostInput{Title: "x", Content: "y"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePostCascadesComments(t *testing.T) {
	f := newContentFixture()
	alice := mustRegister(t, f.users, "alice@x.com", "alice")
	bob := mustRegister(t, f.users, "bob@x.com", "bob")

	post, err := f.posts.Create(context.Background(), alice.ID, PostInput{Title: "Hi", Content: "World"})
	require.NoError(t, err)

	comment, err := f.comments.Create(context.Background(), post.ID, bob.ID, "nice post")
	require.NoError(t, err)

	require.NoError(t, f.posts.Delete(context.Background(), post.ID, alice.ID))

	_, err = f.posts.Get(context.Background(), post.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// The comment went with the post.
	err = f.comments.Delete(context.Background(), comment.ID, bob.ID)
	require.ErrorIs(t, err, ErrNotFound)

	remaining, err := f.comments.ListByPost(context.Background(), post.ID)
	require.NoError(t, err)
	require.Empty(t, remaining)
}

func TestListPostsNewestFirst(t *testing.T) {
	f := newContentFixture()
	alice := mustRegister(t, f.users, "alice@x.com", "alice")
	bob := mustRegister(t, f.users, "bob@x.com", "bob")

	first, err := f.posts.Create(context.Background(), alice.ID, PostInput{Title: "first", Content: "a"})
	require.NoError(t, err)
	second, err := f.posts.Create(context.Background(), bob.ID, PostInput{Title: "second", Content: "b"})
	require.NoError(t, err)

	all, err := f.posts.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, second.ID, all[0].ID)
	require.Equal(t, first.ID, all[1].ID)
	require.NotNil(t, all[0].Author)
	require.Equal(t, "bob", all[0].Author.Username)

	byAlice, err := f.posts.List(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, byAlice, 1)
	require.Equal(t, first.ID, byAlice[0].ID)
}

func TestCommentValidationAndOwnership(t *testing.T) {
	f := newContentFixture()
	alice := mustRegister(t, f.users, "alice@x.com", "alice")
	bob := mustRegister(t, f.users, "bob@x.com", "bob")

	post, err := f.posts.Create(context.Background(), alice.ID, PostInput{Title: "Hi", Content: "World"})
	require.NoError(t, err)

	_, err = f.comments.Create(context.Background(), post.ID, bob.ID, "  ")
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.comments.Create(context.Background(), 999, bob.ID, "hello")
	require.ErrorIs(t, err, ErrNotFound)

	comment, err := f.comments.Create(context.Background(), post.ID, bob.ID, "hello")
	require.NoError(t, err)

	require.ErrorIs(t, f.comments.Delete(context.Background(), comment.ID, alice.ID), ErrForbidden)
	require.NoError(t, f.comments.Delete(context.Background(), comment.ID, bob.ID))
}
