package services

import (
	"context"
	"errors"

	"github.com/inkwell-press/apiserver/types"
)

// FollowRepository defines persistence operations for follow edges.
type FollowRepository interface {
	Create(ctx context.Context, followerID, followeeID int) error
	Delete(ctx context.Context, followerID, followeeID int) error
	Exists(ctx context.Context, followerID, followeeID int) (bool, error)
	FollowerIDs(ctx context.Context, userID int) ([]int, error)
	FollowingIDs(ctx context.Context, userID int) ([]int, error)
}

// SocialService maintains the directed follow graph. Queries stop at
// one hop: edge existence and follower/following id sets.
type SocialService struct {
	users   UserRepository
	follows FollowRepository
}

func NewSocialService(users UserRepository, follows FollowRepository) *SocialService {
	return &SocialService{users: users, follows: follows}
}

// Follow inserts the follower -> followee edge. Self-follows are
// rejected before any lookup, so they fail the same way whether or not
// the user exists.
func (s *SocialService) Follow(ctx context.Context, followerID, followeeID int) error {
	if followerID == followeeID {
		return ErrSelfFollow
	}

	if _, err := s.users.GetByID(ctx, followeeID); err != nil {
		return err
	}

	exists, err := s.follows.Exists(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrConflict
	}

	// The composite key on follows closes the race between the check
	// above and this insert; a losing writer gets ErrConflict.
	return s.follows.Create(ctx, followerID, followeeID)
}

// Unfollow removes the follower -> followee edge.
func (s *SocialService) Unfollow(ctx context.Context, followerID, followeeID int) error {
	if followerID == followeeID {
		return ErrSelfFollow
	}

	if _, err := s.users.GetByID(ctx, followeeID); err != nil {
		return err
	}

	if err := s.follows.Delete(ctx, followerID, followeeID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFollowing
		}
		return err
	}
	return nil
}

// IsFollowing reports whether the follower -> followee edge exists.
func (s *SocialService) IsFollowing(ctx context.Context, followerID, followeeID int) (bool, error) {
	return s.follows.Exists(ctx, followerID, followeeID)
}

// Profile assembles a user's profile with one-hop follower and
// following id lists. includeEmail distinguishes the owner's view from
// the public one.
func (s *SocialService) Profile(ctx context.Context, userID int, includeEmail bool) (types.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return types.Profile{}, err
	}

	followerIDs, err := s.follows.FollowerIDs(ctx, userID)
	if err != nil {
		return types.Profile{}, err
	}
	followingIDs, err := s.follows.FollowingIDs(ctx, userID)
	if err != nil {
		return types.Profile{}, err
	}

	profile := types.Profile{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
		Bio:       user.Bio,
		Avatar:    user.Avatar,
		Followers: toRefs(followerIDs),
		Following: toRefs(followingIDs),
	}
	if includeEmail {
		profile.Email = user.Email
	}
	return profile, nil
}

func toRefs(ids []int) []types.UserRef {
	refs := make([]types.UserRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, types.UserRef{ID: id})
	}
	return refs
}
