package service

import (
	"context"

	"github.com/jaehkim-quant/research-platform/internal/content/domain"
	contentrepo "github.com/jaehkim-quant/research-platform/internal/content/repository"
)

// LikeService toggles likes keyed by client address.
type LikeService struct {
	base
	likes contentrepo.LikeRepository
	posts contentrepo.PostRepository
}

func NewLikeService(likes contentrepo.LikeRepository, posts contentrepo.PostRepository, opts ...Option) *LikeService {
	return &LikeService{base: newBase(opts), likes: likes, posts: posts}
}

func (s *LikeService) Status(ctx context.Context, postID, clientKey string) (domain.LikeStatus, error) {
	return s.likes.Status(ctx, postID, clientKey)
}

// Toggle likes the post for clientKey, or removes the existing like.
func (s *LikeService) Toggle(ctx context.Context, postID, clientKey string) (domain.LikeStatus, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return domain.LikeStatus{}, err
	}
	if post == nil || !post.Published {
		return domain.LikeStatus{}, ErrPostNotFound
	}
	now := s.now()
	return s.likes.Toggle(ctx, postID, clientKey, s.newID(now), now)
}
