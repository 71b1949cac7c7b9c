package service

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jaehkim-quant/research-platform/internal/content/domain"
	contentrepo "github.com/jaehkim-quant/research-platform/internal/content/repository"
	"github.com/jaehkim-quant/research-platform/internal/platform/apierror"
	"github.com/jaehkim-quant/research-platform/internal/telemetry"
)

// Comment limits in characters.
const (
	CommentNameMax    = 50
	CommentContentMax = 2000
)

var (
	ErrCommentRequired    = apierror.New(apierror.ErrBadRequest, "Name and content are required")
	ErrCommentTooLong     = apierror.New(apierror.ErrBadRequest, "Name max 50 chars, content max 2000 chars")
	ErrInvalidReplyTarget = apierror.New(apierror.ErrBadRequest, "Can only reply to top-level comments")
)

// CommentInput is the body of POST /api/posts/{id}/comments.
type CommentInput struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	ParentID string `json:"parentId"`
}

// CommentService manages reader comments.
type CommentService struct {
	base
	comments contentrepo.CommentRepository
	posts    contentrepo.PostRepository
}

func NewCommentService(comments contentrepo.CommentRepository, posts contentrepo.PostRepository, opts ...Option) *CommentService {
	return &CommentService{base: newBase(opts), comments: comments, posts: posts}
}

// List returns top-level comments newest first, each with its replies oldest first.
func (s *CommentService) List(ctx context.Context, postID string) ([]*domain.Comment, error) {
	all, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return thread(all), nil
}

func thread(all []*domain.Comment) []*domain.Comment {
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	byID := make(map[string]*domain.Comment, len(all))
	top := make([]*domain.Comment, 0, len(all))
	for _, c := range all {
		if c.TopLevel() {
			c.Replies = []*domain.Comment{}
			byID[c.ID] = c
			top = append(top, c)
		}
	}
	for _, c := range all {
		if c.TopLevel() {
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, c)
		}
	}
	for i, j := 0, len(top)-1; i < j; i, j = i+1, j-1 {
		top[i], top[j] = top[j], top[i]
	}
	return top
}

func (s *CommentService) Create(ctx context.Context, postID string, in CommentInput) (*domain.Comment, error) {
	name := strings.TrimSpace(in.Name)
	content := strings.TrimSpace(in.Content)
	if name == "" || content == "" {
		return nil, ErrCommentRequired
	}
	if utf8.RuneCountInString(name) > CommentNameMax || utf8.RuneCountInString(content) > CommentContentMax {
		return nil, ErrCommentTooLong
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || !post.Published {
		return nil, ErrPostNotFound
	}
	now := s.now()
	c := &domain.Comment{ID: s.newID(now), PostID: postID, Name: name, Content: content, CreatedAt: now}
	if parentID := strings.TrimSpace(in.ParentID); parentID != "" {
		parent, err := s.comments.GetByID(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || !parent.TopLevel() || parent.PostID != postID {
			return nil, ErrInvalidReplyTarget
		}
		c.ParentID = &parent.ID
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	s.emit(ctx, telemetry.EventCommentCreated, map[string]string{"post_id": postID, "comment_id": c.ID})
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, postID, id string) error {
	found, err := s.comments.Delete(ctx, postID, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrCommentNotFound
	}
	return nil
}
