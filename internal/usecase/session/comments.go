package session

import (
	"context"
	"errors"
	"strings"

	"travel-panel/internal/domain"
	"travel-panel/internal/infra/metrics"
)

const msgCommentsFailed = "خطا در دریافت کامنت‌ها"

// ToggleComments collapses an open thread or expands it. The first expansion
// for an identifier issues exactly one fetch: the cache entry is created
// before the call starts, so a repeat toggle while the fetch is in flight
// finds the entry and issues nothing. Reopened threads come from cache.
func (s *Session) ToggleComments(ctx context.Context, mediaID string) error {
	key := strings.TrimSpace(mediaID)
	if key == "" {
		return nil
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if s.expanded[key] {
		s.expanded[key] = false
		s.mu.Unlock()
		return nil
	}
	s.expanded[key] = true
	if _, ok := s.threads[key]; ok {
		s.mu.Unlock()
		return nil
	}
	thread := &domain.CommentThread{Status: domain.CommentsLoading}
	s.threads[key] = thread
	s.mu.Unlock()

	metrics.CommentFetches.Inc()
	items, err := s.backend.Comments(ctx, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		thread.Status = domain.CommentsError
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			thread.Error = apiErr.Detail
		} else if errors.As(err, &apiErr) {
			thread.Error = msgCommentsFailed
		} else {
			thread.Error = err.Error()
		}
		return err
	}
	if items == nil {
		items = []domain.Comment{}
	}
	thread.Status = domain.CommentsLoaded
	thread.Items = items
	return nil
}

// CommentThread returns the cached thread for a media id, if any.
func (s *Session) CommentThread(mediaID string) (domain.CommentThread, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	thread, ok := s.threads[strings.TrimSpace(mediaID)]
	if !ok {
		return domain.CommentThread{}, false
	}
	return *thread, true
}
