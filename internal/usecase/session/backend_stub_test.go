package session

import (
	"context"
	"sync"

	"travel-panel/internal/domain"
)

// stubBackend satisfies domain.Backend for the session tests. Behaviors are
// overridable per test via the function fields.
type stubBackend struct {
	mu sync.Mutex

	doFunc       func(desc domain.RequestDescriptor) (domain.CallResult, error)
	commentsFunc func(mediaID string) ([]domain.Comment, error)

	currentUser    *domain.AuthUser
	currentUserErr error
	users          []domain.PanelUser
	usersErr       error
	cities         []domain.City
	places         map[string][]domain.Place

	feedbackErr  error
	feedbackFunc func(submission domain.FeedbackSubmission) error
	train        domain.TrainResult
	trainErr     error
	trainFunc    func() (domain.TrainResult, error)
	mlStatus     domain.MLStatus
	mlStatusErr  error

	ops          []string
	feedbackSent []domain.FeedbackSubmission
	commentCalls int
}

func (s *stubBackend) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, op)
}

func (s *stubBackend) opLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ops...)
}

func (s *stubBackend) Do(ctx context.Context, desc domain.RequestDescriptor) (domain.CallResult, error) {
	s.record("do:" + desc.Endpoint)
	if s.doFunc != nil {
		return s.doFunc(desc)
	}
	return domain.CallResult{Status: 200, Endpoint: desc.Endpoint, Payload: map[string]any{}}, nil
}

func (s *stubBackend) CurrentUser(ctx context.Context) (*domain.AuthUser, error) {
	s.record("current_user")
	return s.currentUser, s.currentUserErr
}

func (s *stubBackend) Users(ctx context.Context) ([]domain.PanelUser, error) {
	s.record("users")
	return s.users, s.usersErr
}

func (s *stubBackend) Cities(ctx context.Context) ([]domain.City, error) {
	s.record("cities")
	return s.cities, nil
}

func (s *stubBackend) PlacesByCity(ctx context.Context, cityID string) ([]domain.Place, error) {
	s.record("places:" + cityID)
	return s.places[cityID], nil
}

func (s *stubBackend) SubmitFeedback(ctx context.Context, submission domain.FeedbackSubmission) error {
	s.mu.Lock()
	s.feedbackSent = append(s.feedbackSent, submission)
	s.mu.Unlock()
	s.record("feedback")
	if s.feedbackFunc != nil {
		return s.feedbackFunc(submission)
	}
	return s.feedbackErr
}

func (s *stubBackend) Comments(ctx context.Context, mediaID string) ([]domain.Comment, error) {
	s.mu.Lock()
	s.commentCalls++
	s.mu.Unlock()
	s.record("comments:" + mediaID)
	if s.commentsFunc != nil {
		return s.commentsFunc(mediaID)
	}
	return nil, nil
}

func (s *stubBackend) commentCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commentCalls
}

func (s *stubBackend) sentFeedback() []domain.FeedbackSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.FeedbackSubmission(nil), s.feedbackSent...)
}

func (s *stubBackend) Train(ctx context.Context) (domain.TrainResult, error) {
	s.record("train")
	if s.trainFunc != nil {
		return s.trainFunc()
	}
	return s.train, s.trainErr
}

func (s *stubBackend) ModelStatus(ctx context.Context) (domain.MLStatus, error) {
	s.record("ml_status")
	return s.mlStatus, s.mlStatusErr
}

var _ domain.Backend = (*stubBackend)(nil)

// itemsPayload builds a decoded {items:[{mediaId:…}…]} payload.
func itemsPayload(mediaIDs ...string) map[string]any {
	items := make([]any, 0, len(mediaIDs))
	for _, id := range mediaIDs {
		items = append(items, map[string]any{"mediaId": id})
	}
	return map[string]any{"items": items}
}
