package domain

import "context"

// Backend is the black-box recommendation API the session drives.
type Backend interface {
	// Do performs a resolved read request and returns the decoded payload,
	// falling back to the raw body text when decoding fails.
	Do(ctx context.Context, desc RequestDescriptor) (CallResult, error)

	CurrentUser(ctx context.Context) (*AuthUser, error)
	Users(ctx context.Context) ([]PanelUser, error)
	Cities(ctx context.Context) ([]City, error)
	PlacesByCity(ctx context.Context, cityID string) ([]Place, error)

	SubmitFeedback(ctx context.Context, submission FeedbackSubmission) error
	Comments(ctx context.Context, mediaID string) ([]Comment, error)

	Train(ctx context.Context) (TrainResult, error)
	ModelStatus(ctx context.Context) (MLStatus, error)
}
