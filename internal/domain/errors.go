package domain

import (
	"errors"
	"fmt"
)

// APIError is a non-OK backend response carrying any server-provided detail.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("team5 api error: status=%d detail=%s", e.Status, e.Detail)
	}
	return fmt.Sprintf("team5 api error: status=%d", e.Status)
}

// ErrNoUser is returned when feedback is submitted without a selected user.
var ErrNoUser = errors.New("no user selected")

// ErrNotEligible is returned when feedback is submitted while the prompt is ineligible.
var ErrNotEligible = errors.New("feedback not eligible")

// ErrFeedbackLocked is returned when feedback is submitted while an earlier
// submission is still in flight or holding the prompt locked.
var ErrFeedbackLocked = errors.New("feedback already submitted")

// ErrNoRequest is returned for actions outside the closed action set.
var ErrNoRequest = errors.New("unknown action")

// ErrTrainBusy is returned when a training run is already in progress.
var ErrTrainBusy = errors.New("training already running")

// ErrSessionClosed is returned for calls after the session was torn down.
var ErrSessionClosed = errors.New("session closed")
