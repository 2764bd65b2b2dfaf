package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"travel-panel/internal/domain"
	"travel-panel/internal/infra/metrics"
)

// User-facing feedback messages, kept verbatim from the panel.
const (
	msgSelectUser     = "ابتدا یک کاربر انتخاب کن."
	msgNothingToRate  = "فعلا آیتمی برای ثبت فیدبک وجود ندارد."
	msgLiked          = "ممنون از فیدبک مثبت، خوشحالیم خوشت اومده."
	msgDisliked       = "برای دیدن پیشنهادهای جدید، مجدد وارد همین صفحه شوید."
	msgSubmitFailed   = "ثبت فیدبک ناموفق بود."
	msgSubmitErrorFmt = "خطا در ثبت فیدبک: "
)

// feedbackRuntime is the prompt state machine plus its armed timers. One
// timer per lifecycle state; each is stopped before it is ever rearmed.
type feedbackRuntime struct {
	state      domain.FeedbackState
	showTimer  *time.Timer
	exitTimer  *time.Timer
	hideTimer  *time.Timer
	shineTimer *time.Timer
	flashTimer *time.Timer
}

func stopTimer(t **time.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

// FeedbackEligible reports whether the prompt may be shown for the current
// action and shown-media basis.
func (s *Session) FeedbackEligible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedbackEligibleLocked()
}

func (s *Session) feedbackEligibleLocked() bool {
	return domain.FeedbackActions[s.mainAction] && len(s.shownMediaIDs) > 0 && !s.fb.state.Submitted
}

// reevaluateFeedbackLocked runs on every change of the eligibility basis: it
// clears any pending message and (re)arms the appropriate transition timer.
func (s *Session) reevaluateFeedbackLocked() {
	s.fb.state.Message = ""
	stopTimer(&s.fb.showTimer)
	stopTimer(&s.fb.exitTimer)

	if s.feedbackEligibleLocked() {
		s.fb.state.Mounted = true
		s.fb.state.Visible = false
		s.fb.state.Exiting = false
		s.fb.state.Phase = domain.FeedbackMounting
		s.armShowTimerLocked()
		return
	}
	if s.fb.state.Mounted {
		s.fb.state.Visible = false
		s.fb.state.Exiting = true
		s.fb.state.Phase = domain.FeedbackExiting
		s.armExitTimerLocked()
	}
}

func (s *Session) armShowTimerLocked() {
	var t *time.Timer
	t = time.AfterFunc(s.timings.ShowDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.fb.showTimer != t {
			return
		}
		s.fb.showTimer = nil
		s.fb.state.Visible = true
		s.fb.state.Phase = domain.FeedbackVisible
	})
	s.fb.showTimer = t
}

func (s *Session) armExitTimerLocked() {
	var t *time.Timer
	t = time.AfterFunc(s.timings.ExitDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.fb.exitTimer != t {
			return
		}
		s.fb.exitTimer = nil
		s.fb.state.Mounted = false
		s.fb.state.Exiting = false
		s.fb.state.Phase = domain.FeedbackHidden
	})
	s.fb.exitTimer = t
}

// SubmitFeedback sends a like/dislike for the currently shown set. Local
// validation failures never reach the network; a backend failure leaves the
// prompt visible and unlocked so the user may retry.
func (s *Session) SubmitFeedback(ctx context.Context, liked bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	// the lock is enforced here, not by the caller: a submission in flight or
	// holding the prompt locked never reaches the backend twice
	if s.fb.state.Locked || s.fb.state.Submitting {
		s.mu.Unlock()
		return domain.ErrFeedbackLocked
	}
	userID := strings.TrimSpace(s.userID)
	if userID == "" {
		s.fb.state.Message = msgSelectUser
		s.mu.Unlock()
		return domain.ErrNoUser
	}
	if !s.feedbackEligibleLocked() {
		s.fb.state.Message = msgNothingToRate
		s.mu.Unlock()
		return domain.ErrNotEligible
	}
	s.fb.state.Submitting = true
	submission := domain.FeedbackSubmission{
		UserID:        userID,
		Action:        s.mainAction,
		Liked:         liked,
		Version:       ResolveABGroup(s.auxPayload, s.abVersion),
		ShownMediaIDs: append([]string(nil), s.shownMediaIDs...),
	}
	s.mu.Unlock()

	err := s.backend.SubmitFeedback(ctx, submission)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fb.state.Submitting = false
	if s.closed {
		return domain.ErrSessionClosed
	}
	if err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) {
			if apiErr.Detail != "" {
				s.fb.state.Message = apiErr.Detail
			} else {
				s.fb.state.Message = msgSubmitFailed
			}
			metrics.FeedbackSubmissions.WithLabelValues("rejected").Inc()
		} else {
			s.fb.state.Message = msgSubmitErrorFmt + err.Error()
			metrics.FeedbackSubmissions.WithLabelValues("error").Inc()
		}
		return err
	}

	if liked {
		s.fb.state.Message = msgLiked
		s.pulseShineLocked()
		metrics.FeedbackSubmissions.WithLabelValues("liked").Inc()
	} else {
		s.fb.state.Message = msgDisliked
		s.pulseFlashLocked()
		metrics.FeedbackSubmissions.WithLabelValues("disliked").Inc()
	}
	s.fb.state.Locked = true
	s.armHideTimerLocked()
	return nil
}

// armHideTimerLocked schedules the terminal post-submit update, replacing any
// previously pending hide.
func (s *Session) armHideTimerLocked() {
	stopTimer(&s.fb.hideTimer)
	var t *time.Timer
	t = time.AfterFunc(s.timings.SubmitHold, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.fb.hideTimer != t {
			return
		}
		s.fb.hideTimer = nil
		s.fb.state.Submitted = true
		s.fb.state.Visible = false
		s.fb.state.Locked = false
		// submitted flipped the eligibility basis
		s.reevaluateFeedbackLocked()
	})
	s.fb.hideTimer = t
}

// The shine/flash pulses are cosmetic flags with self-clearing timers,
// independent of the lifecycle states.

func (s *Session) pulseShineLocked() {
	stopTimer(&s.fb.shineTimer)
	s.fb.state.Shine = true
	var t *time.Timer
	t = time.AfterFunc(s.timings.ShinePulse, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.fb.shineTimer != t {
			return
		}
		s.fb.shineTimer = nil
		s.fb.state.Shine = false
	})
	s.fb.shineTimer = t
}

func (s *Session) pulseFlashLocked() {
	stopTimer(&s.fb.flashTimer)
	s.fb.state.Flash = true
	var t *time.Timer
	t = time.AfterFunc(s.timings.FlashPulse, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.fb.flashTimer != t {
			return
		}
		s.fb.flashTimer = nil
		s.fb.state.Flash = false
	})
	s.fb.flashTimer = t
}

func (s *Session) clearPulsesLocked() {
	stopTimer(&s.fb.shineTimer)
	stopTimer(&s.fb.flashTimer)
	s.fb.state.Shine = false
	s.fb.state.Flash = false
}

// FeedbackState returns a copy of the prompt state.
func (s *Session) FeedbackState() domain.FeedbackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fb.state
}
