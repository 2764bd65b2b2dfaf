package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"travel-panel/internal/domain"
	"travel-panel/internal/infra/metrics"
)

// Timings are the feedback-lifecycle delays. Defaults match the panel's
// transition durations; tests shrink them.
type Timings struct {
	ShowDelay  time.Duration
	ExitDelay  time.Duration
	SubmitHold time.Duration
	ShinePulse time.Duration
	FlashPulse time.Duration
}

// DefaultTimings returns the production delays.
func DefaultTimings() Timings {
	return Timings{
		ShowDelay:  3000 * time.Millisecond,
		ExitDelay:  360 * time.Millisecond,
		SubmitHold: 2000 * time.Millisecond,
		ShinePulse: 2500 * time.Millisecond,
		FlashPulse: 1700 * time.Millisecond,
	}
}

// Config carries the session defaults.
type Config struct {
	CityID     string
	Limit      int
	ABVersion  string
	ABStrategy string
	Timings    Timings
}

// Session owns one recommendation session against the backend: it resolves
// actions into requests, keeps the last rendered state, and drives the
// feedback lifecycle and the comment cache.
type Session struct {
	mu      sync.Mutex
	backend domain.Backend
	log     zerolog.Logger
	timings Timings
	closed  bool

	userID      string
	currentUser *domain.AuthUser
	users       []domain.PanelUser
	cityID      string
	limit       int
	abVersion   string
	abStrategy  string

	citiesByID map[string]string
	placesByID map[string]domain.Place

	mainAction    domain.Action
	cardsPayload  any
	shownMediaIDs []string
	lastAuxAction domain.Action
	auxPayload    any
	status        domain.StatusBlock

	// gen guards against a slow earlier primary response overwriting a
	// faster later one: only the latest issued call may apply.
	gen uint64

	fb feedbackRuntime

	expanded map[string]bool
	threads  map[string]*domain.CommentThread

	training        bool
	trainingMessage string
}

// Overrides optionally replace the session selectors for one call.
type Overrides struct {
	UserID *string
	CityID *string
}

// New builds a session with its defaults applied.
func New(backend domain.Backend, logger zerolog.Logger, cfg Config) *Session {
	if cfg.CityID == "" {
		cfg.CityID = "tehran"
	}
	if cfg.ABVersion == "" {
		cfg.ABVersion = "AUTO"
	}
	if cfg.ABStrategy == "" {
		cfg.ABStrategy = "personalized"
	}
	if cfg.Timings == (Timings{}) {
		cfg.Timings = DefaultTimings()
	}
	return &Session{
		backend:    backend,
		log:        logger,
		timings:    cfg.Timings,
		cityID:     cfg.CityID,
		limit:      ClampLimit(cfg.Limit),
		abVersion:  cfg.ABVersion,
		abStrategy: cfg.ABStrategy,
		mainAction: domain.ActionPopular,
		citiesByID: map[string]string{},
		placesByID: map[string]domain.Place{},
		expanded:   map[string]bool{},
		threads:    map[string]*domain.CommentThread{},
		fb:         feedbackRuntime{state: domain.FeedbackState{Phase: domain.FeedbackHidden}},
	}
}

// Bootstrap runs the strictly sequential startup: reference data, current
// user, user list, then the first recommendation call.
func (s *Session) Bootstrap(ctx context.Context) error {
	s.loadReferenceData(ctx)

	user, err := s.backend.CurrentUser(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("session: current user lookup failed")
		user = nil
	}
	s.mu.Lock()
	s.currentUser = user
	s.mu.Unlock()

	preferredEmail := ""
	if user != nil {
		preferredEmail = user.Email
	}
	_, matched := s.loadUsers(ctx, preferredEmail)

	// anonymous sessions start on popular even when a fallback user was
	// selected from the list; personalized needs an authenticated match
	initial := domain.ActionPopular
	if matched {
		initial = domain.ActionPersonalized
	}
	return s.CallPrimary(ctx, initial, Overrides{})
}

func (s *Session) loadReferenceData(ctx context.Context) {
	cities, err := s.backend.Cities(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("session: cities load failed")
		return
	}
	cityMap := make(map[string]string, len(cities))
	for _, city := range cities {
		cityMap[city.CityID] = city.CityName
	}

	placeMap := map[string]domain.Place{}
	var placeMu sync.Mutex
	var wg sync.WaitGroup
	for _, city := range cities {
		wg.Add(1)
		go func(cityID string) {
			defer wg.Done()
			places, err := s.backend.PlacesByCity(ctx, cityID)
			if err != nil {
				// reference data is best effort, same as the panel
				s.log.Debug().Err(err).Str("city", cityID).Msg("session: places load failed")
				return
			}
			placeMu.Lock()
			for _, place := range places {
				placeMap[place.PlaceID] = place
			}
			placeMu.Unlock()
		}(city.CityID)
	}
	wg.Wait()

	s.mu.Lock()
	s.citiesByID = cityMap
	s.placesByID = placeMap
	s.mu.Unlock()
}

func (s *Session) loadUsers(ctx context.Context, preferredEmail string) (string, bool) {
	users, err := s.backend.Users(ctx)
	if err != nil {
		s.mu.Lock()
		s.status = domain.StatusBlock{Endpoint: "/team5/api/users/", Error: err.Error(), Network: true}
		s.mu.Unlock()
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = users

	wanted := strings.ToLower(strings.TrimSpace(preferredEmail))
	selected := ""
	matched := false
	if wanted != "" {
		for _, user := range users {
			if strings.ToLower(strings.TrimSpace(user.Email)) == wanted {
				selected = user.UserID
				matched = true
				break
			}
		}
	}
	if selected == "" {
		selected = s.userID
	}
	if selected == "" && len(users) > 0 {
		selected = users[0].UserID
	}
	if selected != "" {
		s.userID = selected
	}
	return selected, matched
}

func (s *Session) paramsLocked(over Overrides) Params {
	p := Params{
		UserID:     s.userID,
		CityID:     s.cityID,
		Limit:      s.limit,
		ABStrategy: s.abStrategy,
		ABVersion:  s.abVersion,
	}
	if over.UserID != nil {
		p.UserID = *over.UserID
	}
	if over.CityID != nil {
		p.CityID = *over.CityID
	}
	return p
}

// CallPrimary performs a primary recommendation action and, when this call is
// still the latest issued, rebuilds the rendered state from its payload.
func (s *Session) CallPrimary(ctx context.Context, action domain.Action, over Overrides) error {
	if !domain.PrimaryActions[action] {
		return domain.ErrNoRequest
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	s.gen++
	gen := s.gen
	params := s.paramsLocked(over)
	s.mu.Unlock()

	desc, ok := Resolve(action, params)
	if !ok {
		return domain.ErrNoRequest
	}
	metrics.PrimaryActionsTotal.WithLabelValues(string(action)).Inc()
	result, err := s.backend.Do(ctx, desc)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	if gen != s.gen {
		metrics.StaleResponsesDiscarded.Inc()
		s.log.Debug().Str("action", string(action)).Msg("session: stale primary response discarded")
		return nil
	}
	if err != nil {
		s.status = domain.StatusBlock{Endpoint: desc.Endpoint, Error: err.Error(), Network: true}
		return err
	}
	s.applyPrimaryLocked(action, result)
	return nil
}

func (s *Session) applyPrimaryLocked(action domain.Action, result domain.CallResult) {
	stopTimer(&s.fb.hideTimer)
	s.fb.state.Locked = false
	s.clearPulsesLocked()

	payload := result.Payload
	switch action {
	case domain.ActionRatedHigh:
		payload = rewrapRatedPayload(payload, "ratedHigh")
	case domain.ActionRatedLow:
		payload = rewrapRatedPayload(payload, "ratedLow")
	}
	shown := ExtractShownMediaIDs(payload)

	// submitted is sticky across an identical repeat of the same action;
	// only a change of the eligibility basis rearms the prompt
	if !domain.FeedbackActions[action] {
		s.fb.state.Submitted = true
	} else if action != s.mainAction || !equalIDs(shown, s.shownMediaIDs) {
		s.fb.state.Submitted = false
	}

	s.mainAction = action
	s.cardsPayload = payload
	s.shownMediaIDs = shown
	s.status = domain.StatusBlock{Status: result.Status, Endpoint: result.Endpoint, Data: result.Payload}
	s.reevaluateFeedbackLocked()
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// rewrapRatedPayload keeps only the matching rated list so the other one
// cannot leak into the sections or the shown-id basis.
func rewrapRatedPayload(payload any, field string) any {
	obj, ok := payload.(map[string]any)
	if !ok {
		return payload
	}
	list, _ := obj[field].([]any)
	if list == nil {
		list = []any{}
	}
	return map[string]any{field: list}
}

// CallUtility performs an auxiliary lookup. It never drives the prompt but
// its completion refreshes the status block and the aux payload.
func (s *Session) CallUtility(ctx context.Context, action domain.Action) error {
	if !domain.UtilityActions[action] {
		return domain.ErrNoRequest
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	params := s.paramsLocked(Overrides{})
	s.mu.Unlock()

	desc, ok := Resolve(action, params)
	if !ok {
		return domain.ErrNoRequest
	}
	metrics.UtilityActionsTotal.WithLabelValues(string(action)).Inc()
	result, err := s.backend.Do(ctx, desc)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	if err != nil {
		s.status = domain.StatusBlock{Endpoint: desc.Endpoint, Error: err.Error(), Network: true}
		return err
	}
	s.lastAuxAction = action
	s.auxPayload = result.Payload
	s.status = domain.StatusBlock{Status: result.Status, Endpoint: result.Endpoint, Data: result.Payload}
	s.reevaluateFeedbackLocked()
	return nil
}

// TrainModel runs the train call followed by the model-status lookup.
func (s *Session) TrainModel(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if s.training {
		s.mu.Unlock()
		return domain.ErrTrainBusy
	}
	s.training = true
	s.trainingMessage = "Training started..."
	s.mu.Unlock()

	trained, err := s.backend.Train(ctx)
	if err == nil {
		var status domain.MLStatus
		status, err = s.backend.ModelStatus(ctx)
		if err == nil {
			s.finishTraining(fmt.Sprintf("Train: %s | modelsReady=%t | mediaSamples=%d",
				trainVerdict(trained.Trained), status.ModelsReady, status.MediaRatingsSamples),
				map[string]any{"train": trained, "mlStatus": status})
			metrics.TrainRuns.WithLabelValues("success").Inc()
			return nil
		}
	}
	s.finishTraining("Train error: "+err.Error(), nil)
	metrics.TrainRuns.WithLabelValues("error").Inc()
	return err
}

func trainVerdict(trained bool) string {
	if trained {
		return "OK"
	}
	return "FAILED"
}

func (s *Session) finishTraining(message string, data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.training = false
	s.trainingMessage = message
	if data != nil {
		s.status = domain.StatusBlock{Status: 200, Endpoint: "/team5/api/train", Data: data}
	}
}

// SetUser selects the active user.
func (s *Session) SetUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = strings.TrimSpace(userID)
}

// SetCity commits the chosen city, e.g. after a nearest-city confirmation.
func (s *Session) SetCity(cityID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if trimmed := strings.TrimSpace(cityID); trimmed != "" {
		s.cityID = trimmed
	}
}

// SetLimit stores the clamped request limit.
func (s *Session) SetLimit(limit any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limit = ClampLimit(limit)
}

// SetABVersion stores the user-selected experiment version.
func (s *Session) SetABVersion(version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	version = strings.ToUpper(strings.TrimSpace(version))
	if version == "" {
		version = "AUTO"
	}
	s.abVersion = version
}

// SetABStrategy stores the A/B strategy selector.
func (s *Session) SetABStrategy(strategy string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strategy != "" {
		s.abStrategy = strategy
	}
}

// Close tears the session down and cancels every pending timer.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	stopTimer(&s.fb.showTimer)
	stopTimer(&s.fb.exitTimer)
	stopTimer(&s.fb.hideTimer)
	stopTimer(&s.fb.shineTimer)
	stopTimer(&s.fb.flashTimer)
}

// Snapshot is the externally observable session state.
type Snapshot struct {
	UserID        string                          `json:"userId"`
	Profile       domain.Profile                  `json:"profile"`
	Users         []domain.PanelUser              `json:"users"`
	CityID        string                          `json:"cityId"`
	Limit         int                             `json:"limit"`
	ABVersion     string                          `json:"abVersion"`
	ABStrategy    string                          `json:"abStrategy"`
	ActiveABGroup string                          `json:"activeAbGroup"`
	MainAction    domain.Action                   `json:"mainAction"`
	MainLabel     string                          `json:"mainActionLabel"`
	MainSections  []domain.Section                `json:"mainSections"`
	HasItems      bool                            `json:"hasItems"`
	ShownMediaIDs []string                        `json:"shownMediaIds"`
	LastAuxAction domain.Action                   `json:"lastAuxAction,omitempty"`
	LastAuxLabel  string                          `json:"lastAuxActionLabel,omitempty"`
	AuxSections   []domain.Section                `json:"auxSections,omitempty"`
	Status        domain.StatusBlock              `json:"status"`
	Feedback      domain.FeedbackState            `json:"feedback"`
	Training      bool                            `json:"training"`
	TrainingMsg   string                          `json:"trainingMessage,omitempty"`
	CitiesByID    map[string]string               `json:"citiesById"`
	PlacesByID    map[string]domain.Place         `json:"placesById"`
	Expanded      map[string]bool                 `json:"expandedComments"`
	Comments      map[string]domain.CommentThread `json:"comments"`
}

// Snapshot renders the current state. Sections are recomputed per call, never
// stored.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	mainSections := annotateSections(NormalizeSections(s.cardsPayload, s.mainAction))
	var auxSections []domain.Section
	if s.auxPayload != nil && !domain.NoUtilityCards[s.lastAuxAction] {
		auxSections = annotateSections(NormalizeSections(s.auxPayload, s.lastAuxAction))
	}
	auxLabel := ""
	if s.lastAuxAction != "" {
		auxLabel = domain.Label(s.lastAuxAction)
	}
	expanded := make(map[string]bool, len(s.expanded))
	for k, v := range s.expanded {
		expanded[k] = v
	}
	threads := make(map[string]domain.CommentThread, len(s.threads))
	for k, v := range s.threads {
		threads[k] = *v
	}
	return Snapshot{
		UserID:        s.userID,
		Profile:       domain.ProfileOf(s.currentUser),
		Users:         append([]domain.PanelUser(nil), s.users...),
		CityID:        s.cityID,
		Limit:         s.limit,
		ABVersion:     s.abVersion,
		ABStrategy:    s.abStrategy,
		ActiveABGroup: ResolveABGroup(s.auxPayload, s.abVersion),
		MainAction:    s.mainAction,
		MainLabel:     domain.Label(s.mainAction),
		MainSections:  mainSections,
		HasItems:      HasRenderableItems(mainSections),
		ShownMediaIDs: append([]string(nil), s.shownMediaIDs...),
		LastAuxAction: s.lastAuxAction,
		LastAuxLabel:  auxLabel,
		AuxSections:   auxSections,
		Status:        s.status,
		Feedback:      s.fb.state,
		Training:      s.training,
		TrainingMsg:   s.trainingMessage,
		CitiesByID:    s.citiesByID,
		PlacesByID:    s.placesByID,
		Expanded:      expanded,
		Comments:      threads,
	}
}
