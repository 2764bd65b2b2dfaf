package domain

import (
	"strings"
	"unicode/utf8"
)

// RequestDescriptor is a resolved backend request. Built fresh per call, never
// retained. Operation labels the request metrics, one value per action.
type RequestDescriptor struct {
	Endpoint  string
	Method    string
	Operation string
}

// Section is a titled, ordered group of media items derived from a payload.
// Items keep their decoded JSON shape: the backend is free to extend them.
type Section struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Items    []any  `json:"items"`
}

// Comment is one entry of a media comment thread.
type Comment struct {
	CommentID string  `json:"commentId"`
	MediaID   string  `json:"mediaId"`
	UserID    string  `json:"userId"`
	Text      string  `json:"text"`
	Sentiment string  `json:"sentiment,omitempty"`
	Score     float64 `json:"score,omitempty"`
	CreatedAt string  `json:"createdAt,omitempty"`
}

// CommentStatus tracks the fetch state of one cached thread.
type CommentStatus string

const (
	CommentsLoading CommentStatus = "loading"
	CommentsLoaded  CommentStatus = "loaded"
	CommentsError   CommentStatus = "error"
)

// CommentThread is a per-media cache entry. Populated at most once per id.
type CommentThread struct {
	Status CommentStatus `json:"status"`
	Items  []Comment     `json:"items"`
	Error  string        `json:"error,omitempty"`
}

// AuthUser is the authenticated user returned by the auth collaborator.
type AuthUser struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// PanelUser is one entry of the backend user list.
type PanelUser struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
}

// City is one reference-data city.
type City struct {
	CityID   string `json:"cityId"`
	CityName string `json:"cityName"`
}

// Place is one reference-data place.
type Place struct {
	PlaceID   string `json:"placeId"`
	PlaceName string `json:"placeName"`
	CityID    string `json:"cityId"`
}

// Profile is the rendered identity of the current user.
type Profile struct {
	Initials string `json:"initials"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ProfileOf derives the displayable profile, with guest fallbacks.
func ProfileOf(user *AuthUser) Profile {
	var fn, ln, email string
	if user != nil {
		fn = strings.TrimSpace(user.FirstName)
		ln = strings.TrimSpace(user.LastName)
		email = strings.TrimSpace(user.Email)
	}
	initials := upperInitial(fn) + upperInitial(ln)
	if initials == "" {
		initials = upperInitial(email)
	}
	if initials == "" {
		initials = "G"
	}
	fullName := strings.TrimSpace(fn + " " + ln)
	if fullName == "" {
		fullName = "Guest User"
	}
	username := "@guest"
	if email != "" {
		username = "@" + strings.SplitN(email, "@", 2)[0]
	}
	displayEmail := email
	if displayEmail == "" {
		displayEmail = "not signed in"
	}
	return Profile{Initials: initials, FullName: fullName, Username: username, Email: displayEmail}
}

// MediaIDFromItem extracts the media identifier of a decoded item, looking
// through the embedded media sub-object when the item itself has none.
func MediaIDFromItem(item any) string {
	m, ok := item.(map[string]any)
	if !ok {
		return ""
	}
	if id := stringField(m, "mediaId"); id != "" {
		return id
	}
	if media, ok := m["media"].(map[string]any); ok {
		return stringField(media, "mediaId")
	}
	return ""
}

// upperInitial takes the first rune, not the first byte, so non-Latin names
// keep a valid initial.
func upperInitial(s string) string {
	if s == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r))
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

// FeedbackPhase names the lifecycle states of the feedback prompt.
type FeedbackPhase string

const (
	FeedbackHidden   FeedbackPhase = "hidden"
	FeedbackMounting FeedbackPhase = "mounting"
	FeedbackVisible  FeedbackPhase = "visible"
	FeedbackExiting  FeedbackPhase = "exiting"
)

// FeedbackState is the externally observable state of the feedback prompt.
// Invariants: Visible implies Mounted; Exiting implies Mounted and not Visible.
type FeedbackState struct {
	Phase      FeedbackPhase `json:"phase"`
	Mounted    bool          `json:"mounted"`
	Visible    bool          `json:"visible"`
	Exiting    bool          `json:"exiting"`
	Locked     bool          `json:"locked"`
	Submitted  bool          `json:"submitted"`
	Submitting bool          `json:"submitting"`
	Message    string        `json:"message"`
	Shine      bool          `json:"shine"`
	Flash      bool          `json:"flash"`
}

// FeedbackSubmission is the write payload of the feedback endpoint.
type FeedbackSubmission struct {
	UserID        string   `json:"userId"`
	Action        Action   `json:"action"`
	Liked         bool     `json:"liked"`
	Version       string   `json:"version"`
	ShownMediaIDs []string `json:"shownMediaIds"`
}

// TrainResult is the decoded train response.
type TrainResult struct {
	Trained bool `json:"trained"`
}

// MLStatus is the decoded model-status response.
type MLStatus struct {
	ModelsReady         bool `json:"modelsReady"`
	MediaRatingsSamples int  `json:"mediaRatingsSamples"`
}

// CallResult is the outcome of one completed backend fetch.
type CallResult struct {
	Status   int
	Endpoint string
	Payload  any
}

// StatusBlock mirrors the last completed call for the raw JSON panel.
type StatusBlock struct {
	Status   int    `json:"status,omitempty"`
	Endpoint string `json:"endpoint"`
	Data     any    `json:"data,omitempty"`
	Error    string `json:"error,omitempty"`
	Network  bool   `json:"networkError,omitempty"`
}
