package session

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"travel-panel/internal/domain"
)

// Params carries the current selectors a request is resolved against.
type Params struct {
	UserID     string
	CityID     string
	Limit      int
	ABStrategy string
	ABVersion  string
}

const (
	defaultLimit   = 5
	minLimit       = 1
	maxLimit       = 100
	randomMinLimit = 10
	abSummaryDays  = 30
)

// ClampLimit normalizes an arbitrary limit input to an integer in [1,100].
// Non-finite, unparsable or absent input yields the default of 5.
func ClampLimit(v any) int {
	var parsed float64
	switch value := v.(type) {
	case nil:
		return defaultLimit
	case int:
		parsed = float64(value)
	case int64:
		parsed = float64(value)
	case float64:
		parsed = value
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return defaultLimit
		}
		parsed = f
	default:
		return defaultLimit
	}
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return defaultLimit
	}
	n := int(math.Floor(parsed))
	if n < minLimit {
		return minLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

// Resolve maps an action plus the current selectors to a request descriptor.
// Unknown actions resolve to no request. Pure, no side effects.
func Resolve(action domain.Action, p Params) (domain.RequestDescriptor, bool) {
	limit := ClampLimit(p.Limit)
	user := url.QueryEscape(strings.TrimSpace(p.UserID))
	city := url.QueryEscape(strings.TrimSpace(p.CityID))

	var endpoint string
	switch action {
	case domain.ActionRatedHigh, domain.ActionRatedLow, domain.ActionMedia:
		endpoint = fmt.Sprintf("/team5/api/media/?userId=%s", user)
	case domain.ActionCities:
		endpoint = "/team5/api/cities/"
	case domain.ActionPlaces:
		endpoint = fmt.Sprintf("/team5/api/places/city/%s/", url.PathEscape(strings.TrimSpace(p.CityID)))
	case domain.ActionUsers:
		endpoint = "/team5/api/users/"
	case domain.ActionUserRatings:
		endpoint = fmt.Sprintf("/team5/api/users/%s/ratings/", url.PathEscape(strings.TrimSpace(p.UserID)))
	case domain.ActionPopular:
		endpoint = fmt.Sprintf("/team5/api/recommendations/popular/?limit=%d&userId=%s", limit, user)
	case domain.ActionRandom:
		// at least 10 items so the pool stays diverse
		endpoint = fmt.Sprintf("/team5/api/recommendations/random/?limit=%d&userId=%s", max(randomMinLimit, limit), user)
	case domain.ActionNearest:
		endpoint = fmt.Sprintf("/team5/api/recommendations/nearest/?limit=%d&cityId=%s&userId=%s", limit, city, user)
	case domain.ActionWeather:
		endpoint = fmt.Sprintf("/team5/api/recommendations/weather/?limit=%d&userId=%s", limit, user)
	case domain.ActionOccasions:
		endpoint = fmt.Sprintf("/team5/api/recommendations/occasions/?limit=%d&userId=%s", limit, user)
	case domain.ActionPersonalized:
		endpoint = fmt.Sprintf("/team5/api/recommendations/personalized/?userId=%s&limit=%d", user, limit)
	case domain.ActionInterests:
		endpoint = fmt.Sprintf("/team5/api/users/%s/interests/", url.PathEscape(strings.TrimSpace(p.UserID)))
	case domain.ActionABRecommendations:
		endpoint = fmt.Sprintf("/team5/api/recommendations/?userId=%s&limit=%d&strategy=%s&version=%s",
			user, limit, url.QueryEscape(p.ABStrategy), url.QueryEscape(p.ABVersion))
	case domain.ActionABSummary:
		endpoint = fmt.Sprintf("/team5/api/recommendations/ab/summary/?days=%d", abSummaryDays)
	case domain.ActionPing:
		endpoint = "/team5/ping/"
	default:
		return domain.RequestDescriptor{}, false
	}
	return domain.RequestDescriptor{Endpoint: endpoint, Method: http.MethodGet, Operation: string(action)}, true
}
