package domain

// Action identifies one of the panel's backend operations.
type Action string

const (
	ActionPopular      Action = "popular"
	ActionPersonalized Action = "personalized"
	ActionNearest      Action = "nearest"
	ActionWeather      Action = "weather"
	ActionOccasions    Action = "occasions"
	ActionRandom       Action = "random"
	ActionRatedHigh    Action = "rated-high"
	ActionRatedLow     Action = "rated-low"

	ActionUsers             Action = "users"
	ActionCities            Action = "cities"
	ActionPlaces            Action = "places"
	ActionMedia             Action = "media"
	ActionInterests         Action = "interests"
	ActionUserRatings       Action = "user-ratings"
	ActionABRecommendations Action = "ab-recommendations"
	ActionABSummary         Action = "ab-summary"
	ActionPing              Action = "ping"
)

// FeedbackActions are the recommendation actions that drive the feedback prompt.
var FeedbackActions = map[Action]bool{
	ActionPopular:      true,
	ActionPersonalized: true,
	ActionNearest:      true,
	ActionWeather:      true,
	ActionOccasions:    true,
	ActionRandom:       true,
}

// PrimaryActions are the actions rendered into the main card panel.
var PrimaryActions = map[Action]bool{
	ActionPopular:      true,
	ActionPersonalized: true,
	ActionNearest:      true,
	ActionWeather:      true,
	ActionOccasions:    true,
	ActionRandom:       true,
	ActionRatedHigh:    true,
	ActionRatedLow:     true,
}

// UtilityActions are the auxiliary/admin lookups. They never drive the feedback prompt.
var UtilityActions = map[Action]bool{
	ActionUsers:             true,
	ActionCities:            true,
	ActionPlaces:            true,
	ActionMedia:             true,
	ActionInterests:         true,
	ActionUserRatings:       true,
	ActionABRecommendations: true,
	ActionABSummary:         true,
	ActionPing:              true,
}

// NoUtilityCards lists utility actions whose payloads are recorded but never
// rendered as aux cards.
var NoUtilityCards = map[Action]bool{
	ActionUsers:  true,
	ActionCities: true,
	ActionPlaces: true,
}

// ActionLabels maps actions to their display labels.
var ActionLabels = map[Action]string{
	ActionUsers:             "Users",
	ActionCities:            "Cities",
	ActionPlaces:            "Places",
	ActionMedia:             "Media",
	ActionPopular:           "Popular",
	ActionNearest:           "Your Nearest",
	ActionWeather:           "Weather",
	ActionOccasions:         "Occasions",
	ActionRandom:            "Random",
	ActionPersonalized:      "Personalized",
	ActionInterests:         "Interests",
	ActionUserRatings:       "User Ratings",
	ActionABRecommendations: "AB Recommendations",
	ActionABSummary:         "AB Summary",
}

// ReasonLabels maps match-reason codes to their display text.
var ReasonLabels = map[string]string{
	"high_user_rating":            "به خاطر امتیاز بالای کاربر",
	"your_nearest":                "نزدیک‌ترین پیشنهاد براساس موقعیت شما",
	"ml_personalized":             "پیشنهاد شخصی‌سازی‌شده با مدل ML",
	"similar_topic":               "پیشنهاد مشابه موضوعی",
	"same_city":                   "پیشنهاد مشابه در همان شهر",
	"similar":                     "پیشنهاد مشابه",
	"weather_now":                 "پیشنهاد متناسب با فصل فعلی",
	"weather_snow":                "پیشنهاد برای هوای سرد و برفی",
	"weather_summer":              "پیشنهاد برای روزهای گرم تابستان",
	"occasion_bahman22":           "پیشنهاد ویژه 22 بهمن",
	"occasion_nowruz":             "پیشنهاد ویژه نوروز",
	"occasion_yalda":              "پیشنهاد ویژه شب یلدا",
	"occasion_christmas":          "پیشنهاد ویژه کریسمس",
	"occasion_imammahdi":          "پیشنهاد ویژه نیمه‌شعبان",
	"occasion_chaharshanbe_soori": "پیشنهاد ویژه چهارشنبه‌سوری",
	"occasion_sizdah_bedar":       "پیشنهاد ویژه سیزده‌بدر",
	"occasion_mehregan":           "پیشنهاد ویژه مهرگان",
	"random_explore":              "پیشنهاد رندوم برای کاربر کنجکاو",
	"comment_positive_signal":     "پیشنهاد شده مبنی بر نظر شما",
}

// Label returns the button label for an action, falling back to the action itself.
func Label(action Action) string {
	if label, ok := ActionLabels[action]; ok {
		return label
	}
	return string(action)
}

// SectionTitle returns the default section title for payloads produced by an action.
func SectionTitle(action Action) string {
	if label, ok := ActionLabels[action]; ok {
		return label
	}
	return "Items"
}

// IsKnown reports whether the action belongs to the closed action set.
func IsKnown(action Action) bool {
	return PrimaryActions[action] || UtilityActions[action]
}
