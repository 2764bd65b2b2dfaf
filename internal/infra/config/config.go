package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig describes the panel daemon configuration.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`

	Backend struct {
		BaseURL       string        `envconfig:"TEAM5_BASE_URL" default:"http://localhost:8000"`
		SessionCookie string        `envconfig:"TEAM5_SESSION_COOKIE"`
		Timeout       time.Duration `envconfig:"TEAM5_HTTP_TIMEOUT" default:"10s"`
	} `envconfig:""`

	Defaults struct {
		CityID     string `envconfig:"PANEL_CITY_ID" default:"tehran"`
		Limit      int    `envconfig:"PANEL_LIMIT" default:"5"`
		ABVersion  string `envconfig:"PANEL_AB_VERSION" default:"AUTO"`
		ABStrategy string `envconfig:"PANEL_AB_STRATEGY" default:"personalized"`
	} `envconfig:""`

	Feedback struct {
		ShowDelay  time.Duration `envconfig:"FEEDBACK_SHOW_DELAY" default:"3s"`
		ExitDelay  time.Duration `envconfig:"FEEDBACK_EXIT_DELAY" default:"360ms"`
		SubmitHold time.Duration `envconfig:"FEEDBACK_SUBMIT_HOLD" default:"2s"`
		ShinePulse time.Duration `envconfig:"FEEDBACK_SHINE_PULSE" default:"2500ms"`
		FlashPulse time.Duration `envconfig:"FEEDBACK_FLASH_PULSE" default:"1700ms"`
	} `envconfig:""`
}

// Load reads the config from the environment.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}
