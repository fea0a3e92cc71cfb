package config

import (
	"time"

	"github.com/rpupo63/portfolio-intake-backend/errs"
)

var defaultAllowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}

// Settings is the typed view of the process configuration, read once at startup.
type Settings struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string

	DatabaseURL        string
	DatabaseReplicaURL string
	StoreTimeout       time.Duration

	ResendAPIKey    string
	ResendFromEmail string
	NotifyToEmail   string
	EmailTimeout    time.Duration

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	OperatorPhone    string

	OperatorName  string
	OperatorEmail string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	GenerateQueries bool
}

// Load builds Settings from an environment map. A missing DATABASE_URL is fatal.
func Load(c map[string]string) (Settings, error) {
	s := Settings{
		Port:           GetString(c, "PORT", "8080"),
		AllowedOrigins: GetStringSlice(c, "ALLOWED_ORIGINS", defaultAllowedOrigins),
		LogLevel:       GetString(c, "LOG_LEVEL", "info"),

		DatabaseURL:        GetString(c, "DATABASE_URL", ""),
		DatabaseReplicaURL: GetString(c, "DATABASE_REPLICA_URL", ""),
		StoreTimeout:       seconds(c, "STORE_TIMEOUT_SECONDS", 5),

		ResendAPIKey:    GetString(c, "RESEND_API_KEY", ""),
		ResendFromEmail: GetString(c, "RESEND_FROM_EMAIL", "onboarding@resend.dev"),
		EmailTimeout:    seconds(c, "EMAIL_TIMEOUT_SECONDS", 10),

		TwilioAccountSID: GetString(c, "TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  GetString(c, "TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: GetString(c, "TWILIO_FROM_NUMBER", ""),
		OperatorPhone:    GetString(c, "OPERATOR_PHONE", ""),

		OperatorName:  GetString(c, "OPERATOR_NAME", "the site owner"),
		OperatorEmail: GetString(c, "OPERATOR_EMAIL", ""),

		ReadTimeout:  seconds(c, "READ_TIMEOUT_SECONDS", 30),
		WriteTimeout: seconds(c, "WRITE_TIMEOUT_SECONDS", 60),
		IdleTimeout:  seconds(c, "IDLE_TIMEOUT_SECONDS", 120),

		GenerateQueries: GetBool(c, "GENERATE_QUERIES", false),
	}
	s.NotifyToEmail = GetString(c, "NOTIFY_TO_EMAIL", s.OperatorEmail)

	if s.DatabaseURL == "" {
		return s, errs.NewConfigMissingError("DATABASE_URL")
	}
	if s.EmailEnabled() && s.NotifyToEmail == "" {
		return s, errs.NewConfigInvalidError("NOTIFY_TO_EMAIL", "a recipient is required when RESEND_API_KEY is set")
	}
	return s, nil
}

// EmailEnabled is false in degraded mode, when no provider credential is configured.
func (s Settings) EmailEnabled() bool {
	return s.ResendAPIKey != ""
}

func (s Settings) SMSEnabled() bool {
	return s.TwilioAccountSID != "" && s.TwilioAuthToken != "" && s.TwilioFromNumber != "" && s.OperatorPhone != ""
}

func seconds(c map[string]string, key string, defaultValue int) time.Duration {
	return time.Duration(GetInt(c, key, defaultValue)) * time.Second
}
