package config

import (
	"fmt"
	"strings"
)

type Config struct {
	Env                    string
	BindAddr               string
	PublicBaseURL          string
	OpenAIAPIKey           string
	OpenAIRealtimeModel    string
	OpenAIVoice            string
	TwilioAccountSID       string
	TwilioAuthToken        string
	TwilioPhoneNumber      string
	FCAFirmReference       string
	DatabaseURL            string
	MaxCallDurationSeconds int
	SilenceTimeoutSeconds  int
	RecordCalls            bool
	MinInvoiceAmount       float64
	CallCooldownHours      int
	WebhookURL             string
	WebhookSecret          string
}

// Validate collects every problem so startup reports the full list at once.
func (c *Config) Validate() error {
	var errs []string
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			errs = append(errs, fmt.Sprintf("%s is required", req.name))
		}
	}
	if c.MaxCallDurationSeconds <= 0 {
		errs = append(errs, fmt.Sprintf("MAX_CALL_DURATION_SECONDS must be positive, got %d", c.MaxCallDurationSeconds))
	}
	if c.SilenceTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Sprintf("SILENCE_TIMEOUT_SECONDS must be positive, got %d", c.SilenceTimeoutSeconds))
	}
	if c.MinInvoiceAmount < 0 {
		errs = append(errs, fmt.Sprintf("MIN_INVOICE_AMOUNT must not be negative, got %.2f", c.MinInvoiceAmount))
	}
	if c.CallCooldownHours < 1 {
		errs = append(errs, fmt.Sprintf("CALL_COOLDOWN_HOURS must be at least 1, got %d", c.CallCooldownHours))
	}
	if c.WebhookURL != "" && c.WebhookSecret == "" {
		errs = append(errs, "WEBHOOK_SECRET is required when WEBHOOK_URL is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "OPENAI_API_KEY", value: c.OpenAIAPIKey},
		{name: "OPENAI_REALTIME_MODEL", value: c.OpenAIRealtimeModel},
		{name: "OPENAI_VOICE", value: c.OpenAIVoice},
		{name: "TWILIO_ACCOUNT_SID", value: c.TwilioAccountSID},
		{name: "TWILIO_AUTH_TOKEN", value: c.TwilioAuthToken},
		{name: "TWILIO_PHONE_NUMBER", value: c.TwilioPhoneNumber},
		{name: "PUBLIC_BASE_URL", value: c.PublicBaseURL},
		{name: "FCA_FIRM_REFERENCE", value: c.FCAFirmReference},
		{name: "DATABASE_URL", value: c.DatabaseURL},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
