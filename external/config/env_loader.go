package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/recouphq/voicebridge/internal/config"
)

type envConfig struct {
	Env                    string  `env:"ENV" envDefault:"production"`
	BindAddr               string  `env:"BIND_ADDR" envDefault:":8080"`
	PublicBaseURL          string  `env:"PUBLIC_BASE_URL,required"`
	OpenAIAPIKey           string  `env:"OPENAI_API_KEY,required"`
	OpenAIRealtimeModel    string  `env:"OPENAI_REALTIME_MODEL" envDefault:"gpt-4o-realtime-preview"`
	OpenAIVoice            string  `env:"OPENAI_VOICE" envDefault:"alloy"`
	TwilioAccountSID       string  `env:"TWILIO_ACCOUNT_SID,required"`
	TwilioAuthToken        string  `env:"TWILIO_AUTH_TOKEN,required"`
	TwilioPhoneNumber      string  `env:"TWILIO_PHONE_NUMBER,required"`
	FCAFirmReference       string  `env:"FCA_FIRM_REFERENCE,required"`
	DatabaseURL            string  `env:"DATABASE_URL,required"`
	MaxCallDurationSeconds int     `env:"MAX_CALL_DURATION_SECONDS" envDefault:"600"`
	SilenceTimeoutSeconds  int     `env:"SILENCE_TIMEOUT_SECONDS" envDefault:"30"`
	RecordCalls            bool    `env:"RECORD_CALLS" envDefault:"true"`
	MinInvoiceAmount       float64 `env:"MIN_INVOICE_AMOUNT" envDefault:"50"`
	CallCooldownHours      int     `env:"CALL_COOLDOWN_HOURS" envDefault:"24"`
	WebhookURL             string  `env:"WEBHOOK_URL"`
	WebhookSecret          string  `env:"WEBHOOK_SECRET"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                    raw.Env,
		BindAddr:               raw.BindAddr,
		PublicBaseURL:          raw.PublicBaseURL,
		OpenAIAPIKey:           raw.OpenAIAPIKey,
		OpenAIRealtimeModel:    raw.OpenAIRealtimeModel,
		OpenAIVoice:            raw.OpenAIVoice,
		TwilioAccountSID:       raw.TwilioAccountSID,
		TwilioAuthToken:        raw.TwilioAuthToken,
		TwilioPhoneNumber:      raw.TwilioPhoneNumber,
		FCAFirmReference:       raw.FCAFirmReference,
		DatabaseURL:            raw.DatabaseURL,
		MaxCallDurationSeconds: raw.MaxCallDurationSeconds,
		SilenceTimeoutSeconds:  raw.SilenceTimeoutSeconds,
		RecordCalls:            raw.RecordCalls,
		MinInvoiceAmount:       raw.MinInvoiceAmount,
		CallCooldownHours:      raw.CallCooldownHours,
		WebhookURL:             raw.WebhookURL,
		WebhookSecret:          raw.WebhookSecret,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
