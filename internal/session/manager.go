package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/recouphq/voicebridge/internal/audio"
	"github.com/recouphq/voicebridge/internal/call"
	"github.com/recouphq/voicebridge/internal/classify"
	"github.com/recouphq/voicebridge/internal/compliance"
	"github.com/recouphq/voicebridge/internal/config"
	"github.com/recouphq/voicebridge/internal/prompt"
	"github.com/recouphq/voicebridge/internal/realtime"
	"github.com/recouphq/voicebridge/internal/repository"
	"github.com/recouphq/voicebridge/internal/telephony"
	"github.com/recouphq/voicebridge/internal/webhook"
)

// Manager creates and tracks live sessions. Each accepted media stream gets
// its own Session; a failure in one never reaches another.
type Manager struct {
	cfg        *config.Config
	codec      audio.Codec
	filter     compliance.Filter
	prompts    *prompt.Builder
	classifier classify.Classifier
	rtClient   realtime.Client
	repo       repository.Repository
	dispatcher webhook.Dispatcher

	mu     sync.Mutex
	active map[string]*Session
}

func NewManager(
	cfg *config.Config,
	codec audio.Codec,
	filter compliance.Filter,
	prompts *prompt.Builder,
	classifier classify.Classifier,
	rtClient realtime.Client,
	repo repository.Repository,
	dispatcher webhook.Dispatcher,
) *Manager {
	return &Manager{
		cfg:        cfg,
		codec:      codec,
		filter:     filter,
		prompts:    prompts,
		classifier: classifier,
		rtClient:   rtClient,
		repo:       repo,
		dispatcher: dispatcher,
		active:     make(map[string]*Session),
	}
}

// HandleStream runs one call to completion on the given connection. It
// blocks for the lifetime of the call and returns after the summary has
// been dispatched.
func (m *Manager) HandleStream(conn telephony.StreamConn, callCtx call.Context) error {
	if err := callCtx.Validate(); err != nil {
		return fmt.Errorf("invalid call context: %w", err)
	}

	s := &Session{
		id:         uuid.NewString(),
		callCtx:    callCtx,
		cfg:        m.cfg,
		codec:      m.codec,
		filter:     m.filter,
		prompts:    m.prompts,
		classifier: m.classifier,
		rtClient:   m.rtClient,
		repo:       m.repo,
		dispatcher: m.dispatcher,
		conn:       conn,
		state:      StateIdle,
	}

	m.mu.Lock()
	m.active[s.id] = s
	count := len(m.active)
	m.mu.Unlock()
	slog.Info("session accepted", "session_id", s.id, "invoice_id", callCtx.InvoiceID, "active_sessions", count)

	defer func() {
		m.mu.Lock()
		delete(m.active, s.id)
		m.mu.Unlock()
	}()

	s.Run()
	return nil
}

// ActiveSessions reports how many calls are currently live.
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}
