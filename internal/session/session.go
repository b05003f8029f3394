package session

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"sync"
	"time"

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

// State is the session lifecycle position. Transitions are one-way.
type State string

const (
	StateIdle          State = "idle"
	StateAwaitingModel State = "awaiting_model_connection"
	StateActive        State = "active"
	StateClosing       State = "closing"
	StateTerminated    State = "terminated"
)

const (
	modelConnectTimeout = 15 * time.Second
	inputAudioFormat    = "pcm16"
	outputAudioFormat   = "pcm16"
	transcriptionModel  = "whisper-1"
)

var defaultTurnDetection = realtime.TurnDetection{
	Type:              "server_vad",
	Threshold:         0.5,
	PrefixPaddingMs:   300,
	SilenceDurationMs: 500,
}

// Session owns exactly one call: the telephony stream connection, the
// speech-model connection, the transcript, and the final summary. It holds
// no state shared with other sessions.
type Session struct {
	id         string
	callCtx    call.Context
	cfg        *config.Config
	codec      audio.Codec
	filter     compliance.Filter
	prompts    *prompt.Builder
	classifier classify.Classifier
	rtClient   realtime.Client
	repo       repository.Repository
	dispatcher webhook.Dispatcher

	conn  telephony.StreamConn
	model realtime.Conn

	mu             sync.Mutex
	state          State
	callSID        string
	streamSID      string
	transcript     []call.TranscriptEntry
	nextEntryIndex int
	assistantText  strings.Builder
	modelErrored   bool
	closed         bool

	repoCallID string
	startedAt  time.Time
	modelDone  chan struct{}

	maxDurationTimer *time.Timer
	silenceTimer     *time.Timer
}

// Run drives the session from accepting the stream through termination.
// It blocks until the call is fully torn down and the summary dispatched.
func (s *Session) Run() {
	s.startedAt = time.Now()
	s.setState(StateAwaitingModel)

	s.createCallRecord()

	model, err := s.connectModel()
	if err != nil {
		slog.Error("failed to open speech model connection", "error", err, "session_id", s.id, "invoice_id", s.callCtx.InvoiceID)
		s.finalize(true)
		return
	}
	s.model = model
	s.setState(StateActive)
	s.armTimers()

	s.modelDone = make(chan struct{})
	go func() {
		s.modelLoop()
		close(s.modelDone)
	}()
	s.streamLoop()

	s.finalize(false)
}

func (s *Session) connectModel() (realtime.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), modelConnectTimeout)
	defer cancel()
	return s.rtClient.Connect(ctx, realtime.SessionConfig{
		Modalities:         []string{"text", "audio"},
		Instructions:       s.prompts.SystemPrompt(s.callCtx),
		Voice:              s.cfg.OpenAIVoice,
		InputAudioFormat:   inputAudioFormat,
		OutputAudioFormat:  outputAudioFormat,
		TranscriptionModel: transcriptionModel,
		TurnDetection:      defaultTurnDetection,
	})
}

// streamLoop reads telephony frames until the socket closes or an
// unrecoverable error occurs. Per-event failures are logged and relaying
// continues.
func (s *Session) streamLoop() {
	for {
		data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.isClosed() {
				slog.Info("telephony stream closed", "error", err, "session_id", s.id, "call_sid", s.currentCallSID())
			}
			return
		}
		ev, err := telephony.ParseStreamEvent(data)
		if err != nil {
			slog.Warn("malformed telephony frame", "error", err, "session_id", s.id)
			continue
		}
		switch ev.Event {
		case telephony.EventConnected:
			slog.Info("telephony stream connected", "session_id", s.id)
		case telephony.EventStart:
			s.handleStart(ev.Start)
		case telephony.EventMedia:
			s.handleMedia(ev.Media)
		case telephony.EventStop:
			slog.Info("telephony stream stopped", "session_id", s.id, "call_sid", s.currentCallSID())
			return
		default:
			slog.Debug("unhandled telephony event", "event", ev.Event, "session_id", s.id)
		}
	}
}

func (s *Session) handleStart(start *telephony.StartPayload) {
	if start == nil {
		slog.Warn("start event without payload", "session_id", s.id)
		return
	}
	s.mu.Lock()
	s.streamSID = start.StreamSID
	s.callSID = start.CallSID
	s.mu.Unlock()
	slog.Info("call stream started", "session_id", s.id, "call_sid", start.CallSID, "stream_sid", start.StreamSID)

	if s.repoCallID != "" {
		if err := s.repo.AttachStreamIdentifiers(context.Background(), repository.AttachStreamInput{
			CallID:    s.repoCallID,
			CallSID:   start.CallSID,
			StreamSID: start.StreamSID,
		}); err != nil {
			slog.Error("failed to attach stream identifiers", "error", err, "session_id", s.id)
		}
	}
}

func (s *Session) handleMedia(media *telephony.MediaPayload) {
	if media == nil {
		return
	}
	s.resetSilenceTimer()

	mulaw, err := base64.StdEncoding.DecodeString(media.Payload)
	if err != nil {
		// Per-event isolation: a bad frame never ends the call.
		slog.Warn("malformed media payload", "error", err, "session_id", s.id)
		return
	}
	pcm := s.codec.DecodeFromTelephony(mulaw)
	if len(pcm) == 0 {
		return
	}
	if err := s.model.SendAudio(base64.StdEncoding.EncodeToString(pcm)); err != nil {
		slog.Error("failed to forward audio to speech model", "error", err, "session_id", s.id, "call_sid", s.currentCallSID())
		s.forceClose("speech model send failure")
	}
}

// modelLoop consumes speech-model events until that connection closes. If
// the model drops while the call is still live, the telephony socket is
// force-closed so the normal termination path runs.
func (s *Session) modelLoop() {
	for ev := range s.model.Events() {
		switch ev.Type {
		case realtime.EventResponseAudioDelta:
			s.relayModelAudio(ev.Delta)
		case realtime.EventInputTranscriptionCompleted:
			if strings.TrimSpace(ev.Transcript) != "" {
				s.appendTranscript(call.SpeakerDebtor, ev.Transcript)
			}
		case realtime.EventResponseTextDelta:
			s.mu.Lock()
			s.assistantText.WriteString(ev.Delta)
			s.mu.Unlock()
		case realtime.EventResponseTextDone:
			s.finishAssistantUtterance(ev.Text)
		case realtime.EventError:
			s.mu.Lock()
			s.modelErrored = true
			s.mu.Unlock()
			msg := ""
			if ev.Error != nil {
				msg = ev.Error.Message
			}
			slog.Error("speech model reported error", "message", msg, "session_id", s.id, "call_sid", s.currentCallSID())
		}
	}
	if !s.isClosed() {
		s.forceClose("speech model connection closed")
	}
}

func (s *Session) relayModelAudio(deltaB64 string) {
	s.mu.Lock()
	streamSID := s.streamSID
	s.mu.Unlock()
	if streamSID == "" {
		// No start event yet; nowhere to address the frame.
		return
	}
	pcm, err := base64.StdEncoding.DecodeString(deltaB64)
	if err != nil {
		slog.Warn("malformed model audio delta", "error", err, "session_id", s.id)
		return
	}
	mulaw := s.codec.EncodeForTelephony(pcm)
	out := telephony.NewOutboundMediaEvent(streamSID, base64.StdEncoding.EncodeToString(mulaw))
	if err := s.conn.WriteJSON(out); err != nil {
		slog.Warn("failed to forward audio to telephony stream", "error", err, "session_id", s.id)
	}
}

func (s *Session) finishAssistantUtterance(doneText string) {
	s.mu.Lock()
	text := doneText
	if text == "" {
		text = s.assistantText.String()
	}
	s.assistantText.Reset()
	s.mu.Unlock()
	if strings.TrimSpace(text) == "" {
		return
	}
	if !s.filter.IsCompliant(text) {
		// Audio has already played; the violation is recorded for audit.
		slog.Warn("assistant utterance failed compliance check", "session_id", s.id, "call_sid", s.currentCallSID())
	}
	s.appendTranscript(call.SpeakerAssistant, text)
}

func (s *Session) appendTranscript(speaker call.Speaker, text string) {
	entry := call.TranscriptEntry{Timestamp: time.Now(), Speaker: speaker, Text: text}
	s.mu.Lock()
	s.transcript = append(s.transcript, entry)
	idx := s.nextEntryIndex
	s.nextEntryIndex++
	s.mu.Unlock()

	if s.repoCallID == "" {
		return
	}
	if err := s.repo.InsertTranscriptEntry(context.Background(), repository.InsertTranscriptEntryInput{
		CallID:     s.repoCallID,
		Speaker:    speaker,
		Content:    text,
		EntryIndex: idx,
		SpokenAt:   entry.Timestamp,
	}); err != nil {
		slog.Error("failed to persist transcript entry", "error", err, "session_id", s.id)
	}
}

// finalize runs the Closing → Terminated path. It always produces and
// dispatches a summary, even for errored calls.
func (s *Session) finalize(modelConnectFailed bool) {
	s.setState(StateClosing)
	s.stopTimers()
	s.markClosed()
	if s.model != nil {
		// Events buffered before the telephony socket closed still belong
		// to this call: wait for the model loop to finish draining before
		// the transcript is sealed.
		_ = s.model.Close()
		<-s.modelDone
		s.finishAssistantUtterance("")
	}
	_ = s.conn.Close()

	summary := s.buildSummary(time.Now(), modelConnectFailed)
	s.persistCompletion(summary)

	if err := s.dispatcher.Deliver(context.Background(), buildWebhookPayload(summary)); err != nil {
		// Delivery is at-most-once; failure never disturbs termination.
		slog.Error("failed to deliver call summary webhook", "error", err, "session_id", s.id, "call_sid", summary.CallSID)
	}

	s.setState(StateTerminated)
	slog.Info("call terminated",
		"session_id", s.id,
		"call_sid", summary.CallSID,
		"outcome", summary.Outcome,
		"duration_seconds", summary.DurationSeconds(),
		"transcript_entries", len(summary.Transcript))
}

func (s *Session) buildSummary(endedAt time.Time, modelConnectFailed bool) call.Summary {
	s.mu.Lock()
	transcript := make([]call.TranscriptEntry, len(s.transcript))
	copy(transcript, s.transcript)
	callSID := s.callSID
	streamSID := s.streamSID
	errored := s.modelErrored || modelConnectFailed
	s.mu.Unlock()

	outcome := call.OutcomeError
	if !errored {
		outcome = s.classifier.Classify(transcript)
	}

	duration := endedAt.Sub(s.startedAt)
	if callSID == "" && streamSID == "" {
		// The stream never started; there was no call to measure.
		duration = 0
	}

	summary := call.Summary{
		CallID:     s.id,
		CallSID:    callSID,
		StreamSID:  streamSID,
		Context:    s.callCtx,
		StartedAt:  s.startedAt,
		EndedAt:    endedAt,
		Duration:   duration,
		Outcome:    outcome,
		Transcript: transcript,
	}
	if outcome == call.OutcomePaymentCommitted {
		// Best-effort stub: full invoice amount, committed today.
		summary.Commitment = &call.PaymentCommitment{Amount: s.callCtx.Amount, Date: endedAt}
	}
	return summary
}

func (s *Session) persistCompletion(summary call.Summary) {
	if s.repoCallID == "" {
		return
	}
	if err := s.repo.CompleteCall(context.Background(), repository.CompleteCallInput{
		CallID:          s.repoCallID,
		EndedAt:         summary.EndedAt,
		Outcome:         summary.Outcome,
		DurationSeconds: summary.DurationSeconds(),
	}); err != nil {
		slog.Error("failed to complete call record", "error", err, "session_id", s.id)
	}
}

func (s *Session) createCallRecord() {
	rec, err := s.repo.CreateCall(context.Background(), repository.CreateCallInput{
		InvoiceID:        s.callCtx.InvoiceID,
		InvoiceReference: s.callCtx.InvoiceReference,
		ClientName:       s.callCtx.ClientName,
		BusinessName:     s.callCtx.BusinessName,
		Amount:           s.callCtx.Amount,
		StartedAt:        s.startedAt,
	})
	if err != nil {
		// Persistence is supporting infrastructure; the call proceeds.
		slog.Error("failed to create call record", "error", err, "session_id", s.id, "invoice_id", s.callCtx.InvoiceID)
		return
	}
	s.repoCallID = rec.ID
}

func (s *Session) armTimers() {
	maxDuration := time.Duration(s.cfg.MaxCallDurationSeconds) * time.Second
	silence := time.Duration(s.cfg.SilenceTimeoutSeconds) * time.Second
	s.mu.Lock()
	s.maxDurationTimer = time.AfterFunc(maxDuration, func() {
		s.forceClose("maximum call duration reached")
	})
	s.silenceTimer = time.AfterFunc(silence, func() {
		s.forceClose("silence timeout reached")
	})
	s.mu.Unlock()
}

func (s *Session) resetSilenceTimer() {
	s.mu.Lock()
	if s.silenceTimer != nil {
		s.silenceTimer.Reset(time.Duration(s.cfg.SilenceTimeoutSeconds) * time.Second)
	}
	s.mu.Unlock()
}

func (s *Session) stopTimers() {
	s.mu.Lock()
	if s.maxDurationTimer != nil {
		s.maxDurationTimer.Stop()
	}
	if s.silenceTimer != nil {
		s.silenceTimer.Stop()
	}
	s.mu.Unlock()
}

// forceClose ends the call by closing the telephony socket, which drives
// the stream loop to exit and the normal termination path to run.
func (s *Session) forceClose(reason string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	slog.Info("forcing call closure", "reason", reason, "session_id", s.id, "call_sid", s.currentCallSID())
	_ = s.conn.Close()
}

func (s *Session) markClosed() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()
	slog.Info("session state transition", "from", prev, "to", next, "session_id", s.id, "invoice_id", s.callCtx.InvoiceID)
}

func (s *Session) currentCallSID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callSID
}
