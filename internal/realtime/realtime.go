package realtime

import "context"

// Event types emitted by the speech model connection.
const (
	EventResponseAudioDelta          = "response.audio.delta"
	EventInputTranscriptionCompleted = "conversation.item.input_audio_transcription.completed"
	EventResponseTextDelta           = "response.text.delta"
	EventResponseTextDone            = "response.text.done"
	EventError                       = "error"
)

// Event is one inbound frame from the speech model. Fields are populated
// depending on Type; unknown types pass through and are ignored upstream.
type Event struct {
	Type       string       `json:"type"`
	Delta      string       `json:"delta,omitempty"`
	Text       string       `json:"text,omitempty"`
	Transcript string       `json:"transcript,omitempty"`
	Error      *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type TurnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms"`
	SilenceDurationMs int     `json:"silence_duration_ms"`
}

// SessionConfig is sent once, immediately after the connection opens.
type SessionConfig struct {
	Modalities         []string
	Instructions       string
	Voice              string
	InputAudioFormat   string
	OutputAudioFormat  string
	TranscriptionModel string
	TurnDetection      TurnDetection
}

// Conn is one live speech-model session.
type Conn interface {
	// SendAudio appends base64 PCM16 audio to the model's input buffer.
	SendAudio(audioB64 string) error
	// Events yields inbound events until the connection closes, then the
	// channel is closed.
	Events() <-chan Event
	Close() error
}

// Client opens configured speech-model sessions.
type Client interface {
	Connect(ctx context.Context, cfg SessionConfig) (Conn, error)
}
