package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Media stream frame events as delivered by the telephony platform.
const (
	EventConnected = "connected"
	EventStart     = "start"
	EventMedia     = "media"
	EventStop      = "stop"
)

// StreamEvent is one inbound JSON frame on the media stream socket.
type StreamEvent struct {
	Event string        `json:"event"`
	Start *StartPayload `json:"start,omitempty"`
	Media *MediaPayload `json:"media,omitempty"`
}

type StartPayload struct {
	StreamSID string `json:"streamSid"`
	CallSID   string `json:"callSid"`
}

type MediaPayload struct {
	// Payload is base64-encoded 8kHz μ-law audio.
	Payload string `json:"payload"`
}

// ParseStreamEvent decodes one raw frame from the media stream socket.
func ParseStreamEvent(data []byte) (StreamEvent, error) {
	var ev StreamEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return StreamEvent{}, fmt.Errorf("failed to parse stream event: %w", err)
	}
	if ev.Event == "" {
		return StreamEvent{}, fmt.Errorf("stream event missing event field")
	}
	return ev, nil
}

// OutboundMediaEvent is an audio frame sent back on the stream, tagged with
// the stream identifier from the start event.
type OutboundMediaEvent struct {
	Event     string       `json:"event"`
	StreamSID string       `json:"streamSid"`
	Media     MediaPayload `json:"media"`
}

func NewOutboundMediaEvent(streamSID, payload string) OutboundMediaEvent {
	return OutboundMediaEvent{
		Event:     EventMedia,
		StreamSID: streamSID,
		Media:     MediaPayload{Payload: payload},
	}
}

// StreamConn is the duplex media stream connection owned by one session.
type StreamConn interface {
	// ReadMessage blocks for the next raw frame.
	ReadMessage() ([]byte, error)
	WriteJSON(v any) error
	Close() error
}

// CallRequest initiates an outbound collection call.
type CallRequest struct {
	ToPhone           string
	VoiceWebhookURL   string
	StatusCallbackURL string
	Record            bool
}

// Initiator places outbound calls through the telephony platform.
type Initiator interface {
	InitiateCall(ctx context.Context, req CallRequest) (callSID string, err error)
}

// AllowedCallTime reports whether an outbound collection call may be placed
// at the given moment: Monday to Saturday, 8am to 9pm, per the conduct
// rules on debt-collection contact hours.
func AllowedCallTime(now time.Time) bool {
	if now.Weekday() == time.Sunday {
		return false
	}
	hour := now.Hour()
	return hour >= 8 && hour < 21
}
