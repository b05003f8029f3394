package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/recouphq/voicebridge/internal/realtime"
)

const (
	defaultRealtimeURL = "wss://api.openai.com/v1/realtime"
	eventChanBuffer    = 64
)

// OpenAIClient dials the OpenAI Realtime API over WebSocket.
type OpenAIClient struct {
	apiKey string
	model  string
	wsURL  string
	dialer *websocket.Dialer
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		apiKey: apiKey,
		model:  model,
		wsURL:  defaultRealtimeURL,
		dialer: websocket.DefaultDialer,
	}
}

type sessionUpdateFrame struct {
	Type    string        `json:"type"`
	Session sessionConfig `json:"session"`
}

type sessionConfig struct {
	Modalities              []string               `json:"modalities"`
	Instructions            string                 `json:"instructions"`
	Voice                   string                 `json:"voice"`
	InputAudioFormat        string                 `json:"input_audio_format"`
	OutputAudioFormat       string                 `json:"output_audio_format"`
	InputAudioTranscription transcriptionConfig    `json:"input_audio_transcription"`
	TurnDetection           realtime.TurnDetection `json:"turn_detection"`
}

type transcriptionConfig struct {
	Model string `json:"model"`
}

type audioAppendFrame struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

func (c *OpenAIClient) Connect(ctx context.Context, cfg realtime.SessionConfig) (realtime.Conn, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)
	header.Set("OpenAI-Beta", "realtime=v1")

	url := fmt.Sprintf("%s?model=%s", c.wsURL, c.model)
	ws, resp, err := c.dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial realtime api: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial realtime api: %w", err)
	}

	update := sessionUpdateFrame{
		Type: "session.update",
		Session: sessionConfig{
			Modalities:              cfg.Modalities,
			Instructions:            cfg.Instructions,
			Voice:                   cfg.Voice,
			InputAudioFormat:        cfg.InputAudioFormat,
			OutputAudioFormat:       cfg.OutputAudioFormat,
			InputAudioTranscription: transcriptionConfig{Model: cfg.TranscriptionModel},
			TurnDetection:           cfg.TurnDetection,
		},
	}
	if err := ws.WriteJSON(update); err != nil {
		_ = ws.Close()
		return nil, fmt.Errorf("send session configuration: %w", err)
	}

	conn := &openAIConn{ws: ws, events: make(chan realtime.Event, eventChanBuffer)}
	go conn.readLoop()
	return conn, nil
}

type openAIConn struct {
	ws        *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
	events    chan realtime.Event
}

func (c *openAIConn) SendAudio(audioB64 string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(audioAppendFrame{Type: "input_audio_buffer.append", Audio: audioB64})
}

func (c *openAIConn) Events() <-chan realtime.Event {
	return c.events
}

func (c *openAIConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.ws.Close()
	})
	return err
}

func (c *openAIConn) readLoop() {
	defer close(c.events)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("realtime connection closed unexpectedly", "error", err)
			}
			return
		}
		var ev realtime.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			// One bad frame never kills the stream.
			slog.Warn("failed to parse realtime event", "error", err)
			continue
		}
		c.events <- ev
	}
}
