package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/recouphq/voicebridge/internal/call"
)

// Close code sent when the stream query string does not carry a usable
// call context.
const closeCodeInvalidCallContext = 4400

const closeWriteTimeout = time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The telephony platform connects from its own infrastructure.
		return true
	},
}

// handleVoiceStream upgrades the media stream socket and runs the call to
// completion. It blocks for the full call lifetime.
func (s *Server) handleVoiceStream(c echo.Context) error {
	callCtx, parseErr := parseCallContext(c.QueryParams())

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("failed to upgrade media stream socket", "error", err)
		return err
	}

	if parseErr != nil {
		slog.Warn("refusing media stream", "error", parseErr)
		refuseStream(ws, parseErr.Error())
		return nil
	}

	if err := s.manager.HandleStream(newStreamConn(ws), callCtx); err != nil {
		slog.Warn("refusing media stream", "error", err)
		refuseStream(ws, err.Error())
	}
	return nil
}

func refuseStream(ws *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(closeCodeInvalidCallContext, reason)
	_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteTimeout))
	_ = ws.Close()
}

func parseCallContext(q url.Values) (call.Context, error) {
	amount, err := strconv.ParseFloat(q.Get("amount"), 64)
	if err != nil {
		return call.Context{}, fmt.Errorf("amount must be a number, got %q", q.Get("amount"))
	}
	rawDays := q.Get("daysOverdue")
	if rawDays == "" {
		return call.Context{}, fmt.Errorf("daysOverdue is required")
	}
	daysOverdue, err := strconv.Atoi(rawDays)
	if err != nil {
		return call.Context{}, fmt.Errorf("daysOverdue must be an integer, got %q", rawDays)
	}
	callCtx := call.Context{
		InvoiceID:        q.Get("invoiceId"),
		InvoiceReference: q.Get("invoiceReference"),
		Amount:           amount,
		DueDate:          q.Get("dueDate"),
		DaysOverdue:      daysOverdue,
		ClientName:       q.Get("clientName"),
		BusinessName:     q.Get("businessName"),
	}
	if err := callCtx.Validate(); err != nil {
		return call.Context{}, err
	}
	return callCtx, nil
}

// streamConn adapts a websocket connection to the session layer. Writes are
// serialized; the session has one reader and one writer goroutine plus
// Close from timer callbacks.
type streamConn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
	once    sync.Once
}

func newStreamConn(ws *websocket.Conn) *streamConn {
	return &streamConn{ws: ws}
}

func (c *streamConn) ReadMessage() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	return data, err
}

func (c *streamConn) WriteJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *streamConn) Close() error {
	var err error
	c.once.Do(func() {
		c.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteTimeout))
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}
