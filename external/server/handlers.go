package server

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/recouphq/voicebridge/internal/call"
	"github.com/recouphq/voicebridge/internal/telephony"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":      "healthy",
		"timestamp":   s.now().Format(time.RFC3339),
		"environment": s.cfg.Env,
	})
}

type initiateCallRequest struct {
	ToPhone          string  `json:"toPhone"`
	InvoiceID        string  `json:"invoiceId"`
	InvoiceReference string  `json:"invoiceReference"`
	Amount           float64 `json:"amount"`
	DueDate          string  `json:"dueDate"`
	DaysOverdue      int     `json:"daysOverdue"`
	ClientName       string  `json:"clientName"`
	BusinessName     string  `json:"businessName"`
}

func (s *Server) handleInitiateCall(c echo.Context) error {
	var req initiateCallRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	callCtx := call.Context{
		InvoiceID:        req.InvoiceID,
		InvoiceReference: req.InvoiceReference,
		Amount:           req.Amount,
		DueDate:          req.DueDate,
		DaysOverdue:      req.DaysOverdue,
		ClientName:       req.ClientName,
		BusinessName:     req.BusinessName,
	}
	if err := callCtx.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if req.ToPhone == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "toPhone is required"})
	}
	if req.Amount < s.cfg.MinInvoiceAmount {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{
			"error": fmt.Sprintf("invoice amount %.2f is below the minimum %.2f", req.Amount, s.cfg.MinInvoiceAmount),
		})
	}
	if !telephony.AllowedCallTime(s.now()) {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{
			"error": "calls may only be placed Monday to Saturday between 8am and 9pm",
		})
	}

	lastCall, err := s.repo.LastCallTimeForInvoice(c.Request().Context(), req.InvoiceID)
	if err != nil {
		slog.Error("failed to query last call time", "error", err, "invoice_id", req.InvoiceID)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	cooldown := time.Duration(s.cfg.CallCooldownHours) * time.Hour
	if !lastCall.IsZero() && s.now().Sub(lastCall) < cooldown {
		return c.JSON(http.StatusTooManyRequests, map[string]string{
			"error": fmt.Sprintf("invoice was called within the last %d hours", s.cfg.CallCooldownHours),
		})
	}

	callSID, err := s.initiator.InitiateCall(c.Request().Context(), telephony.CallRequest{
		ToPhone:           req.ToPhone,
		VoiceWebhookURL:   s.publicURL("/twilio/voice", contextQuery(callCtx)),
		StatusCallbackURL: s.publicURL("/twilio/status", nil),
		Record:            s.cfg.RecordCalls,
	})
	if err != nil {
		slog.Error("failed to initiate call", "error", err, "invoice_id", req.InvoiceID)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "failed to initiate call"})
	}

	slog.Info("outbound call initiated", "call_sid", callSID, "invoice_id", req.InvoiceID)
	return c.JSON(http.StatusCreated, map[string]string{
		"callSid": callSID,
		"status":  "initiated",
	})
}

type transcriptEntryResponse struct {
	Speaker  string `json:"speaker"`
	Text     string `json:"text"`
	SpokenAt string `json:"spokenAt"`
}

type callResponse struct {
	CallSID          string                    `json:"callSid"`
	InvoiceID        string                    `json:"invoiceId"`
	InvoiceReference string                    `json:"invoiceReference"`
	ClientName       string                    `json:"clientName"`
	Status           string                    `json:"status"`
	Outcome          string                    `json:"outcome,omitempty"`
	StartedAt        string                    `json:"startedAt"`
	EndedAt          string                    `json:"endedAt,omitempty"`
	DurationSeconds  int64                     `json:"durationSeconds"`
	Transcript       []transcriptEntryResponse `json:"transcript"`
}

func (s *Server) handleGetCall(c echo.Context) error {
	callSID := c.Param("callSid")
	rec, err := s.repo.GetCallBySID(c.Request().Context(), callSID)
	if err != nil {
		slog.Error("failed to look up call", "error", err, "call_sid", callSID)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	if rec == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "call not found"})
	}
	resp := callResponse{
		CallSID:          rec.CallSID,
		InvoiceID:        rec.InvoiceID,
		InvoiceReference: rec.InvoiceReference,
		ClientName:       rec.ClientName,
		Status:           string(rec.Status),
		Outcome:          string(rec.Outcome),
		StartedAt:        rec.StartedAt.Format(time.RFC3339),
		DurationSeconds:  rec.DurationSeconds,
	}
	if rec.EndedAt != nil {
		resp.EndedAt = rec.EndedAt.Format(time.RFC3339)
	}

	rows, err := s.repo.ListTranscriptEntries(c.Request().Context(), rec.ID)
	if err != nil {
		slog.Error("failed to list transcript entries", "error", err, "call_id", rec.ID)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	resp.Transcript = make([]transcriptEntryResponse, 0, len(rows))
	for _, row := range rows {
		resp.Transcript = append(resp.Transcript, transcriptEntryResponse{
			Speaker:  string(row.Speaker),
			Text:     row.Content,
			SpokenAt: row.SpokenAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

type twimlStream struct {
	URL string `xml:"url,attr"`
}

type twimlConnect struct {
	Stream twimlStream `xml:"Stream"`
}

type twimlResponse struct {
	XMLName xml.Name     `xml:"Response"`
	Connect twimlConnect `xml:"Connect"`
}

// handleVoiceWebhook answers the telephony platform's voice callback with
// markup pointing the call's media stream at the socket endpoint. The call
// context arrives on the query string, placed there at initiation time.
func (s *Server) handleVoiceWebhook(c echo.Context) error {
	streamURL := s.streamURL(c.QueryParams())
	slog.Info("voice webhook answered", "stream_url_host", s.cfg.PublicBaseURL)
	return c.XML(http.StatusOK, twimlResponse{
		Connect: twimlConnect{Stream: twimlStream{URL: streamURL}},
	})
}

func (s *Server) handleCallStatus(c echo.Context) error {
	slog.Info("call status callback",
		"call_sid", c.FormValue("CallSid"),
		"call_status", c.FormValue("CallStatus"),
		"call_duration", c.FormValue("CallDuration"))
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) publicURL(path string, query url.Values) string {
	u := strings.TrimRight(s.cfg.PublicBaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (s *Server) streamURL(query url.Values) string {
	base := strings.TrimRight(s.cfg.PublicBaseURL, "/")
	base = strings.Replace(base, "https://", "wss://", 1)
	base = strings.Replace(base, "http://", "ws://", 1)
	u := base + "/ws/voice"
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func contextQuery(ctx call.Context) url.Values {
	q := url.Values{}
	q.Set("invoiceId", ctx.InvoiceID)
	q.Set("invoiceReference", ctx.InvoiceReference)
	q.Set("amount", fmt.Sprintf("%.2f", ctx.Amount))
	q.Set("dueDate", ctx.DueDate)
	q.Set("daysOverdue", fmt.Sprintf("%d", ctx.DaysOverdue))
	q.Set("clientName", ctx.ClientName)
	q.Set("businessName", ctx.BusinessName)
	return q
}
