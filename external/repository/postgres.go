package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/recouphq/voicebridge/internal/repository"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateCall(ctx context.Context, input repository.CreateCallInput) (*repository.CallRecord, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO calls (id, invoice_id, invoice_reference, client_name, business_name, amount, started_at, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, 'running')`,
		id, input.InvoiceID, input.InvoiceReference, input.ClientName, input.BusinessName, input.Amount, input.StartedAt)
	if err != nil {
		return nil, err
	}
	return &repository.CallRecord{
		ID:               id,
		InvoiceID:        input.InvoiceID,
		InvoiceReference: input.InvoiceReference,
		ClientName:       input.ClientName,
		BusinessName:     input.BusinessName,
		Amount:           input.Amount,
		StartedAt:        input.StartedAt,
		Status:           repository.CallStatusRunning,
	}, nil
}

func (r *PostgresRepository) AttachStreamIdentifiers(ctx context.Context, input repository.AttachStreamInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE calls SET call_sid = $2, stream_sid = $3 WHERE id = $1`,
		input.CallID, input.CallSID, input.StreamSID)
	return err
}

func (r *PostgresRepository) CompleteCall(ctx context.Context, input repository.CompleteCallInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE calls SET status = 'completed', ended_at = $2, outcome = $3, duration_seconds = $4 WHERE id = $1`,
		input.CallID, input.EndedAt, string(input.Outcome), input.DurationSeconds)
	return err
}

func (r *PostgresRepository) GetCallBySID(ctx context.Context, callSID string) (*repository.CallRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, call_sid, stream_sid, invoice_id, invoice_reference, client_name, business_name,
		        amount, started_at, ended_at, status, outcome, duration_seconds
		 FROM calls WHERE call_sid = $1
		 ORDER BY started_at DESC LIMIT 1`,
		callSID)
	var rec repository.CallRecord
	var endedAt *time.Time
	err := row.Scan(&rec.ID, &rec.CallSID, &rec.StreamSID, &rec.InvoiceID, &rec.InvoiceReference,
		&rec.ClientName, &rec.BusinessName, &rec.Amount, &rec.StartedAt, &endedAt,
		&rec.Status, &rec.Outcome, &rec.DurationSeconds)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	rec.EndedAt = endedAt
	return &rec, nil
}

func (r *PostgresRepository) LastCallTimeForInvoice(ctx context.Context, invoiceID string) (time.Time, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT started_at FROM calls WHERE invoice_id = $1 ORDER BY started_at DESC LIMIT 1`,
		invoiceID)
	var startedAt time.Time
	if err := row.Scan(&startedAt); err != nil {
		if err == pgx.ErrNoRows {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return startedAt, nil
}

func (r *PostgresRepository) InsertTranscriptEntry(ctx context.Context, input repository.InsertTranscriptEntryInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO transcript_entries (call_id, speaker, content, entry_index, spoken_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		input.CallID, string(input.Speaker), input.Content, input.EntryIndex, input.SpokenAt)
	return err
}

func (r *PostgresRepository) ListTranscriptEntries(ctx context.Context, callID string) ([]repository.TranscriptRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, call_id, speaker, content, entry_index, spoken_at, created_at
		 FROM transcript_entries WHERE call_id = $1 ORDER BY entry_index ASC`,
		callID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.TranscriptRow
	for rows.Next() {
		var row repository.TranscriptRow
		if err := rows.Scan(&row.ID, &row.CallID, &row.Speaker, &row.Content, &row.EntryIndex, &row.SpokenAt, &row.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, row)
	}
	return list, rows.Err()
}
