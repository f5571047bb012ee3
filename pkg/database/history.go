package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"codefusion/pkg/types"
)

// Outcomes stored for a dispatch
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// HistoryRecord is one handled conversion or review request
type HistoryRecord struct {
	bun.BaseModel `bun:"table:dispatch_history,alias:dh"`

	ID             uuid.UUID `bun:"id,pk,type:uuid"`
	Flow           string    `bun:"flow,notnull"`
	SourceLanguage string    `bun:"source_language"`
	TargetLanguage string    `bun:"target_language"`
	CodeLength     int       `bun:"code_length,notnull"`
	Outcome        string    `bun:"outcome,notnull"`
	ErrorMessage   string    `bun:"error_message"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// NewHistoryRecord fills in the id and timestamp of a record
func NewHistoryRecord(flow, sourceLang, targetLang string, codeLength int, err error) *HistoryRecord {
	rec := &HistoryRecord{
		ID:             uuid.New(),
		Flow:           flow,
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
		CodeLength:     codeLength,
		Outcome:        OutcomeSuccess,
		CreatedAt:      time.Now().UTC(),
	}
	if err != nil {
		rec.Outcome = OutcomeError
		rec.ErrorMessage = err.Error()
	}
	return rec
}

// Entry converts the record to its API representation
func (r HistoryRecord) Entry() types.HistoryEntry {
	return types.HistoryEntry{
		ID:             r.ID.String(),
		Flow:           r.Flow,
		SourceLanguage: r.SourceLanguage,
		TargetLanguage: r.TargetLanguage,
		CodeLength:     r.CodeLength,
		Outcome:        r.Outcome,
		Error:          r.ErrorMessage,
		CreatedAt:      r.CreatedAt,
	}
}

// HistoryRepository persists HistoryRecords with bun
type HistoryRepository struct {
	db *DB
}

func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// EnsureSchema creates the history table when it does not exist
func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*HistoryRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create history table: %w", err)
	}
	return nil
}

func (r *HistoryRepository) Record(ctx context.Context, rec *HistoryRecord) error {
	if _, err := r.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]HistoryRecord, error) {
	var records []HistoryRecord
	err := r.db.NewSelect().
		Model(&records).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}
	return records, nil
}
