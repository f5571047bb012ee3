package services

import (
	"context"
	"errors"

	"codefusion/internal/code_converter"
	"codefusion/internal/code_reviewer"
	"codefusion/pkg/database"
)

// ErrHistoryDisabled is returned by the history store when no database is configured
var ErrHistoryDisabled = errors.New("history is disabled")

// HistoryStore records handled requests
type HistoryStore interface {
	Record(ctx context.Context, rec *database.HistoryRecord) error
	Recent(ctx context.Context, limit int) ([]database.HistoryRecord, error)
}

// Services holds all application services
type Services struct {
	CodeConverterService *code_converter.CodeConverterService
	CodeReviewService    *code_reviewer.CodeReviewService
	History              HistoryStore
}

// NewServices creates and initializes all services. A nil history store
// disables history.
func NewServices(converter *code_converter.CodeConverterService, reviewer *code_reviewer.CodeReviewService, history HistoryStore) *Services {
	if history == nil {
		history = NopHistory{}
	}
	return &Services{
		CodeConverterService: converter,
		CodeReviewService:    reviewer,
		History:              history,
	}
}

// NopHistory drops records and reports history as disabled
type NopHistory struct{}

func (NopHistory) Record(context.Context, *database.HistoryRecord) error { return nil }

func (NopHistory) Recent(context.Context, int) ([]database.HistoryRecord, error) {
	return nil, ErrHistoryDisabled
}
