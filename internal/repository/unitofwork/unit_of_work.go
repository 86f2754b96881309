package unitofwork

import (
	"context"

	"datasense-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	VideoTranscriptRepository() contract.VideoTranscriptRepository
}
