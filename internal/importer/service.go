package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/payreminder/internal/reminder"
)

// ErrInvalidFile is returned when the upload cannot be read as a reminder CSV.
var ErrInvalidFile = errors.New("invalid import file")

// Creator is the part of reminder.Service an import needs.
type Creator interface {
	CreateBatch(ctx context.Context, tenantID uuid.UUID, params []reminder.CreateParams) ([]*reminder.Reminder, error)
}

type Result struct {
	Created  []*reminder.Reminder
	Rejected []RowError
}

type Service struct {
	creator Creator
}

func NewService(creator Creator) *Service {
	return &Service{creator: creator}
}

// Import creates a manual reminder for every valid row of the file and reports
// the rows it rejected. Valid rows are created in a single batch.
func (s *Service) Import(ctx context.Context, tenantID uuid.UUID, r io.Reader) (*Result, error) {
	rows, rejected, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	params := make([]reminder.CreateParams, 0, len(rows))

	for _, row := range rows {
		if err := row.Params.Validate(); err != nil {
			rejected = append(rejected, RowError{Line: row.Line, Reason: err.Error()})
			continue
		}

		params = append(params, row.Params)
	}

	res := &Result{Rejected: rejected}

	if len(params) == 0 {
		return res, nil
	}

	created, err := s.creator.CreateBatch(ctx, tenantID, params)
	if err != nil {
		return nil, fmt.Errorf("creating imported reminders: %w", err)
	}

	res.Created = created

	return res, nil
}
