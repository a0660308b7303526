package engine

import (
	"context"

	"github.com/Veraticus/spice-talk/internal/model"
)

// Parser defines the contract front-ends use to turn text into drafts.
type Parser interface {
	ParseUtterance(ctx context.Context, text string, categories []model.Category) (*model.Draft, error)
	RecordCorrection(ctx context.Context, draftID string, categoryID int64) (bool, error)
}

var _ Parser = (*Engine)(nil)
