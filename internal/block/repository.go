package block

import (
	"context"
	"time"
)

// Repository defines the storage interface for saved day plans.
type Repository interface {
	// SavePlan stores blocks as the plan for date, replacing any earlier plan.
	// Returns an *OverlapError if the blocks intersect.
	SavePlan(ctx context.Context, date time.Time, blocks []Block) error

	// GetPlan returns the saved plan for date ordered by start time.
	// Returns ErrPlanNotFound if no plan was saved.
	GetPlan(ctx context.Context, date time.Time) ([]Block, error)

	// ListPlanDates returns the dates with a saved plan within the range (inclusive).
	ListPlanDates(ctx context.Context, start, end time.Time) ([]time.Time, error)

	// DeletePlan removes the plan for date.
	// Returns ErrPlanNotFound if no plan was saved.
	DeletePlan(ctx context.Context, date time.Time) error

	// Close releases any resources held by the repository.
	Close() error
}
