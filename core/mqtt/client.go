package mqtt

import (
	"context"

	"github.com/iveel36/spacetime-sim-2020/core/model"
)

// Publisher announces a generated demand schedule to downstream consumers.
type Publisher interface {
	// Publish sends recs in scheduler order followed by a completion
	// marker for the run.
	Publish(ctx context.Context, runID, network string, recs []model.DepartureRecord) error
	Close() error
}
