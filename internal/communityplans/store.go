package communityplans

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// ErrNotFound is returned when no plan has the requested id.
var ErrNotFound = eris.New("communityplans: plan not found")

// Store persists plans. Each call is a single atomic operation; concurrent
// status updates on the same plan are last-write-wins.
type Store interface {
	Create(ctx context.Context, p *Plan) error
	List(ctx context.Context, q ListQuery) ([]*Plan, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*Plan, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, u StatusUpdate, at time.Time) (*Plan, error)
	Delete(ctx context.Context, id uuid.UUID) (*Plan, error)
	Statistics(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
}
