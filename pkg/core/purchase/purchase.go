package purchase

import (
	"context"

	"github.com/nexussign/supply/pkg/core/requirement"
)

type Service interface {
	DraftGroups(ctx context.Context) ([]*DraftGroup, error)
	// Unassigned lists open requirements with neither a supplier nor a hold.
	Unassigned(ctx context.Context) ([]*requirement.View, error)
	// Submit is the only path that stamps a purchase order onto requirements.
	Submit(ctx context.Context, req *SubmitReq) (*SubmitResp, error)
	// Ready fails once the email dispatch pool has been released.
	Ready(ctx context.Context) error
	// Close waits for queued supplier emails and stops the dispatch pool.
	Close(ctx context.Context) error
}
