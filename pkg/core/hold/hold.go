package hold

import "context"

type Service interface {
	// PlaceHold reserves a unit. A hold of the same kind is replaced; a hold of the
	// other kind is a conflict.
	PlaceHold(ctx context.Context, req *PlaceReq) (*HoldView, error)
	ReleaseHold(ctx context.Context, requirementID int64) error
	// EditHold swaps target or quantity in one transaction; a failed placement keeps the old hold.
	EditHold(ctx context.Context, req *PlaceReq) (*HoldView, error)
	CurrentHold(ctx context.Context, requirementID int64) (*HoldView, error)
	Candidates(ctx context.Context, requirementID int64) (*CandidatesResp, error)
	// CheckStock is advisory; PlaceHold re-validates under lock.
	CheckStock(ctx context.Context, req *StockCheckReq) (*StockAvailability, error)
}
