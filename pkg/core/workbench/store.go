package workbench

import (
	"context"

	"github.com/nexussign/supply/pkg/common"
	"github.com/nexussign/supply/pkg/core/hold"
	"github.com/nexussign/supply/pkg/core/purchase"
	"github.com/nexussign/supply/pkg/core/receipt"
	"github.com/nexussign/supply/pkg/core/requirement"
)

// RequirementStore is the authoritative store as the workbench sees it, usually over HTTP.
type RequirementStore interface {
	ListRequirements(ctx context.Context, req *requirement.ListReq) (*common.PageResp[[]*requirement.View], error)
	GetRequirement(ctx context.Context, id int64) (*requirement.View, error)
	UpdateRequirement(ctx context.Context, id int64, patch *requirement.Patch) (*requirement.View, error)

	PlaceHold(ctx context.Context, req *hold.PlaceReq) (*hold.HoldView, error)
	EditHold(ctx context.Context, req *hold.PlaceReq) (*hold.HoldView, error)
	ReleaseHold(ctx context.Context, requirementID int64) error
	CurrentHold(ctx context.Context, requirementID int64) (*hold.HoldView, error)
	Candidates(ctx context.Context, requirementID int64) (*hold.CandidatesResp, error)
	CheckStock(ctx context.Context, req *hold.StockCheckReq) (*hold.StockAvailability, error)

	OtherHolds(ctx context.Context, req *receipt.OtherHoldsReq) ([]*receipt.OtherHold, error)
	Receive(ctx context.Context, req *receipt.ReceiveReq) (*receipt.ReceiveResp, error)

	DraftGroups(ctx context.Context) ([]*purchase.DraftGroup, error)
	Unassigned(ctx context.Context) ([]*requirement.View, error)
	SubmitDraft(ctx context.Context, req *purchase.SubmitReq) (*purchase.SubmitResp, error)
}
