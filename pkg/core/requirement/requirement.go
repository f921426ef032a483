package requirement

import (
	"context"

	"github.com/nexussign/supply/pkg/common"
)

type Service interface {
	Create(ctx context.Context, req *CreateReq) (*View, error)
	Get(ctx context.Context, id int64) (*View, error)
	List(ctx context.Context, req *ListReq) (*common.PageResp[[]*View], error)
	// Update applies patch through ApplyPatch, including the ordered_date cascade.
	Update(ctx context.Context, id int64, patch *Patch) (*View, error)
}
