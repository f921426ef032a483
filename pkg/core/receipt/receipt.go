package receipt

import "context"

type Service interface {
	OtherHolds(ctx context.Context, req *OtherHoldsReq) ([]*OtherHold, error)
	// Receive marks the requirement received. When it holds a vinyl piece, the piece is
	// consumed, AlsoReceive members are received with it and every other holder is released.
	Receive(ctx context.Context, req *ReceiveReq) (*ReceiveResp, error)
}
