package workbench

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/core/hold"
	"github.com/nexussign/supply/pkg/core/notify"
	"github.com/nexussign/supply/pkg/core/purchase"
	"github.com/nexussign/supply/pkg/core/receipt"
	"github.com/nexussign/supply/pkg/core/requirement"
	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/nexussign/supply/pkg/repo/model"
	"github.com/nexussign/supply/pkg/utils"
)

// Session is one operator's working copy of a requirement list. Edits are applied
// optimistically through the same reducer the store runs; any failed mutation drops the
// optimistic copy, tells the operator and reloads the list from the store. Nothing is
// retried.
type Session struct {
	store    RequirementStore
	notifier Notifier
	filter   requirement.ListReq

	now   func() time.Time
	items *haxmap.Map[int64, *model.MaterialRequirement]
	mu    sync.RWMutex
	order []int64
	total int64
}

func NewSession(store RequirementStore, notifier Notifier, filter *requirement.ListReq) *Session {
	s := &Session{
		store:    store,
		notifier: notifier,
		now:      time.Now,
		items:    haxmap.New[int64, *model.MaterialRequirement](),
	}
	if filter != nil {
		s.filter = *filter
	}
	if s.notifier == nil {
		s.notifier = NotifierFunc(func(Notice) {})
	}
	return s
}

// Load replaces the cached list with the store's current page.
func (s *Session) Load(ctx context.Context) error {
	filter := s.filter
	page, err := s.store.ListRequirements(ctx, &filter)
	if err != nil {
		logger.Warnf(ctx, "workbench load err: %+v", err)
		s.notifier.Notify(errNotice("load", 0, err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.order
	s.order = make([]int64, 0, len(page.Data))
	for _, v := range page.Data {
		s.items.Set(v.ID, v.MaterialRequirement)
		s.order = append(s.order, v.ID)
	}
	for _, id := range old {
		if !utils.Contains(s.order, id) {
			s.items.Del(id)
		}
	}
	s.total = page.Total
	return nil
}

// Requirements returns the cached rows in list order with their derived status.
func (s *Session) Requirements() []*requirement.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]*requirement.View, 0, len(s.order))
	for _, id := range s.order {
		if m, ok := s.items.Get(id); ok {
			res = append(res, requirement.NewView(m.Clone()))
		}
	}
	return res
}

func (s *Session) Requirement(id int64) (*requirement.View, bool) {
	m, ok := s.items.Get(id)
	if !ok {
		return nil, false
	}
	return requirement.NewView(m.Clone()), true
}

func (s *Session) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Update shows the patched row at once and then confirms it with the store.
func (s *Session) Update(ctx context.Context, id int64, patch *requirement.Patch) (*requirement.View, error) {
	current, ok := s.items.Get(id)
	if !ok {
		err := code.RequirementNotFound.WithMsgf("requirement %d is not in this list", id)
		s.notifier.Notify(errNotice("update", id, err))
		return nil, err
	}

	next, err := requirement.ApplyPatchAt(current, patch, s.now())
	if err != nil {
		s.notifier.Notify(errNotice("update", id, err))
		return nil, err
	}
	s.items.Set(id, next)

	saved, err := s.store.UpdateRequirement(ctx, id, patch)
	if err != nil {
		s.items.Set(id, current)
		s.fail(ctx, "update", id, err)
		return nil, err
	}
	s.items.Set(id, saved.MaterialRequirement)
	return saved, nil
}

func (s *Session) CheckStock(ctx context.Context, id int64) (*hold.StockAvailability, error) {
	avail, err := s.store.CheckStock(ctx, &hold.StockCheckReq{RequirementID: &id})
	if err != nil {
		s.notifier.Notify(errNotice("check-stock", id, err))
		return nil, err
	}
	return avail, nil
}

func (s *Session) Candidates(ctx context.Context, id int64) (*hold.CandidatesResp, error) {
	resp, err := s.store.Candidates(ctx, id)
	if err != nil {
		s.notifier.Notify(errNotice("candidates", id, err))
		return nil, err
	}
	return resp, nil
}

func (s *Session) PlaceHold(ctx context.Context, req *hold.PlaceReq) (*hold.HoldView, error) {
	view, err := s.store.PlaceHold(ctx, req)
	if err != nil {
		s.fail(ctx, "place-hold", req.RequirementID, err)
		return nil, err
	}
	s.refresh(ctx, req.RequirementID)
	return view, nil
}

// EditHold returns the current hold for pre-populating the selection when req is nil,
// and otherwise swaps the hold in one store call.
func (s *Session) EditHold(ctx context.Context, requirementID int64, req *hold.PlaceReq) (*hold.HoldView, error) {
	if req == nil {
		view, err := s.store.CurrentHold(ctx, requirementID)
		if err != nil {
			s.fail(ctx, "edit-hold", requirementID, err)
			return nil, err
		}
		return view, nil
	}
	view, err := s.store.EditHold(ctx, req)
	if err != nil {
		s.fail(ctx, "edit-hold", req.RequirementID, err)
		return nil, err
	}
	s.refresh(ctx, req.RequirementID)
	return view, nil
}

func (s *Session) ReleaseHold(ctx context.Context, requirementID int64) error {
	if err := s.store.ReleaseHold(ctx, requirementID); err != nil {
		s.fail(ctx, "release-hold", requirementID, err)
		return err
	}
	s.refresh(ctx, requirementID)
	return nil
}

// ReceivePlan is the first step of receiving. Done is set when nothing competed for the
// piece and the receipt already happened; otherwise the operator picks from Others.
type ReceivePlan struct {
	RequirementID int64
	VinylID       int64
	Others        []*receipt.OtherHold
	Done          *receipt.ReceiveResp
}

func (s *Session) BeginReceive(ctx context.Context, id int64, receivedDate *time.Time) (*ReceivePlan, error) {
	current, ok := s.items.Get(id)
	if !ok {
		v, err := s.store.GetRequirement(ctx, id)
		if err != nil {
			s.fail(ctx, "receive", id, err)
			return nil, err
		}
		current = v.MaterialRequirement
	}

	plan := &ReceivePlan{RequirementID: id}
	if current.HeldVinylID != nil {
		plan.VinylID = *current.HeldVinylID
		others, err := s.store.OtherHolds(ctx, &receipt.OtherHoldsReq{RequirementID: id, VinylID: plan.VinylID})
		if err != nil {
			s.fail(ctx, "receive", id, err)
			return nil, err
		}
		if len(others) > 0 {
			plan.Others = others
			return plan, nil
		}
	}

	resp, err := s.ConfirmReceive(ctx, plan, nil, receivedDate)
	if err != nil {
		return nil, err
	}
	plan.Done = resp
	return plan, nil
}

// ConfirmReceive receives the plan's requirement with the selected competitors. Each
// competitor that did not reach its intended state is reported on its own.
func (s *Session) ConfirmReceive(ctx context.Context, plan *ReceivePlan, selected []int64, receivedDate *time.Time) (*receipt.ReceiveResp, error) {
	resp, err := s.store.Receive(ctx, &receipt.ReceiveReq{
		RequirementID: plan.RequirementID,
		ReceivedDate:  receivedDate,
		AlsoReceive:   selected,
	})
	if err != nil {
		s.fail(ctx, "receive", plan.RequirementID, err)
		return nil, err
	}

	ids := []int64{plan.RequirementID}
	for _, it := range resp.Items {
		ids = append(ids, it.RequirementID)
		if it.OK {
			continue
		}
		n := Notice{
			Level:         LevelWarn,
			Op:            "receive",
			RequirementID: it.RequirementID,
			Kind:          code.KindConflict,
			Code:          it.Code,
			Message:       fmt.Sprintf("requirement %d was not %s: %s", it.RequirementID, it.Action, it.Error),
		}
		if it.Released {
			n.Message += " (hold released)"
		}
		s.notifier.Notify(n)
	}
	s.refresh(ctx, ids...)
	return resp, nil
}

func (s *Session) DraftGroups(ctx context.Context) ([]*purchase.DraftGroup, error) {
	groups, err := s.store.DraftGroups(ctx)
	if err != nil {
		s.notifier.Notify(errNotice("draft-groups", 0, err))
		return nil, err
	}
	return groups, nil
}

func (s *Session) Unassigned(ctx context.Context) ([]*requirement.View, error) {
	views, err := s.store.Unassigned(ctx)
	if err != nil {
		s.notifier.Notify(errNotice("unassigned", 0, err))
		return nil, err
	}
	return views, nil
}

func (s *Session) SubmitDraft(ctx context.Context, req *purchase.SubmitReq) (*purchase.SubmitResp, error) {
	resp, err := s.store.SubmitDraft(ctx, req)
	if err != nil {
		s.fail(ctx, "submit-po", 0, err)
		return nil, err
	}
	s.notifier.Notify(Notice{Level: LevelInfo, Op: "submit-po", Message: fmt.Sprintf("submitted %s", resp.Order.OrderNumber)})
	_ = s.Load(ctx)
	return resp, nil
}

// OnChange reloads when a broadcast touches the list. Creations always reload since the
// new row may match the filter.
func (s *Session) OnChange(ctx context.Context, change *notify.RequirementChange) error {
	if change.Kind == notify.ChangeCreate {
		return s.Load(ctx)
	}
	for _, id := range change.RequirementIDs {
		if _, ok := s.items.Get(id); ok {
			return s.Load(ctx)
		}
	}
	return nil
}

// HandleMessage decodes a requirement-modify broadcast and passes it to OnChange.
func (s *Session) HandleMessage(ctx context.Context, raw string) error {
	msg := &struct {
		Channel notify.Action            `json:"action"`
		Data    notify.RequirementChange `json:"data"`
	}{}
	if err := json.Unmarshal([]byte(raw), msg); err != nil {
		return code.UnmarshalWSDataErr.WithErr(err)
	}
	if msg.Channel != notify.RequirementModify {
		return nil
	}
	return s.OnChange(ctx, &msg.Data)
}

func (s *Session) fail(ctx context.Context, op string, id int64, err error) {
	logger.Warnf(ctx, "workbench %s requirement: %d err: %+v", op, id, err)
	s.notifier.Notify(errNotice(op, id, err))
	_ = s.Load(ctx)
}

// refresh re-reads rows after a successful mutation so derived state matches the store.
func (s *Session) refresh(ctx context.Context, ids ...int64) {
	for _, id := range ids {
		if _, ok := s.items.Get(id); !ok {
			continue
		}
		v, err := s.store.GetRequirement(ctx, id)
		if err != nil {
			logger.Warnf(ctx, "workbench refresh requirement: %d err: %+v", id, err)
			_ = s.Load(ctx)
			return
		}
		s.items.Set(id, v.MaterialRequirement)
	}
}
