package supplier

import (
	"context"
	"errors"

	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/middleware/db"
	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/nexussign/supply/pkg/repo"
	"github.com/nexussign/supply/pkg/repo/model"
	"gorm.io/gorm"
)

type supplierImpl struct {
	*db.Datastore
}

func NewSupplierRepo() repo.SupplierRepo {
	return &supplierImpl{Datastore: db.DB()}
}

func NewWithStore(ds *db.Datastore) repo.SupplierRepo {
	return &supplierImpl{Datastore: ds}
}

func (s *supplierImpl) GetSupplier(ctx context.Context, id int64) (*model.Supplier, error) {
	data := &model.Supplier{}
	if err := s.DBWithContext(ctx).Where("id = ?", id).Take(data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.SupplierNotFound.WithMsgf("supplier %d not found", id)
		}
		logger.Errorf(ctx, "GetSupplier id: %d err: %+v", id, err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return data, nil
}

func (s *supplierImpl) GetSuppliers(ctx context.Context, ids []int64) (map[int64]*model.Supplier, error) {
	res := make(map[int64]*model.Supplier, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	datas := make([]*model.Supplier, 0, len(ids))
	if err := s.DBWithContext(ctx).Where("id IN ?", ids).Find(&datas).Error; err != nil {
		logger.Errorf(ctx, "GetSuppliers err: %+v", err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	for _, d := range datas {
		res[d.ID] = d
	}
	return res, nil
}

func (s *supplierImpl) GetContacts(ctx context.Context, supplierIDs []int64) (map[int64][]*model.SupplierContact, error) {
	res := make(map[int64][]*model.SupplierContact, len(supplierIDs))
	if len(supplierIDs) == 0 {
		return res, nil
	}
	datas := make([]*model.SupplierContact, 0, len(supplierIDs))
	if err := s.DBWithContext(ctx).
		Where("supplier_id IN ?", supplierIDs).
		Order("supplier_id, is_primary DESC, id").
		Find(&datas).Error; err != nil {
		logger.Errorf(ctx, "GetContacts err: %+v", err)
		return nil, code.QueryRecordErr.WithErr(err)
	}
	for _, d := range datas {
		res[d.SupplierID] = append(res[d.SupplierID], d)
	}
	return res, nil
}
