package communityplans

import (
	"context"
	"errors"
	"time"

	"github.com/forrest-fire-fund/cnx-backend/internal/db"
	"github.com/forrest-fire-fund/cnx-backend/internal/metrics"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps plans in postgres.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(d *gorm.DB) *GormStore {
	return &GormStore{DB: d}
}

func storeErr(op string, err error) error {
	metrics.StoreErrorsTotal.WithLabelValues(op).Inc()
	return eris.Wrapf(err, "communityplans: %s", op)
}

func (s *GormStore) Create(ctx context.Context, p *Plan) error {
	if err := s.DB.WithContext(ctx).Create(p).Error; err != nil {
		return storeErr("create", err)
	}
	return nil
}

func (s *GormStore) filtered(ctx context.Context, q ListQuery) *gorm.DB {
	tx := s.DB.WithContext(ctx).Model(&Plan{})
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.District != "" {
		tx = tx.Where(datatypes.JSONQuery("village_info").Equals(q.District, "district"))
	}
	if q.Subdistrict != "" {
		tx = tx.Where(datatypes.JSONQuery("village_info").Equals(q.Subdistrict, "subdistrict"))
	}
	if q.ForestType != "" {
		tx = tx.Where("? = ANY(forest_types)", q.ForestType)
	}
	return tx
}

func (s *GormStore) List(ctx context.Context, q ListQuery) ([]*Plan, int64, error) {
	var total int64
	if err := s.filtered(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, storeErr("count", err)
	}

	var plans []*Plan
	err := s.filtered(ctx, q).
		Select("id", "village_info", "status", "submitted_at", "budget").
		Order("submitted_at DESC").
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&plans).Error
	if err != nil {
		return nil, 0, storeErr("list", err)
	}

	return plans, total, nil
}

func (s *GormStore) Get(ctx context.Context, id uuid.UUID) (*Plan, error) {
	var p Plan
	err := s.DB.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get", err)
	}
	return &p, nil
}

func (s *GormStore) UpdateStatus(ctx context.Context, id uuid.UUID, u StatusUpdate, at time.Time) (*Plan, error) {
	updates := map[string]any{
		"status":      u.Status,
		"reviewed_at": at,
	}
	if u.Notes != nil {
		updates["notes"] = *u.Notes
	}
	if u.ReviewedBy != nil {
		updates["reviewed_by"] = *u.ReviewedBy
	}

	var p Plan
	res := s.DB.WithContext(ctx).
		Model(&p).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, storeErr("update_status", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *GormStore) Delete(ctx context.Context, id uuid.UUID) (*Plan, error) {
	var p Plan
	res := s.DB.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(&p)
	if res.Error != nil {
		return nil, storeErr("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &p, nil
}

const statsQuery = `
SELECT
	COUNT(*) AS total_plans,
	COUNT(*) FILTER (WHERE status = 'pending') AS pending_plans,
	COUNT(*) FILTER (WHERE status = 'approved') AS approved_plans,
	COUNT(*) FILTER (WHERE status = 'under_review') AS under_review_plans,
	COUNT(*) FILTER (WHERE status = 'rejected') AS rejected_plans,
	COALESCE(SUM(COALESCE((budget->>'allocated')::float8, 0) + COALESCE((budget->>'shortage')::float8, 0)), 0) AS total_budget_requested,
	COALESCE(SUM(COALESCE((budget->>'allocated')::float8, 0)), 0) AS total_budget_allocated,
	COALESCE(SUM(COALESCE((budget->>'shortage')::float8, 0)), 0) AS total_budget_shortage
FROM community.plans`

func (s *GormStore) Statistics(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.DB.WithContext(ctx).Raw(statsQuery).Scan(&st).Error; err != nil {
		return Stats{}, storeErr("statistics", err)
	}
	return st, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	return db.Ping(ctx, s.DB)
}
