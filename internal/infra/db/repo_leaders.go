package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
)

type LeaderRepository struct {
	db *gorm.DB
}

func NewLeaderRepository(db *gorm.DB) *LeaderRepository {
	return &LeaderRepository{db: db}
}

func (r *LeaderRepository) Create(ctx context.Context, leader petition.Leader) (petition.Leader, error) {
	if r.db == nil {
		return petition.Leader{}, errDBUnavailable
	}
	model := leaderToModel(leader)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return petition.Leader{}, translateErr(err)
	}
	return leaderFromModel(model), nil
}

func (r *LeaderRepository) Get(ctx context.Context, id string) (petition.Leader, error) {
	if r.db == nil {
		return petition.Leader{}, errDBUnavailable
	}
	var model LeaderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return petition.Leader{}, translateErr(err)
	}
	return leaderFromModel(model), nil
}

func (r *LeaderRepository) Update(ctx context.Context, leader petition.Leader) error {
	if r.db == nil {
		return errDBUnavailable
	}
	err := r.db.WithContext(ctx).Model(&LeaderModel{}).
		Where("id = ?", leader.ID).
		Updates(map[string]any{
			"nombre": leader.Name,
			"zona":   leader.Zone,
			"dpi":    leader.DPI,
			"estado": string(leader.State),
		}).Error
	return translateErr(err)
}

func (r *LeaderRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	if r.db == nil {
		return errDBUnavailable
	}
	err := r.db.WithContext(ctx).Model(&LeaderModel{}).
		Where("id = ?", id).
		Update("deleted_at", at).Error
	return translateErr(err)
}

func (r *LeaderRepository) List(ctx context.Context, offset, limit int) ([]petition.Leader, int, error) {
	if r.db == nil {
		return nil, 0, errDBUnavailable
	}
	return r.list(r.db.WithContext(ctx).Where("deleted_at IS NULL"), offset, limit)
}

func (r *LeaderRepository) ListActive(ctx context.Context, offset, limit int) ([]petition.Leader, int, error) {
	if r.db == nil {
		return nil, 0, errDBUnavailable
	}
	return r.list(r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Where("estado = ?", string(petition.LeaderActive)), offset, limit)
}

func (r *LeaderRepository) list(query *gorm.DB, offset, limit int) ([]petition.Leader, int, error) {
	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Model(&LeaderModel{}).Count(&total).Error; err != nil {
		return nil, 0, translateErr(err)
	}
	var models []LeaderModel
	if err := query.Order("nombre").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, translateErr(err)
	}
	leaders := make([]petition.Leader, len(models))
	for i, m := range models {
		leaders[i] = leaderFromModel(m)
	}
	return leaders, int(total), nil
}

func (r *LeaderRepository) ListAll(ctx context.Context) ([]petition.Leader, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []LeaderModel
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("nombre").
		Find(&models).Error
	if err != nil {
		return nil, translateErr(err)
	}
	leaders := make([]petition.Leader, len(models))
	for i, m := range models {
		leaders[i] = leaderFromModel(m)
	}
	return leaders, nil
}

func (r *LeaderRepository) CountActive(ctx context.Context) (int, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&LeaderModel{}).
		Where("deleted_at IS NULL").
		Where("estado = ?", string(petition.LeaderActive)).
		Count(&count).Error
	return int(count), translateErr(err)
}

func leaderToModel(leader petition.Leader) LeaderModel {
	return LeaderModel{
		ID:        leader.ID,
		Name:      leader.Name,
		Zone:      leader.Zone,
		DPI:       leader.DPI,
		State:     string(leader.State),
		DeletedAt: leader.DeletedAt,
		CreatedAt: leader.CreatedAt,
		UpdatedAt: leader.UpdatedAt,
	}
}

func leaderFromModel(model LeaderModel) petition.Leader {
	return petition.Leader{
		ID:        model.ID,
		Name:      model.Name,
		Zone:      model.Zone,
		DPI:       model.DPI,
		State:     petition.LeaderState(model.State),
		DeletedAt: model.DeletedAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
