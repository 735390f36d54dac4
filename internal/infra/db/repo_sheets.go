package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
)

type SheetRepository struct {
	db *gorm.DB
}

func NewSheetRepository(db *gorm.DB) *SheetRepository {
	return &SheetRepository{db: db}
}

func (r *SheetRepository) Get(ctx context.Context, id string) (petition.Sheet, error) {
	if r.db == nil {
		return petition.Sheet{}, errDBUnavailable
	}
	var model SheetModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return petition.Sheet{}, translateErr(err)
	}
	return sheetFromModel(model), nil
}

func (r *SheetRepository) GetByNumber(ctx context.Context, number int) (petition.Sheet, error) {
	if r.db == nil {
		return petition.Sheet{}, errDBUnavailable
	}
	var model SheetModel
	if err := r.db.WithContext(ctx).First(&model, "numero_hoja = ?", number).Error; err != nil {
		return petition.Sheet{}, translateErr(err)
	}
	return sheetFromModel(model), nil
}

// CreateWithLines creates the sheet and its five blank PENDIENTE lines in one
// transaction, preserving block integrity even on partial failure.
func (r *SheetRepository) CreateWithLines(ctx context.Context, sheet petition.Sheet) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := SheetModel{
		ID:         sheet.ID,
		Number:     sheet.Number,
		LeaderID:   sheet.LeaderID,
		State:      string(sheet.State),
		AssignedAt: sheet.AssignedAt,
		ReceivedAt: sheet.ReceivedAt,
	}
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		for line := 1; line <= petition.LinesPerSheet; line++ {
			adhesion := AdhesionModel{
				ID:      uuid.NewString(),
				SheetID: model.ID,
				Line:    line,
				State:   string(petition.AdhesionPending),
			}
			if err := tx.Create(&adhesion).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateErr(err)
}

func (r *SheetRepository) SetState(ctx context.Context, id string, state petition.SheetState, receivedAt *time.Time) error {
	if r.db == nil {
		return errDBUnavailable
	}
	updates := map[string]any{"estado_fisico": string(state)}
	if receivedAt != nil {
		updates["fecha_recepcion"] = receivedAt
	}
	err := r.db.WithContext(ctx).Model(&SheetModel{}).
		Where("id = ?", id).
		Updates(updates).Error
	return translateErr(err)
}

func (r *SheetRepository) Override(ctx context.Context, id string, state petition.SheetState, leaderID string, receivedAt *time.Time) error {
	if r.db == nil {
		return errDBUnavailable
	}
	err := r.db.WithContext(ctx).Model(&SheetModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"estado_fisico":   string(state),
			"lider_id":        leaderID,
			"fecha_recepcion": receivedAt,
		}).Error
	return translateErr(err)
}

func (r *SheetRepository) List(ctx context.Context, state petition.SheetState, offset, limit int) ([]petition.Sheet, int, error) {
	if r.db == nil {
		return nil, 0, errDBUnavailable
	}
	query := r.db.WithContext(ctx).Model(&SheetModel{})
	if state != "" {
		query = query.Where("estado_fisico = ?", string(state))
	}
	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateErr(err)
	}
	var models []SheetModel
	if err := query.Order("numero_hoja").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, translateErr(err)
	}
	sheets := make([]petition.Sheet, len(models))
	for i, m := range models {
		sheets[i] = sheetFromModel(m)
	}
	return sheets, int(total), nil
}

func (r *SheetRepository) CountByLeader(ctx context.Context, leaderID string) (int, int, error) {
	if r.db == nil {
		return 0, 0, errDBUnavailable
	}
	var assigned, received int64
	err := r.db.WithContext(ctx).Model(&SheetModel{}).
		Where("lider_id = ?", leaderID).
		Count(&assigned).Error
	if err != nil {
		return 0, 0, translateErr(err)
	}
	err = r.db.WithContext(ctx).Model(&SheetModel{}).
		Where("lider_id = ?", leaderID).
		Where("estado_fisico = ?", string(petition.SheetReceived)).
		Count(&received).Error
	if err != nil {
		return 0, 0, translateErr(err)
	}
	return int(assigned), int(received), nil
}

func (r *SheetRepository) CountAll(ctx context.Context) (int, int, error) {
	if r.db == nil {
		return 0, 0, errDBUnavailable
	}
	var assigned, received int64
	if err := r.db.WithContext(ctx).Model(&SheetModel{}).Count(&assigned).Error; err != nil {
		return 0, 0, translateErr(err)
	}
	err := r.db.WithContext(ctx).Model(&SheetModel{}).
		Where("estado_fisico = ?", string(petition.SheetReceived)).
		Count(&received).Error
	if err != nil {
		return 0, 0, translateErr(err)
	}
	return int(assigned), int(received), nil
}

func (r *SheetRepository) CountByState(ctx context.Context) (map[string]int, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	return countGrouped(r.db.WithContext(ctx).Model(&SheetModel{}), "estado_fisico")
}

type groupCount struct {
	Key   string
	Total int
}

// countGrouped buckets rows by the raw column value; unknown enum values are
// still counted under their literal key.
func countGrouped(query *gorm.DB, column string) (map[string]int, error) {
	var rows []groupCount
	err := query.
		Select(column + " AS key, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, translateErr(err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Total
	}
	return counts, nil
}

func sheetFromModel(model SheetModel) petition.Sheet {
	return petition.Sheet{
		ID:         model.ID,
		Number:     model.Number,
		LeaderID:   model.LeaderID,
		State:      petition.SheetState(model.State),
		AssignedAt: model.AssignedAt,
		ReceivedAt: model.ReceivedAt,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}
