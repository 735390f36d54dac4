package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jrodas4044/signature-register/internal/domain/petition"
)

type AdhesionRepository struct {
	db *gorm.DB
}

func NewAdhesionRepository(db *gorm.DB) *AdhesionRepository {
	return &AdhesionRepository{db: db}
}

func (r *AdhesionRepository) ListBySheet(ctx context.Context, sheetID string) ([]petition.AdhesionLine, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []AdhesionModel
	err := r.db.WithContext(ctx).
		Where("hoja_id = ?", sheetID).
		Order("linea_id").
		Find(&models).Error
	if err != nil {
		return nil, translateErr(err)
	}
	lines := make([]petition.AdhesionLine, len(models))
	for i, m := range models {
		lines[i] = adhesionFromModel(m)
	}
	return lines, nil
}

func (r *AdhesionRepository) GetBySheetAndLine(ctx context.Context, sheetID string, line int) (petition.AdhesionLine, error) {
	if r.db == nil {
		return petition.AdhesionLine{}, errDBUnavailable
	}
	var model AdhesionModel
	err := r.db.WithContext(ctx).
		First(&model, "hoja_id = ? AND linea_id = ?", sheetID, line).Error
	if err != nil {
		return petition.AdhesionLine{}, translateErr(err)
	}
	return adhesionFromModel(model), nil
}

// SaveLines upserts the given rows by (sheet, position) inside one
// transaction. Errors carry the offending position.
func (r *AdhesionRepository) SaveLines(ctx context.Context, sheetID string, lines []petition.AdhesionLine) error {
	if r.db == nil {
		return errDBUnavailable
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			var existing AdhesionModel
			err := tx.First(&existing, "hoja_id = ? AND linea_id = ?", sheetID, line.Line).Error
			switch {
			case err == nil:
				updateErr := tx.Model(&AdhesionModel{}).
					Where("id = ?", existing.ID).
					Updates(map[string]any{
						"dpi_ciudadano":    line.CitizenDPI,
						"nombre_ciudadano": line.CitizenName,
						"estado_legal":     string(line.State),
						"causa_rechazo":    causeToString(line.Cause),
					}).Error
				if updateErr != nil {
					return fmt.Errorf("line %d: %w", line.Line, updateErr)
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				model := adhesionToModel(line)
				model.SheetID = sheetID
				if model.ID == "" {
					model.ID = uuid.NewString()
				}
				if insertErr := tx.Create(&model).Error; insertErr != nil {
					return fmt.Errorf("line %d: %w", line.Line, insertErr)
				}
			default:
				return fmt.Errorf("line %d: %w", line.Line, err)
			}
		}
		return nil
	})
	return err
}

func (r *AdhesionRepository) SetOutcome(ctx context.Context, id string, state petition.AdhesionState, cause *petition.RejectionCause) error {
	if r.db == nil {
		return errDBUnavailable
	}
	err := r.db.WithContext(ctx).Model(&AdhesionModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"estado_legal":  string(state),
			"causa_rechazo": causeToString(cause),
		}).Error
	return translateErr(err)
}

// HasActiveDPIElsewhere reports whether the DPI is already recorded as
// PENDIENTE or ACEPTADO on a line of any other sheet.
func (r *AdhesionRepository) HasActiveDPIElsewhere(ctx context.Context, dpi, excludeSheetID string) (bool, error) {
	if r.db == nil {
		return false, errDBUnavailable
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&AdhesionModel{}).
		Where("dpi_ciudadano = ?", dpi).
		Where("estado_legal IN ?", []string{
			string(petition.AdhesionAccepted),
			string(petition.AdhesionPending),
		}).
		Where("hoja_id <> ?", excludeSheetID).
		Count(&count).Error
	if err != nil {
		return false, translateErr(err)
	}
	return count > 0, nil
}

func (r *AdhesionRepository) StateCountsByLeader(ctx context.Context, leaderID string) (map[petition.AdhesionState]int, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	raw, err := countGrouped(r.db.WithContext(ctx).Model(&AdhesionModel{}).
		Joins("JOIN hojas ON hojas.id = adhesiones.hoja_id").
		Where("hojas.lider_id = ?", leaderID), "estado_legal")
	if err != nil {
		return nil, err
	}
	counts := make(map[petition.AdhesionState]int, len(raw))
	for state, count := range raw {
		counts[petition.AdhesionState(state)] = count
	}
	return counts, nil
}

func (r *AdhesionRepository) RejectionCausesByLeader(ctx context.Context, leaderID string) (int, int, error) {
	if r.db == nil {
		return 0, 0, errDBUnavailable
	}
	rejections := []string{
		string(petition.AdhesionRejected),
		string(petition.AdhesionInternalRejected),
	}
	var total int64
	err := r.db.WithContext(ctx).Model(&AdhesionModel{}).
		Joins("JOIN hojas ON hojas.id = adhesiones.hoja_id").
		Where("hojas.lider_id = ?", leaderID).
		Where("estado_legal IN ?", rejections).
		Count(&total).Error
	if err != nil {
		return 0, 0, translateErr(err)
	}
	fraudCauses := make([]string, 0, len(petition.FraudCauses))
	for cause := range petition.FraudCauses {
		fraudCauses = append(fraudCauses, string(cause))
	}
	var fraud int64
	err = r.db.WithContext(ctx).Model(&AdhesionModel{}).
		Joins("JOIN hojas ON hojas.id = adhesiones.hoja_id").
		Where("hojas.lider_id = ?", leaderID).
		Where("estado_legal IN ?", rejections).
		Where("causa_rechazo IN ?", fraudCauses).
		Count(&fraud).Error
	if err != nil {
		return 0, 0, translateErr(err)
	}
	return int(total), int(fraud), nil
}

func (r *AdhesionRepository) CountByState(ctx context.Context) (map[string]int, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	return countGrouped(r.db.WithContext(ctx).Model(&AdhesionModel{}), "estado_legal")
}

func causeToString(cause *petition.RejectionCause) *string {
	if cause == nil {
		return nil
	}
	s := string(*cause)
	return &s
}

func adhesionToModel(line petition.AdhesionLine) AdhesionModel {
	return AdhesionModel{
		ID:          line.ID,
		SheetID:     line.SheetID,
		Line:        line.Line,
		CitizenDPI:  line.CitizenDPI,
		CitizenName: line.CitizenName,
		State:       string(line.State),
		Cause:       causeToString(line.Cause),
	}
}

func adhesionFromModel(model AdhesionModel) petition.AdhesionLine {
	line := petition.AdhesionLine{
		ID:          model.ID,
		SheetID:     model.SheetID,
		Line:        model.Line,
		CitizenDPI:  model.CitizenDPI,
		CitizenName: model.CitizenName,
		State:       petition.AdhesionState(model.State),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	if model.Cause != nil {
		cause := petition.RejectionCause(*model.Cause)
		line.Cause = &cause
	}
	return line
}
