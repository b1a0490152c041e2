package kaizen

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "kaizen-server/internal/domain/kaizen"
	"kaizen-server/internal/infrastructure/database/entities"
	"kaizen-server/internal/utils/kaizennum"
	"kaizen-server/internal/utils/platformerrors"
)

// Repository handles kaizen and action-plan persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type summaryRow struct {
	ID                     int64
	KaizenNumber           string
	TypeName               string
	DepartmentName         string
	ApplicationArea        string
	Leader                 string
	Team                   *string
	SQDCEPCategory         string `gorm:"column:sqdcep_category"`
	ProblemDescription     *string
	ImprovementDescription *string
	Results                *string
	Cost                   float64
	Benefit                float64
	IsStandardized         bool
	Status                 string
	SubmittedDate          *string
	CompletedDate          *string
	CreatedBy              string
	CreatedAt              time.Time
	ActionCount            int64
}

// List returns one page of summaries plus the unpaged total, newest first.
func (r *Repository) List(ctx context.Context, filter domain.ListFilter) ([]domain.KaizenSummary, int64, error) {
	offset := (filter.Page - 1) * filter.Limit

	base := r.db.WithContext(ctx).Table("kaizens AS k")
	if filter.Status != "" {
		base = base.Where("k.status = ?", filter.Status)
	}
	if filter.Department != "" {
		base = base.Where("k.department_name = ?", filter.Department)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, r.dbError(ctx, "failed to count kaizens", err)
	}

	var rows []summaryRow
	err := base.Session(&gorm.Session{}).
		Select(`k.id, k.kaizen_number, k.type_name, k.department_name, k.application_area,
			k.leader, k.team, k.sqdcep_category, k.problem_description,
			k.improvement_description, k.results, k.cost, k.benefit,
			k.is_standardized, k.status, k.submitted_date, k.completed_date,
			k.created_by, k.created_at, COUNT(ap.id) AS action_count`).
		Joins("LEFT JOIN action_plans AS ap ON ap.kaizen_id = k.id").
		Group("k.id").
		Order("k.created_at DESC").
		Limit(filter.Limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, r.dbError(ctx, "failed to list kaizens", err)
	}

	summaries := make([]domain.KaizenSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, domain.KaizenSummary{
			ID:                     row.ID,
			KaizenNumber:           row.KaizenNumber,
			TypeName:               row.TypeName,
			DepartmentName:         row.DepartmentName,
			ApplicationArea:        row.ApplicationArea,
			Leader:                 row.Leader,
			Team:                   row.Team,
			SQDCEPCategory:         row.SQDCEPCategory,
			ProblemDescription:     row.ProblemDescription,
			ImprovementDescription: row.ImprovementDescription,
			Results:                row.Results,
			Cost:                   row.Cost,
			Benefit:                row.Benefit,
			CostBenefitRatio:       costBenefitRatio(row.Cost, row.Benefit),
			IsStandardized:         row.IsStandardized,
			Status:                 row.Status,
			SubmittedDate:          row.SubmittedDate,
			CompletedDate:          row.CompletedDate,
			CreatedBy:              row.CreatedBy,
			CreatedAt:              row.CreatedAt,
			ActionCount:            row.ActionCount,
		})
	}
	return summaries, total, nil
}

// GetByID returns the record with its action plans.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.KaizenRecord, []domain.ActionPlan, error) {
	var entity entities.Kaizen
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, r.notFound(ctx, err)
		}
		return nil, nil, r.dbError(ctx, "failed to get kaizen by id", err)
	}

	var plans []entities.ActionPlan
	if err := r.db.WithContext(ctx).Where("kaizen_id = ?", id).Order("id").Find(&plans).Error; err != nil {
		return nil, nil, r.dbError(ctx, "failed to load action plans", err)
	}

	record := mapKaizen(entity)
	actions := make([]domain.ActionPlan, 0, len(plans))
	for _, plan := range plans {
		actions = append(actions, mapActionPlan(plan))
	}
	return &record, actions, nil
}

// Create inserts a record. The kaizen number is derived from MAX(id)+1
// inside the same write transaction, so concurrent creations serialize on
// SQLite's single writer and cannot mint duplicates.
func (r *Repository) Create(ctx context.Context, params domain.CreateKaizenParams) (*domain.CreatedKaizen, error) {
	var created domain.CreatedKaizen
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxID int64
		if err := tx.Model(&entities.Kaizen{}).
			Select("COALESCE(MAX(id), 0)").
			Scan(&maxID).Error; err != nil {
			return err
		}
		number := kaizennum.Format(maxID + 1)

		entity := entities.Kaizen{
			KaizenNumber:    number,
			TypeName:        params.TypeName,
			DepartmentName:  params.DepartmentName,
			ApplicationArea: params.ApplicationArea,
			Leader:          params.Leader,
			Team:            params.Team,
			SQDCEPCategory:  params.SQDCEPCategory,
			Problem:         params.Problem,

			ProblemSketch:              params.ProblemSketch,
			ImprovementFutureSituation: params.ImprovementFutureSituation,
			CheckResults:               params.CheckResults,
			CostSummary:                params.CostSummary,
			BenefitSummary:             params.BenefitSummary,
			CBRatioSummary:             params.CBRatioSummary,
			Standardization:            params.Standardization,

			RootCauseAnalysis:       params.RootCauseAnalysis,
			CurrentStateAnalysis:    params.CurrentStateAnalysis,
			FutureStateAnalysis:     params.FutureStateAnalysis,
			PictureOfSolution:       params.PictureOfSolution,
			Monitoring:              params.Monitoring,
			BenefitDetailed:         params.BenefitDetailed,
			CostDetailed:            params.CostDetailed,
			BCDetailed:              params.BCDetailed,
			StandardizationDetailed: params.StandardizationDetailed,

			ProblemDescription:     params.ProblemDescription,
			ImprovementDescription: params.ImprovementDescription,
			Results:                params.Results,
			Cost:                   params.Cost,
			Benefit:                params.Benefit,

			Status:        "Draft",
			SubmittedDate: params.SubmittedDate,
			CreatedBy:     params.CreatedBy,
		}

		if err := tx.Create(&entity).Error; err != nil {
			return err
		}
		created = domain.CreatedKaizen{ID: entity.ID, KaizenNumber: number}
		return nil
	})
	if err != nil {
		return nil, r.dbError(ctx, "failed to create kaizen", err)
	}
	return &created, nil
}

// Delete removes a record; the FK constraint cascades to its action plans.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&entities.Kaizen{}, id)
	if result.Error != nil {
		return r.dbError(ctx, "failed to delete kaizen", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.notFound(ctx, gorm.ErrRecordNotFound)
	}
	return nil
}

// Export returns every record with the full column set, newest first.
func (r *Repository) Export(ctx context.Context) ([]domain.KaizenRecord, error) {
	var rows []entities.Kaizen
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, r.dbError(ctx, "failed to export kaizens", err)
	}
	records := make([]domain.KaizenRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, mapKaizen(row))
	}
	return records, nil
}

// SnapshotTo writes a self-contained copy of the store to path. VACUUM INTO
// folds the WAL sidecar into the copy, so the result is readable on its own
// while the live database keeps serving writes.
func (r *Repository) SnapshotTo(ctx context.Context, path string) error {
	if err := r.db.WithContext(ctx).Exec("VACUUM INTO ?", path).Error; err != nil {
		return r.dbError(ctx, "failed to snapshot database", err)
	}
	return nil
}

// GetKaizenNumber returns the external number of a record.
func (r *Repository) GetKaizenNumber(ctx context.Context, id int64) (string, error) {
	var row struct{ KaizenNumber string }
	err := r.db.WithContext(ctx).Model(&entities.Kaizen{}).
		Select("kaizen_number").
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", r.notFound(ctx, err)
		}
		return "", r.dbError(ctx, "failed to get kaizen number", err)
	}
	return row.KaizenNumber, nil
}

// GetAttachments returns the decoded attachment list of a record.
func (r *Repository) GetAttachments(ctx context.Context, id int64) ([]domain.Attachment, error) {
	var row struct{ Attachments string }
	err := r.db.WithContext(ctx).Model(&entities.Kaizen{}).
		Select("attachments").
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, r.notFound(ctx, err)
		}
		return nil, r.dbError(ctx, "failed to load attachments", err)
	}
	return decodeAttachments(row.Attachments), nil
}

// AppendAttachment adds one entry to the record's attachment list. The
// read-modify-write runs inside a write transaction so concurrent uploads
// within this process cannot lose updates.
func (r *Repository) AppendAttachment(ctx context.Context, id int64, att domain.Attachment) error {
	return r.mutateAttachments(ctx, id, func(list []domain.Attachment) []domain.Attachment {
		return append(list, att)
	})
}

// RemoveAttachment filters one entry out of the record's attachment list.
func (r *Repository) RemoveAttachment(ctx context.Context, id int64, attachmentID string) error {
	return r.mutateAttachments(ctx, id, func(list []domain.Attachment) []domain.Attachment {
		filtered := make([]domain.Attachment, 0, len(list))
		for _, att := range list {
			if att.ID != attachmentID {
				filtered = append(filtered, att)
			}
		}
		return filtered
	})
}

func (r *Repository) mutateAttachments(ctx context.Context, id int64, mutate func([]domain.Attachment) []domain.Attachment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entity entities.Kaizen
		if err := tx.Select("id", "attachments").Where("id = ?", id).First(&entity).Error; err != nil {
			return err
		}

		list := mutate(decodeAttachments(entity.Attachments))
		encoded, err := json.Marshal(list)
		if err != nil {
			return err
		}

		return tx.Model(&entities.Kaizen{}).
			Where("id = ?", id).
			Update("attachments", string(encoded)).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.notFound(ctx, err)
		}
		return r.dbError(ctx, "failed to update attachments", err)
	}
	return nil
}

func (r *Repository) notFound(ctx context.Context, err error) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound, "kaizen not found", err)
}

func (r *Repository) dbError(ctx context.Context, message string, err error) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError, message, err)
}

func costBenefitRatio(cost, benefit float64) *float64 {
	if cost == 0 {
		return nil
	}
	ratio := benefit / cost
	return &ratio
}

// decodeAttachments tolerates empty and malformed columns; both degrade to
// an empty list rather than failing the request.
func decodeAttachments(raw string) []domain.Attachment {
	if raw == "" {
		return []domain.Attachment{}
	}
	var list []domain.Attachment
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return []domain.Attachment{}
	}
	return list
}

func mapKaizen(entity entities.Kaizen) domain.KaizenRecord {
	return domain.KaizenRecord{
		ID:              entity.ID,
		KaizenNumber:    entity.KaizenNumber,
		TypeName:        entity.TypeName,
		DepartmentName:  entity.DepartmentName,
		ApplicationArea: entity.ApplicationArea,
		Leader:          entity.Leader,
		Team:            entity.Team,
		SQDCEPCategory:  entity.SQDCEPCategory,

		Problem: entity.Problem,

		ProblemSketch:              entity.ProblemSketch,
		ImprovementFutureSituation: entity.ImprovementFutureSituation,
		CheckResults:               entity.CheckResults,
		CostSummary:                entity.CostSummary,
		BenefitSummary:             entity.BenefitSummary,
		CBRatioSummary:             entity.CBRatioSummary,
		Standardization:            entity.Standardization,

		RootCauseAnalysis:       entity.RootCauseAnalysis,
		CurrentStateAnalysis:    entity.CurrentStateAnalysis,
		FutureStateAnalysis:     entity.FutureStateAnalysis,
		PictureOfSolution:       entity.PictureOfSolution,
		Monitoring:              entity.Monitoring,
		BenefitDetailed:         entity.BenefitDetailed,
		CostDetailed:            entity.CostDetailed,
		BCDetailed:              entity.BCDetailed,
		StandardizationDetailed: entity.StandardizationDetailed,

		ProblemDescription:     entity.ProblemDescription,
		ImprovementDescription: entity.ImprovementDescription,
		Results:                entity.Results,
		Cost:                   entity.Cost,
		Benefit:                entity.Benefit,
		CostBenefitRatio:       costBenefitRatio(entity.Cost, entity.Benefit),
		IsStandardized:         entity.IsStandardized,
		StandardizationNotes:   entity.StandardizationNotes,

		Status:        entity.Status,
		SubmittedDate: entity.SubmittedDate,
		CompletedDate: entity.CompletedDate,

		Attachments: decodeAttachments(entity.Attachments),

		CreatedBy: entity.CreatedBy,
		CreatedAt: entity.CreatedAt,
		UpdatedBy: entity.UpdatedBy,
		UpdatedAt: entity.UpdatedAt,
	}
}

func mapActionPlan(entity entities.ActionPlan) domain.ActionPlan {
	return domain.ActionPlan{
		ID:                      entity.ID,
		KaizenID:                entity.KaizenID,
		ActionDescription:       entity.ActionDescription,
		ResponsiblePerson:       entity.ResponsiblePerson,
		StartDate:               entity.StartDate,
		DueDate:                 entity.DueDate,
		CompletedDate:           entity.CompletedDate,
		Status:                  entity.Status,
		Notes:                   entity.Notes,
		DeliverableEvidenceLink: entity.DeliverableEvidenceLink,
		CompletionDate:          entity.CompletionDate,
		CreatedBy:               entity.CreatedBy,
		CreatedAt:               entity.CreatedAt,
		UpdatedBy:               entity.UpdatedBy,
		UpdatedAt:               entity.UpdatedAt,
	}
}
