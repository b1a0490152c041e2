package kaizen

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	domain "kaizen-server/internal/domain/kaizen"
	"kaizen-server/internal/infrastructure/database"
	"kaizen-server/internal/infrastructure/database/entities"
	"kaizen-server/internal/utils/platformerrors"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := database.Connect(database.Config{
		File:     filepath.Join(t.TempDir(), "kaizens.db"),
		LogLevel: gormlogger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Kaizen{}, &entities.ActionPlan{}))

	return NewRepository(db)
}

func quickParams(department string) domain.CreateKaizenParams {
	sketch := "sketch"
	future := "future"
	return domain.CreateKaizenParams{
		TypeName:                   domain.TypeQuick,
		DepartmentName:             department,
		ApplicationArea:            "Line A",
		Leader:                     "Jane Doe",
		SQDCEPCategory:             "Q",
		Problem:                    "scrap rate too high",
		ProblemSketch:              &sketch,
		ImprovementFutureSituation: &future,
		CreatedBy:                  "jane@example.com",
	}
}

func TestCreateAllocatesSequentialNumbers(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, quickParams("Manufacturing"))
	require.NoError(t, err)
	second, err := repo.Create(ctx, quickParams("Quality"))
	require.NoError(t, err)

	assert.Equal(t, "KZ-000001", first.KaizenNumber)
	assert.Equal(t, "KZ-000002", second.KaizenNumber)
	assert.Equal(t, first.ID+1, second.ID)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, _, err := repo.GetByID(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}

func TestGetByIDReturnsActionPlans(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, quickParams("Manufacturing"))
	require.NoError(t, err)

	plan := entities.ActionPlan{
		KaizenID:          created.ID,
		ActionDescription: "replace fixture",
		ResponsiblePerson: "Jane Doe",
		DueDate:           "2026-10-01",
		Status:            "Pending",
		CreatedBy:         "jane@example.com",
	}
	require.NoError(t, repo.db.Create(&plan).Error)

	record, actions, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.KaizenNumber, record.KaizenNumber)
	require.Len(t, actions, 1)
	assert.Equal(t, "replace fixture", actions[0].ActionDescription)
}

func TestListPaginationAndFilters(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, quickParams("Manufacturing"))
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, quickParams("Quality"))
	require.NoError(t, err)

	page, total, err := repo.List(ctx, domain.ListFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, page, 2)

	filtered, total, err := repo.List(ctx, domain.ListFilter{Page: 1, Limit: 10, Department: "Quality"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Quality", filtered[0].DepartmentName)

	empty, total, err := repo.List(ctx, domain.ListFilter{Page: 1, Limit: 10, Status: "Completed"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, empty)
}

func TestListDerivesRatioAndActionCount(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	params := quickParams("Manufacturing")
	params.Cost = 500
	params.Benefit = 2000
	withRatio, err := repo.Create(ctx, params)
	require.NoError(t, err)

	zeroCost := quickParams("Manufacturing")
	noRatio, err := repo.Create(ctx, zeroCost)
	require.NoError(t, err)

	require.NoError(t, repo.db.Create(&entities.ActionPlan{
		KaizenID:          withRatio.ID,
		ActionDescription: "buy fixtures",
		ResponsiblePerson: "Jane Doe",
		DueDate:           "2026-10-01",
		Status:            "Pending",
		CreatedBy:         "jane@example.com",
	}).Error)

	page, _, err := repo.List(ctx, domain.ListFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 2)

	byID := map[int64]domain.KaizenSummary{}
	for _, summary := range page {
		byID[summary.ID] = summary
	}

	rich := byID[withRatio.ID]
	require.NotNil(t, rich.CostBenefitRatio)
	assert.InDelta(t, 4.0, *rich.CostBenefitRatio, 1e-9)
	assert.EqualValues(t, 1, rich.ActionCount)

	plain := byID[noRatio.ID]
	assert.Nil(t, plain.CostBenefitRatio)
	assert.EqualValues(t, 0, plain.ActionCount)
}

func TestDeleteCascadesToActionPlans(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, quickParams("Manufacturing"))
	require.NoError(t, err)
	require.NoError(t, repo.db.Create(&entities.ActionPlan{
		KaizenID:          created.ID,
		ActionDescription: "train operators",
		ResponsiblePerson: "Jane Doe",
		DueDate:           "2026-10-01",
		Status:            "Pending",
		CreatedBy:         "jane@example.com",
	}).Error)

	require.NoError(t, repo.Delete(ctx, created.ID))

	var planCount int64
	require.NoError(t, repo.db.Model(&entities.ActionPlan{}).Count(&planCount).Error)
	assert.EqualValues(t, 0, planCount)

	err = repo.Delete(ctx, created.ID)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}

func TestAttachmentRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, quickParams("Manufacturing"))
	require.NoError(t, err)

	before, err := repo.GetAttachments(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, before)

	att := domain.Attachment{
		ID:          "att_01",
		Name:        "report.pdf",
		URL:         "https://example.com/web",
		DownloadURL: "https://example.com/dl",
		UploadedBy:  "jane@example.com",
		UploadedAt:  "2026-09-01T10:00:00Z",
	}
	require.NoError(t, repo.AppendAttachment(ctx, created.ID, att))

	after, err := repo.GetAttachments(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, att, after[0])

	require.NoError(t, repo.RemoveAttachment(ctx, created.ID, "att_01"))

	final, err := repo.GetAttachments(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, final)
}

func TestAttachmentOpsUnknownKaizen(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	err := repo.AppendAttachment(ctx, 42, domain.Attachment{ID: "att_x"})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))

	_, err = repo.GetAttachments(ctx, 42)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}

func TestSnapshotProducesSelfContainedCopy(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, quickParams("Manufacturing"))
	require.NoError(t, err)

	// The WAL sidecar holds recent commits, so a byte copy of the live
	// file alone would miss them; the snapshot must stand on its own.
	path := filepath.Join(t.TempDir(), "download.db")
	require.NoError(t, repo.SnapshotTo(ctx, path))

	copyDB, err := database.Connect(database.Config{
		File:     path,
		LogLevel: gormlogger.Silent,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, copyDB.Model(&entities.Kaizen{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var copied entities.Kaizen
	require.NoError(t, copyDB.First(&copied, created.ID).Error)
	assert.Equal(t, created.KaizenNumber, copied.KaizenNumber)
}

func TestExportReturnsFullRecords(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	params := quickParams("Manufacturing")
	params.Cost = 100
	params.Benefit = 400
	created, err := repo.Create(ctx, params)
	require.NoError(t, err)
	_, err = repo.Create(ctx, quickParams("Quality"))
	require.NoError(t, err)

	records, err := repo.Export(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	var exported *domain.KaizenRecord
	for i := range records {
		if records[i].ID == created.ID {
			exported = &records[i]
		}
	}
	require.NotNil(t, exported)
	assert.Equal(t, created.KaizenNumber, exported.KaizenNumber)
	require.NotNil(t, exported.ProblemSketch)
	assert.Equal(t, "sketch", *exported.ProblemSketch)
	require.NotNil(t, exported.CostBenefitRatio)
	assert.InDelta(t, 4.0, *exported.CostBenefitRatio, 1e-9)
	assert.Equal(t, "Draft", exported.Status)
	assert.NotNil(t, exported.Attachments)
}
