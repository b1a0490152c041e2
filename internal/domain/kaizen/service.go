package kaizen

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"kaizen-server/internal/config"
	"kaizen-server/internal/infrastructure/metrics"
	"kaizen-server/internal/utils/platformerrors"
)

// Extensions accepted for attachment uploads.
var allowedExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {},
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {},
	".ppt": {}, ".pptx": {}, ".txt": {}, ".zip": {},
}

// Repository defines persistence operations needed by the service.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]KaizenSummary, int64, error)
	GetByID(ctx context.Context, id int64) (*KaizenRecord, []ActionPlan, error)
	Create(ctx context.Context, params CreateKaizenParams) (*CreatedKaizen, error)
	Delete(ctx context.Context, id int64) error
	Export(ctx context.Context) ([]KaizenRecord, error)
	SnapshotTo(ctx context.Context, path string) error
	GetKaizenNumber(ctx context.Context, id int64) (string, error)
	GetAttachments(ctx context.Context, id int64) ([]Attachment, error)
	AppendAttachment(ctx context.Context, id int64, att Attachment) error
	RemoveAttachment(ctx context.Context, id int64, attachmentID string) error
}

// Storage defines attachment storage operations.
type Storage interface {
	Upload(ctx context.Context, kaizenNumber, filename string, data []byte, contentType string) (*StoredFile, error)
}

// Service orchestrates kaizen record and attachment operations.
type Service struct {
	cfg     *config.Config
	repo    Repository
	storage Storage
	log     zerolog.Logger
}

func NewService(cfg *config.Config, repo Repository, storage Storage, log zerolog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		repo:    repo,
		storage: storage,
		log:     log.With().Str("component", "kaizen-service").Logger(),
	}
}

// List returns one page of kaizens plus the pagination envelope.
func (s *Service) List(ctx context.Context, filter ListFilter) (*Page, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	kaizens, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	pages := (total + int64(filter.Limit) - 1) / int64(filter.Limit)
	return &Page{
		Kaizens: kaizens,
		Pagination: Pagination{
			Page:  filter.Page,
			Limit: filter.Limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// Get returns a record together with its action plans.
func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	record, actions, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Kaizen: *record, Actions: actions}, nil
}

// Create validates the payload and inserts a new record. The universal
// field set is always required; the type decides which narrative subset
// must also be present.
func (s *Service) Create(ctx context.Context, params CreateKaizenParams) (*CreatedKaizen, error) {
	if err := validateCreate(ctx, params); err != nil {
		return nil, err
	}
	if params.CreatedBy == "" {
		params.CreatedBy = "system"
	}

	created, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("id", created.ID).
		Str("kaizen_number", created.KaizenNumber).
		Str("created_by", params.CreatedBy).
		Msg("kaizen created")
	return created, nil
}

// Delete removes a record; its action plans go with it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Export returns every record with the full column set, newest first.
func (s *Service) Export(ctx context.Context) ([]KaizenRecord, error) {
	return s.repo.Export(ctx)
}

// Snapshot writes a self-contained copy of the database file to path,
// suitable for streaming to bulk-sync consumers.
func (s *Service) Snapshot(ctx context.Context, path string) error {
	return s.repo.SnapshotTo(ctx, path)
}

// UploadAttachment pushes the file to the configured backend and appends
// the resulting metadata to the owning record.
func (s *Service) UploadAttachment(ctx context.Context, kaizenID int64, filename string, data []byte, uploadedBy string) (*Attachment, error) {
	if len(data) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "file is empty", nil)
	}
	if int64(len(data)) > s.cfg.MaxAttachmentBytes {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("file exceeds max size of %d bytes", s.cfg.MaxAttachmentBytes), nil)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("file type %q not allowed", ext), nil)
	}

	kaizenNumber, err := s.repo.GetKaizenNumber(ctx, kaizenID)
	if err != nil {
		return nil, err
	}

	contentType := mimetype.Detect(data).String()

	start := time.Now()
	stored, err := s.storage.Upload(ctx, kaizenNumber, filename, data, contentType)
	if err != nil {
		metrics.RecordUpload(contentType, "error", 0)
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeExternal, "attachment upload failed", err)
	}
	metrics.RecordUpload(contentType, "success", int64(len(data)))
	metrics.RecordStorageOperation("upload", "success", time.Since(start).Seconds())

	if uploadedBy == "" {
		uploadedBy = "system"
	}
	att := Attachment{
		ID:          stored.ID,
		Name:        stored.Name,
		URL:         stored.WebURL,
		DownloadURL: stored.DownloadURL,
		UploadedBy:  uploadedBy,
		UploadedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.repo.AppendAttachment(ctx, kaizenID, att); err != nil {
		return nil, err
	}
	return &att, nil
}

// ListAttachments returns the decoded attachment list of a record.
func (s *Service) ListAttachments(ctx context.Context, kaizenID int64) ([]Attachment, error) {
	return s.repo.GetAttachments(ctx, kaizenID)
}

// RemoveAttachment drops an entry from the record's attachment list. The
// stored file itself is left in place on the backend.
func (s *Service) RemoveAttachment(ctx context.Context, kaizenID int64, attachmentID string) error {
	return s.repo.RemoveAttachment(ctx, kaizenID, attachmentID)
}

func validateCreate(ctx context.Context, params CreateKaizenParams) error {
	missing := []string{}
	appendMissing := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	appendMissingPtr := func(name string, value *string) {
		if value == nil || strings.TrimSpace(*value) == "" {
			missing = append(missing, name)
		}
	}

	appendMissing("type_name", params.TypeName)
	appendMissing("department_name", params.DepartmentName)
	appendMissing("application_area", params.ApplicationArea)
	appendMissing("leader", params.Leader)
	appendMissing("sqdcep_category", params.SQDCEPCategory)
	appendMissing("problem", params.Problem)

	switch params.TypeName {
	case TypeQuick:
		appendMissingPtr("problem_sketch", params.ProblemSketch)
		appendMissingPtr("improvement_future_situation", params.ImprovementFutureSituation)
	case TypeStandard:
		appendMissingPtr("root_cause_analysis", params.RootCauseAnalysis)
		appendMissingPtr("current_state_analysis", params.CurrentStateAnalysis)
		appendMissingPtr("future_state_analysis", params.FutureStateAnalysis)
	case "":
		// already reported as missing
	default:
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unknown kaizen type %q", params.TypeName), nil)
	}

	if len(missing) > 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"missing required fields: "+strings.Join(missing, ", "), nil)
	}
	return nil
}
