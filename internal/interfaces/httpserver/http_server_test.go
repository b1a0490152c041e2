package httpserver_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"kaizen-server/internal/config"
	domain "kaizen-server/internal/domain/kaizen"
	"kaizen-server/internal/interfaces/httpserver"
	"kaizen-server/internal/utils/platformerrors"
)

type mockRepo struct {
	ListFunc             func(ctx context.Context, filter domain.ListFilter) ([]domain.KaizenSummary, int64, error)
	GetByIDFunc          func(ctx context.Context, id int64) (*domain.KaizenRecord, []domain.ActionPlan, error)
	CreateFunc           func(ctx context.Context, params domain.CreateKaizenParams) (*domain.CreatedKaizen, error)
	DeleteFunc           func(ctx context.Context, id int64) error
	ExportFunc           func(ctx context.Context) ([]domain.KaizenRecord, error)
	SnapshotToFunc       func(ctx context.Context, path string) error
	GetKaizenNumberFunc  func(ctx context.Context, id int64) (string, error)
	GetAttachmentsFunc   func(ctx context.Context, id int64) ([]domain.Attachment, error)
	AppendAttachmentFunc func(ctx context.Context, id int64, att domain.Attachment) error
	RemoveAttachmentFunc func(ctx context.Context, id int64, attachmentID string) error
}

func (m *mockRepo) List(ctx context.Context, filter domain.ListFilter) ([]domain.KaizenSummary, int64, error) {
	return m.ListFunc(ctx, filter)
}

func (m *mockRepo) GetByID(ctx context.Context, id int64) (*domain.KaizenRecord, []domain.ActionPlan, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockRepo) Create(ctx context.Context, params domain.CreateKaizenParams) (*domain.CreatedKaizen, error) {
	return m.CreateFunc(ctx, params)
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	return m.DeleteFunc(ctx, id)
}

func (m *mockRepo) Export(ctx context.Context) ([]domain.KaizenRecord, error) {
	return m.ExportFunc(ctx)
}

func (m *mockRepo) SnapshotTo(ctx context.Context, path string) error {
	return m.SnapshotToFunc(ctx, path)
}

func (m *mockRepo) GetKaizenNumber(ctx context.Context, id int64) (string, error) {
	return m.GetKaizenNumberFunc(ctx, id)
}

func (m *mockRepo) GetAttachments(ctx context.Context, id int64) ([]domain.Attachment, error) {
	return m.GetAttachmentsFunc(ctx, id)
}

func (m *mockRepo) AppendAttachment(ctx context.Context, id int64, att domain.Attachment) error {
	return m.AppendAttachmentFunc(ctx, id, att)
}

func (m *mockRepo) RemoveAttachment(ctx context.Context, id int64, attachmentID string) error {
	return m.RemoveAttachmentFunc(ctx, id, attachmentID)
}

type mockStorage struct {
	UploadFunc func(ctx context.Context, kaizenNumber, filename string, data []byte, contentType string) (*domain.StoredFile, error)
}

func (m *mockStorage) Upload(ctx context.Context, kaizenNumber, filename string, data []byte, contentType string) (*domain.StoredFile, error) {
	return m.UploadFunc(ctx, kaizenNumber, filename, data, contentType)
}

func newTestEngine(t *testing.T, repo domain.Repository, storage domain.Storage) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		APIKey:             "secret",
		MaxAttachmentBytes: 1024 * 1024,
	}
	service := domain.NewService(cfg, repo, storage, zerolog.Nop())
	return httpserver.New(cfg, zerolog.Nop(), service).Engine()
}

func TestHealthEndpoint(t *testing.T) {
	engine := newTestEngine(t, &mockRepo{}, &mockStorage{})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["status"] != "ok" || body["user"] != "anonymous" {
		t.Errorf("unexpected health payload %v", body)
	}
}

func TestListKaizens(t *testing.T) {
	repo := &mockRepo{
		ListFunc: func(ctx context.Context, filter domain.ListFilter) ([]domain.KaizenSummary, int64, error) {
			if filter.Page != 2 || filter.Limit != 5 || filter.Status != "Completed" {
				t.Errorf("unexpected filter %+v", filter)
			}
			return []domain.KaizenSummary{{ID: 1, KaizenNumber: "KZ-000001"}}, 6, nil
		},
	}
	engine := newTestEngine(t, repo, &mockStorage{})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kaizens?page=2&limit=5&status=Completed", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Kaizens    []map[string]any `json:"kaizens"`
		Pagination struct {
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
			Total int64 `json:"total"`
			Pages int64 `json:"pages"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(body.Kaizens) != 1 || body.Kaizens[0]["KaizenNumber"] != "KZ-000001" {
		t.Errorf("unexpected kaizens %v", body.Kaizens)
	}
	if body.Pagination.Total != 6 || body.Pagination.Pages != 2 {
		t.Errorf("unexpected pagination %+v", body.Pagination)
	}
}

func TestGetKaizen(t *testing.T) {
	repo := &mockRepo{
		GetByIDFunc: func(ctx context.Context, id int64) (*domain.KaizenRecord, []domain.ActionPlan, error) {
			if id != 3 {
				return nil, nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
					platformerrors.ErrorTypeNotFound, "kaizen not found", nil)
			}
			return &domain.KaizenRecord{ID: 3, KaizenNumber: "KZ-000003"},
				[]domain.ActionPlan{{ID: 1, KaizenID: 3}}, nil
		},
	}
	engine := newTestEngine(t, repo, &mockStorage{})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kaizens/3", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	var body struct {
		Kaizen  domain.KaizenRecord `json:"kaizen"`
		Actions []domain.ActionPlan `json:"actions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Kaizen.KaizenNumber != "KZ-000003" || len(body.Actions) != 1 {
		t.Errorf("unexpected detail %+v", body)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kaizens/99", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: got status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kaizens/abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id: got status %d", rec.Code)
	}
}

func TestCreateKaizen(t *testing.T) {
	repo := &mockRepo{
		CreateFunc: func(ctx context.Context, params domain.CreateKaizenParams) (*domain.CreatedKaizen, error) {
			if params.CreatedBy != "jane@example.com" {
				t.Errorf("expected creator from api key fallback or principal, got %q", params.CreatedBy)
			}
			return &domain.CreatedKaizen{ID: 4, KaizenNumber: "KZ-000004"}, nil
		},
	}
	engine := newTestEngine(t, repo, &mockStorage{})

	payload := `{
		"type_name": "Quick",
		"department_name": "Manufacturing",
		"application_area": "Line A",
		"leader": "Jane Doe",
		"sqdcep_category": "Q",
		"problem": "scrap rate too high",
		"problem_sketch": "sketch",
		"improvement_future_situation": "future"
	}`

	// no credentials
	req := httptest.NewRequest(http.MethodPost, "/api/kaizens", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated create: got status %d", rec.Code)
	}

	// platform identity
	req = httptest.NewRequest(http.MethodPost, "/api/kaizens", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-ms-client-principal", principalHeader("jane@example.com"))
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("authenticated create: got status %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["kaizen_number"] != "KZ-000004" {
		t.Errorf("unexpected creation response %v", body)
	}

	// missing type-conditional field
	invalid := strings.Replace(payload, `"problem_sketch": "sketch",`, "", 1)
	req = httptest.NewRequest(http.MethodPost, "/api/kaizens", strings.NewReader(invalid))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", "secret")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid create: got status %d", rec.Code)
	}
}

func TestExportRequiresAPIKey(t *testing.T) {
	repo := &mockRepo{
		ExportFunc: func(ctx context.Context) ([]domain.KaizenRecord, error) {
			return []domain.KaizenRecord{{ID: 1, KaizenNumber: "KZ-000001"}}, nil
		},
	}
	engine := newTestEngine(t, repo, &mockStorage{})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kaizens/export", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("keyless export: got status %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/kaizens/export", nil)
	req.Header.Set("x-api-key", "secret")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("keyed export: got status %d", rec.Code)
	}
	var records []domain.KaizenRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("export must be a flat array: %v", err)
	}
	if len(records) != 1 || records[0].KaizenNumber != "KZ-000001" {
		t.Errorf("unexpected export %v", records)
	}
}

func TestDownloadDBStreamsSnapshot(t *testing.T) {
	repo := &mockRepo{
		SnapshotToFunc: func(ctx context.Context, path string) error {
			return os.WriteFile(path, []byte("SQLite format 3\x00snapshot"), 0o644)
		},
	}
	engine := newTestEngine(t, repo, &mockStorage{})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kaizens/download-db", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("keyless download: got status %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/kaizens/download-db", nil)
	req.Header.Set("x-api-key", "secret")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("keyed download: got status %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "kaizens.db") {
		t.Errorf("unexpected content disposition %q", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("SQLite format 3")) {
		t.Errorf("response does not carry the snapshot bytes: %q", rec.Body.String())
	}
}

func TestDeleteKaizenRequiresAPIKey(t *testing.T) {
	deleted := int64(0)
	repo := &mockRepo{
		DeleteFunc: func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		},
	}
	engine := newTestEngine(t, repo, &mockStorage{})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/kaizens/2", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("keyless delete: got status %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/kaizens/2", nil)
	req.Header.Set("x-api-key", "secret")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("keyed delete: got status %d", rec.Code)
	}
	if deleted != 2 {
		t.Errorf("expected delete of id 2, got %d", deleted)
	}
}

func TestUploadAttachment(t *testing.T) {
	repo := &mockRepo{
		GetKaizenNumberFunc: func(ctx context.Context, id int64) (string, error) {
			return "KZ-000001", nil
		},
		AppendAttachmentFunc: func(ctx context.Context, id int64, att domain.Attachment) error {
			return nil
		},
	}
	storage := &mockStorage{
		UploadFunc: func(ctx context.Context, kaizenNumber, filename string, data []byte, contentType string) (*domain.StoredFile, error) {
			return &domain.StoredFile{
				ID:          "item-9",
				Name:        filename,
				WebURL:      "https://example.com/web",
				DownloadURL: "https://example.com/dl",
			}, nil
		},
	}
	engine := newTestEngine(t, repo, storage)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "photo.png")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/attachments/1", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("x-api-key", "secret")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Message    string            `json:"message"`
		Attachment domain.Attachment `json:"attachment"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Attachment.ID != "item-9" || body.Attachment.DownloadURL != "https://example.com/dl" {
		t.Errorf("unexpected attachment %+v", body.Attachment)
	}
}

func TestListAttachments(t *testing.T) {
	repo := &mockRepo{
		GetAttachmentsFunc: func(ctx context.Context, id int64) ([]domain.Attachment, error) {
			return []domain.Attachment{{ID: "att_1", Name: "report.pdf"}}, nil
		},
	}
	engine := newTestEngine(t, repo, &mockStorage{})

	req := httptest.NewRequest(http.MethodGet, "/api/attachments/1", nil)
	req.Header.Set("x-api-key", "secret")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	var body struct {
		Attachments []domain.Attachment `json:"attachments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(body.Attachments) != 1 || body.Attachments[0].ID != "att_1" {
		t.Errorf("unexpected attachments %v", body.Attachments)
	}
}

func TestRemoveAttachment(t *testing.T) {
	var gotKaizen int64
	var gotAttachment string
	repo := &mockRepo{
		RemoveAttachmentFunc: func(ctx context.Context, id int64, attachmentID string) error {
			gotKaizen, gotAttachment = id, attachmentID
			return nil
		},
	}
	engine := newTestEngine(t, repo, &mockStorage{})

	req := httptest.NewRequest(http.MethodDelete, "/api/attachments/5/att_42", nil)
	req.Header.Set("x-api-key", "secret")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	if gotKaizen != 5 || gotAttachment != "att_42" {
		t.Errorf("unexpected removal args id=%d attachment=%s", gotKaizen, gotAttachment)
	}
}

func principalHeader(userDetails string) string {
	payload, _ := json.Marshal(map[string]any{
		"userId":      "u-1",
		"userDetails": userDetails,
	})
	return base64.StdEncoding.EncodeToString(payload)
}
