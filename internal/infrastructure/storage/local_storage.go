package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"kaizen-server/internal/config"
	domain "kaizen-server/internal/domain/kaizen"
	"kaizen-server/internal/utils/attachmentid"
)

// LocalStorage writes attachments to the local filesystem. Meant for
// development and air-gapped deployments where neither SharePoint nor S3
// is reachable.
type LocalStorage struct {
	basePath string
	baseURL  string
	log      zerolog.Logger
}

func NewLocalStorage(cfg *config.Config, log zerolog.Logger) (*LocalStorage, error) {
	basePath := strings.TrimSpace(cfg.LocalStoragePath)
	if basePath == "" {
		basePath = filepath.Join(cfg.DBPath, "attachments")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create local storage dir: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(cfg.LocalStorageBaseURL, "/"),
		log:      log.With().Str("component", "local-storage").Logger(),
	}, nil
}

// Upload writes the file under <base>/<kaizen-number>/<id>_<name>.
func (s *LocalStorage) Upload(ctx context.Context, kaizenNumber, filename string, data []byte, contentType string) (*domain.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := attachmentid.New()
	dir := filepath.Join(s.basePath, kaizenNumber)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment dir: %w", err)
	}

	// Keep only the base name; path separators in uploads must not escape dir.
	safeName := filepath.Base(filename)
	path := filepath.Join(dir, id+"_"+safeName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write attachment: %w", err)
	}

	link := path
	if s.baseURL != "" {
		link = fmt.Sprintf("%s/%s/%s", s.baseURL,
			url.PathEscape(kaizenNumber), url.PathEscape(id+"_"+safeName))
	}

	s.log.Info().
		Str("kaizen_number", kaizenNumber).
		Str("path", path).
		Msg("stored attachment locally")

	return &domain.StoredFile{
		ID:          id,
		Name:        safeName,
		WebURL:      link,
		DownloadURL: link,
	}, nil
}
