package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"kaizen-server/internal/config"
	domain "kaizen-server/internal/domain/kaizen"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

var errGraphDisabled = errors.New("attachment storage backend is not configured; set AZURE_CLIENT_ID and AZURE_CLIENT_SECRET to enable uploads")

// GraphStorage stores attachments on a SharePoint document library through
// the Microsoft Graph drive API. Tokens come from the client-credentials
// flow; the oauth2 token source caches them and refreshes before expiry.
type GraphStorage struct {
	client     *http.Client
	siteHost   string
	sitePath   string
	rootFolder string
	log        zerolog.Logger
	disabled   bool
}

func NewGraphStorage(cfg *config.Config, log zerolog.Logger) (*GraphStorage, error) {
	logger := log.With().Str("component", "graph-storage").Logger()
	storage := &GraphStorage{
		siteHost:   cfg.GraphSiteHost,
		sitePath:   cfg.GraphSitePath,
		rootFolder: cfg.GraphRootFolder,
		log:        logger,
	}

	if cfg.AzureClientID == "" || cfg.AzureClientSecret == "" {
		logger.Warn().Msg("AZURE_CLIENT_ID or AZURE_CLIENT_SECRET is not set; attachment uploads will be disabled until configured")
		storage.disabled = true
		return storage, nil
	}

	creds := clientcredentials.Config{
		ClientID:     cfg.AzureClientID,
		ClientSecret: cfg.AzureClientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.AzureTenantID),
		Scopes:       []string{"https://graph.microsoft.com/.default"},
	}

	// The timeout covers token fetches (base client via context) and drive
	// calls alike; a stalled upstream must not pin a request goroutine.
	base := &http.Client{Timeout: cfg.StorageTimeout}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := oauth2.NewClient(tokenCtx, creds.TokenSource(tokenCtx))
	client.Timeout = cfg.StorageTimeout

	storage.client = client
	return storage, nil
}

func (s *GraphStorage) ensureEnabled() error {
	if s.disabled {
		return errGraphDisabled
	}
	return nil
}

// Upload ensures the per-kaizen folder exists and puts the file into it.
func (s *GraphStorage) Upload(ctx context.Context, kaizenNumber, filename string, data []byte, contentType string) (*domain.StoredFile, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, err
	}

	folder := fmt.Sprintf("%s/KZ-Files/%s", s.rootFolder, kaizenNumber)
	if err := s.ensureFolder(ctx, folder); err != nil {
		return nil, err
	}

	uploadURL := fmt.Sprintf("%s%s/%s:/content",
		s.drivePath(), escapePath(folder), url.PathEscape(filename))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build graph upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("graph upload returned %d: %s", resp.StatusCode, string(body))
	}

	var item struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		WebURL      string `json:"webUrl"`
		DownloadURL string `json:"@microsoft.graph.downloadUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("decode graph upload response: %w", err)
	}

	s.log.Info().
		Str("kaizen_number", kaizenNumber).
		Str("file", item.Name).
		Str("item_id", item.ID).
		Msg("uploaded attachment to sharepoint")

	return &domain.StoredFile{
		ID:          item.ID,
		Name:        item.Name,
		WebURL:      item.WebURL,
		DownloadURL: item.DownloadURL,
	}, nil
}

// ensureFolder creates the folder path one segment at a time. A 409 from
// Graph means the segment already exists and counts as success.
func (s *GraphStorage) ensureFolder(ctx context.Context, folder string) error {
	segments := strings.Split(folder, "/")
	parent := ""
	for _, segment := range segments {
		if err := s.createFolder(ctx, parent, segment); err != nil {
			return err
		}
		if parent == "" {
			parent = segment
		} else {
			parent = parent + "/" + segment
		}
	}
	return nil
}

func (s *GraphStorage) createFolder(ctx context.Context, parent, name string) error {
	var childrenURL string
	if parent == "" {
		childrenURL = fmt.Sprintf("%s/sites/%s:%s:/drive/root/children",
			graphBaseURL, s.siteHost, s.sitePath)
	} else {
		childrenURL = fmt.Sprintf("%s%s:/children", s.drivePath(), escapePath(parent))
	}

	payload, err := json.Marshal(map[string]any{
		"name":                              name,
		"folder":                            map[string]any{},
		"@microsoft.graph.conflictBehavior": "fail",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, childrenURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build graph folder request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("graph create folder: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusCreated, resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusConflict:
		// folder already exists
		return nil
	default:
		return fmt.Errorf("graph create folder %q returned %d", name, resp.StatusCode)
	}
}

// drivePath is the item-by-path prefix of the configured site drive.
func (s *GraphStorage) drivePath() string {
	return fmt.Sprintf("%s/sites/%s:%s:/drive/root:", graphBaseURL, s.siteHost, s.sitePath)
}

// escapePath escapes each segment of a drive-relative path, keeping slashes.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return "/" + strings.Join(segments, "/")
}
