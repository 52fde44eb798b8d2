package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
)

// StoredObject identifies an uploaded blob.
type StoredObject struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ObjectStorage abstracts the blob store used for message attachments.
type ObjectStorage interface {
	Put(ctx context.Context, data []byte, contentType string) (*StoredObject, error)
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// MediaStoreClient talks to the media gateway over HTTP.
type MediaStoreClient struct {
	BaseURL    string
	APIKey     string
	HttpClient *http.Client
}

func NewMediaStoreClient() *MediaStoreClient {
	return &MediaStoreClient{
		BaseURL:    os.Getenv("MEDIA_STORE_URL"),
		APIKey:     os.Getenv("MEDIA_STORE_API_KEY"),
		HttpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (m *MediaStoreClient) request(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, m.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", "Bearer "+m.APIKey)
	return m.HttpClient.Do(req)
}

func (m *MediaStoreClient) Put(ctx context.Context, data []byte, contentType string) (*StoredObject, error) {
	if m.BaseURL == "" {
		return nil, fmt.Errorf("media store not configured")
	}

	key := uuid.New().String()
	resp, err := m.request(ctx, http.MethodPut, "/objects/"+key, bytes.NewReader(data), contentType)
	if err != nil {
		logger.ErrorLogger.Errorf("Media store upload failed: %v", err)
		return nil, fmt.Errorf("media store error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		logger.ErrorLogger.Errorf("Media store returned %d: %s", resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("media store returned status %d", resp.StatusCode)
	}

	var obj StoredObject
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return nil, fmt.Errorf("invalid media store response: %w", err)
	}
	if obj.Key == "" {
		obj.Key = key
	}
	return &obj, nil
}

func (m *MediaStoreClient) Delete(ctx context.Context, key string) error {
	resp, err := m.request(ctx, http.MethodDelete, "/objects/"+key, nil, "")
	if err != nil {
		logger.ErrorLogger.Errorf("Media store delete failed for %s: %v", key, err)
		return fmt.Errorf("media store error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("media store returned status %d", resp.StatusCode)
	}
	return nil
}

func (m *MediaStoreClient) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	path := fmt.Sprintf("/objects/%s/signed-url?ttl=%d", key, int(ttl.Seconds()))
	resp, err := m.request(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		logger.ErrorLogger.Errorf("Media store sign failed for %s: %v", key, err)
		return "", fmt.Errorf("media store error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media store returned status %d", resp.StatusCode)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("invalid media store response: %w", err)
	}
	return out.URL, nil
}
