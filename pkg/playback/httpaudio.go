package playback

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/linguamesh/constellation/pkg/errors"
	"github.com/linguamesh/constellation/pkg/httputil"
)

// ClipMetadata describes an audio clip as reported by the clip service.
type ClipMetadata struct {
	ClipID     string `json:"clip_id"`
	DurationMS int64  `json:"duration_ms"`
	URL        string `json:"url,omitempty"`
}

// HTTPAudioSource resolves clip durations from a clip delivery service over
// HTTP. Metadata lookups are cached and retried on transient failures.
//
// Play does not decode audio itself. The actual waveform is rendered by the
// client; Play blocks for the clip's reported duration so the sequencer
// paces highlight animation in step with what the listener hears.
type HTTPAudioSource struct {
	baseURL string
	client  *http.Client
	cache   *httputil.Cache
	logger  *log.Logger
}

// NewHTTPAudioSource creates an audio source backed by the clip service at
// baseURL. A nil cache disables metadata caching; a nil logger falls back
// to log.Default().
func NewHTTPAudioSource(baseURL string, cache *httputil.Cache, logger *log.Logger) (*HTTPAudioSource, error) {
	if err := apperrors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	if cache != nil {
		cache = cache.Namespace("clip:")
	}
	return &HTTPAudioSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
		logger:  logger,
	}, nil
}

// Duration returns the clip's length, consulting the metadata cache first.
func (h *HTTPAudioSource) Duration(ctx context.Context, clipID string) (time.Duration, error) {
	meta, err := h.metadata(ctx, clipID)
	if err != nil {
		return 0, err
	}
	return time.Duration(meta.DurationMS) * time.Millisecond, nil
}

// Play blocks for the clip's duration or until ctx is cancelled.
func (h *HTTPAudioSource) Play(ctx context.Context, clipID string) error {
	d, err := h.Duration(ctx, clipID)
	if err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (h *HTTPAudioSource) metadata(ctx context.Context, clipID string) (*ClipMetadata, error) {
	if clipID == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "empty clip ID")
	}

	if h.cache != nil {
		var cached ClipMetadata
		if ok, err := h.cache.Get(clipID, &cached); ok && err == nil {
			return &cached, nil
		}
	}

	var meta ClipMetadata
	err := httputil.RetryWithBackoff(ctx, func() error {
		return h.fetch(ctx, clipID, &meta)
	})
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(clipID, &meta); err != nil {
			h.logger.Warn("failed to cache clip metadata", "clip", clipID, "error", err)
		}
	}
	return &meta, nil
}

func (h *HTTPAudioSource) fetch(ctx context.Context, clipID string, meta *ClipMetadata) error {
	endpoint := h.baseURL + "/clips/" + url.PathEscape(clipID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build clip request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return &httputil.RetryableError{Err: fmt.Errorf("fetch clip metadata: %w", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.New(apperrors.ErrCodeClipNotFound, "clip %q not found", clipID)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("clip service returned %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("clip service returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(meta); err != nil {
		return fmt.Errorf("decode clip metadata: %w", err)
	}
	if meta.ClipID == "" {
		meta.ClipID = clipID
	}
	return nil
}

var _ AudioSource = (*HTTPAudioSource)(nil)
