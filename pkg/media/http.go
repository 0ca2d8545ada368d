package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/XiaoConstantine/lexgo/pkg/core"
	"github.com/XiaoConstantine/lexgo/pkg/errors"
)

// HTTPSearcher queries a video-search endpoint that returns pre-ranked
// candidates as JSON. The provider's ranking criteria are its own business.
type HTTPSearcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSearcher creates a searcher against the given base URL.
func NewHTTPSearcher(baseURL string, timeout time.Duration) (*HTTPSearcher, error) {
	if baseURL == "" {
		return nil, errors.New(errors.ConfigurationError, "media search base URL is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSearcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// searchResponse mirrors the provider's candidate list.
type searchResponse struct {
	Candidates []searchCandidate `json:"candidates"`
}

type searchCandidate struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Thumbnail     string `json:"thumbnail"`
	Author        string `json:"author"`
	Duration      int    `json:"duration"` // seconds
	StartTime     int    `json:"start_time"`
	MatchedPhrase string `json:"matched_phrase"`
	URL           string `json:"url"`
	ViewCount     int64  `json:"view_count"`
}

// Search implements Searcher.
func (h *HTTPSearcher) Search(ctx context.Context, word string, limit int) ([]core.MediaCandidate, error) {
	query := url.Values{}
	query.Set("keyword", word)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	endpoint := h.baseURL + "/search?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.TaskFailed, "failed to create media search request")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if ctxErr := errors.CheckContext(ctx, "media search"); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.Wrap(err, errors.TaskFailed, "media search request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.WithFields(
			errors.New(errors.TaskFailed, "media search returned non-success status"),
			errors.Fields{"status": resp.StatusCode, "word": word})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.TaskFailed, "failed to read media search response")
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, errors.InvalidResponse, "malformed media search payload")
	}

	candidates := make([]core.MediaCandidate, 0, len(parsed.Candidates))
	for _, c := range parsed.Candidates {
		candidates = append(candidates, core.MediaCandidate{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			Thumbnail:   c.Thumbnail,
			Author:      c.Author,
			Duration:    formatDuration(c.Duration),
			StartTime:   c.StartTime,
			Phrase:      c.MatchedPhrase,
			URL:         c.URL,
			ViewCount:   c.ViewCount,
		})
	}
	return candidates, nil
}

// formatDuration renders provider seconds as m:ss for display.
func formatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
