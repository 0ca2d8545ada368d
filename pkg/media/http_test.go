package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/lexgo/pkg/errors"
)

const candidateFixture = `{
  "candidates": [
    {
      "id": "BV1xx411c7mD",
      "title": "English in a Minute: Run",
      "description": "Common uses of run",
      "thumbnail": "https://img.example/run.jpg",
      "author": "LearnEnglish",
      "duration": 95,
      "start_time": 12,
      "matched_phrase": "in the long run",
      "url": "https://video.example/BV1xx411c7mD?t=12",
      "view_count": 123456
    },
    {
      "id": "BV2yy522d8nE",
      "title": "Run: phrasal verbs",
      "url": "https://video.example/BV2yy522d8nE"
    }
  ]
}`

func TestHTTPSearcherSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "run", r.URL.Query().Get("keyword"))
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(candidateFixture))
	}))
	defer server.Close()

	searcher, err := NewHTTPSearcher(server.URL, 0)
	require.NoError(t, err)

	candidates, err := searcher.Search(context.Background(), "run", 3)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	first := candidates[0]
	assert.Equal(t, "BV1xx411c7mD", first.ID)
	assert.Equal(t, "English in a Minute: Run", first.Title)
	assert.Equal(t, "1:35", first.Duration)
	assert.Equal(t, 12, first.StartTime)
	assert.Equal(t, "in the long run", first.Phrase)
	assert.Equal(t, int64(123456), first.ViewCount)

	// Provider order is preserved as-is.
	assert.Equal(t, "BV2yy522d8nE", candidates[1].ID)
	assert.Equal(t, "", candidates[1].Duration)
}

func TestHTTPSearcherErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	searcher, err := NewHTTPSearcher(server.URL, 0)
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), "run", 3)
	require.Error(t, err)
	assert.Equal(t, errors.TaskFailed, errors.CodeOf(err))
}

func TestHTTPSearcherMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	searcher, err := NewHTTPSearcher(server.URL, 0)
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), "run", 3)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidResponse, errors.CodeOf(err))
}

func TestNewHTTPSearcherRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPSearcher("", 0)
	require.Error(t, err)
	assert.Equal(t, errors.ConfigurationError, errors.CodeOf(err))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "", formatDuration(0))
	assert.Equal(t, "0:05", formatDuration(5))
	assert.Equal(t, "1:35", formatDuration(95))
	assert.Equal(t, "12:00", formatDuration(720))
}
