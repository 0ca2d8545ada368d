// Package reference implements the authoritative data fetcher: a client for
// a dictionaryapi.dev-compatible reference API whose entries are normalized
// into the engine's addressable EntrySet form. Any failure here is a
// fallback trigger for the caller, never a fatal error.
package reference

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/XiaoConstantine/lexgo/pkg/config"
	"github.com/XiaoConstantine/lexgo/pkg/core"
	"github.com/XiaoConstantine/lexgo/pkg/errors"
)

const defaultBaseURL = "https://api.dictionaryapi.dev"

// Client fetches reference entries for a word. The provider is queried once
// per lookup with a sub-second deadline; there are no retries.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// ClientOption is a functional option for configuring the client.
type ClientOption func(*Client)

// WithBaseURL sets the API base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithTimeout sets the per-fetch timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.client = client }
}

// WithRateLimit bounds outbound fetches. The reference API is a shared free
// service; a non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a reference client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 800 * time.Millisecond},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig creates a reference client from the file-level
// reference section.
func NewClientFromConfig(cfg config.ReferenceConfig) *Client {
	return NewClient(
		WithBaseURL(cfg.BaseURL),
		WithTimeout(cfg.Timeout),
		WithRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
	)
}

// apiEntry mirrors one entry of the provider's response.
type apiEntry struct {
	Word      string        `json:"word"`
	Phonetic  string        `json:"phonetic"`
	Phonetics []apiPhonetic `json:"phonetics"`
	Meanings  []apiMeaning  `json:"meanings"`
}

type apiPhonetic struct {
	Text  string `json:"text"`
	Audio string `json:"audio"`
}

type apiMeaning struct {
	PartOfSpeech string          `json:"partOfSpeech"`
	Definitions  []apiDefinition `json:"definitions"`
	Synonyms     []string        `json:"synonyms"`
	Antonyms     []string        `json:"antonyms"`
}

type apiDefinition struct {
	Definition string   `json:"definition"`
	Example    string   `json:"example"`
	Synonyms   []string `json:"synonyms"`
	Antonyms   []string `json:"antonyms"`
}

// Fetch retrieves and normalizes the entry set for a word. Every failure
// mode collapses to a FetchFailed error so the caller can treat the whole
// authoritative path as a single yes/no sourcing decision.
func (c *Client) Fetch(ctx context.Context, word string) (*core.EntrySet, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, errors.FetchFailed, "reference rate limiter wait failed")
		}
	}

	endpoint := c.baseURL + "/api/v2/entries/en/" + url.PathEscape(word)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.FetchFailed, "failed to create reference request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.FetchFailed, "reference request failed"),
			errors.Fields{"word": word})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.WithFields(
			errors.New(errors.FetchFailed, "reference API returned non-success status"),
			errors.Fields{"word": word, "status": resp.StatusCode})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.FetchFailed, "failed to read reference response")
	}

	var entries []apiEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, errors.Wrap(err, errors.FetchFailed, "malformed reference payload")
	}
	if len(entries) == 0 {
		return nil, errors.WithFields(
			errors.New(errors.FetchFailed, "reference API returned no entries"),
			errors.Fields{"word": word})
	}

	return normalize(word, entries), nil
}

// normalize converts provider entries into the two-dimensional entry/sense
// form. Indices follow provider ordering exactly; the addressing established
// here is what every later sense-scoped request validates against.
func normalize(word string, entries []apiEntry) *core.EntrySet {
	set := &core.EntrySet{
		Headword: word,
		Entries:  make([]core.WordEntry, 0, len(entries)),
	}

	for entryIndex, entry := range entries {
		pronunciation, audioURL := pickPhonetic(entry)

		wordEntry := core.WordEntry{
			EntryIndex:    entryIndex,
			Pronunciation: pronunciation,
			AudioURL:      audioURL,
		}

		senseIndex := 0
		for _, meaning := range entry.Meanings {
			for _, def := range meaning.Definitions {
				if def.Definition == "" {
					continue
				}
				sense := core.Sense{
					SenseIndex:   senseIndex,
					Definition:   def.Definition,
					PartOfSpeech: meaning.PartOfSpeech,
					Synonyms:     mergeLists(meaning.Synonyms, def.Synonyms),
					Antonyms:     mergeLists(meaning.Antonyms, def.Antonyms),
				}
				if def.Example != "" {
					sense.Examples = []string{def.Example}
				}
				wordEntry.Senses = append(wordEntry.Senses, sense)
				senseIndex++
			}
		}
		set.Entries = append(set.Entries, wordEntry)
	}
	return set
}

// pickPhonetic prefers the phonetic row carrying both an IPA text and an
// audio URL, then falls back field by field.
func pickPhonetic(entry apiEntry) (pronunciation, audioURL string) {
	for _, p := range entry.Phonetics {
		if p.Text != "" && p.Audio != "" {
			return p.Text, p.Audio
		}
	}
	for _, p := range entry.Phonetics {
		if pronunciation == "" && p.Text != "" {
			pronunciation = p.Text
		}
		if audioURL == "" && p.Audio != "" {
			audioURL = p.Audio
		}
	}
	if pronunciation == "" {
		pronunciation = entry.Phonetic
	}
	return pronunciation, audioURL
}

// mergeLists concatenates meaning-level and definition-level lists without
// duplicates, preserving order.
func mergeLists(meaningLevel, definitionLevel []string) []string {
	if len(meaningLevel) == 0 && len(definitionLevel) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(meaningLevel)+len(definitionLevel))
	merged := make([]string, 0, len(meaningLevel)+len(definitionLevel))
	for _, list := range [][]string{meaningLevel, definitionLevel} {
		for _, item := range list {
			if item == "" {
				continue
			}
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			merged = append(merged, item)
		}
	}
	return merged
}
