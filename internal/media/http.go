package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	coreconfig "github.com/m3rciful/mediareq/core/config"
	"github.com/m3rciful/mediareq/core/logger"
	"github.com/m3rciful/mediareq/core/telegram/format"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const component = "service.media"

// Options configures HTTPClient. Zero durations disable the respective feature.
type Options struct {
	BaseURL  string
	APIKey   string
	Language string
	// Timeout bounds each call on top of the caller's context.
	Timeout time.Duration
	// CacheTTL keeps successful searches and season counts; 0 disables caching.
	CacheTTL time.Duration
	// RequestsPerSecond paces outbound calls; 0 disables pacing.
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// HTTPClient implements Client against an Overseerr-compatible REST API.
type HTTPClient struct {
	base     string
	apiKey   string
	language string
	timeout  time.Duration
	http     *http.Client
	limiter  *rate.Limiter
	cache    *cache.Cache
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client from opts.
func NewHTTPClient(opts Options) *HTTPClient {
	c := &HTTPClient{
		base:     opts.BaseURL,
		apiKey:   opts.APIKey,
		language: opts.Language,
		timeout:  opts.Timeout,
		http:     opts.HTTPClient,
	}
	if c.language == "" {
		c.language = coreconfig.DefaultMediaLanguage
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), max(1, int(opts.RequestsPerSecond)))
	}
	if opts.CacheTTL > 0 {
		c.cache = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return c
}

// NewHTTPClientFromConfig builds a client from the normalized media section.
func NewHTTPClientFromConfig(cfg coreconfig.MediaConfig) *HTTPClient {
	return NewHTTPClient(Options{
		BaseURL:           cfg.BaseURL,
		APIKey:            cfg.APIKey,
		Language:          cfg.Language,
		Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		CacheTTL:          time.Duration(cfg.CacheTTLSeconds) * time.Second,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
}

type searchResponse struct {
	Results []struct {
		ID         int64   `json:"id"`
		MediaType  string  `json:"mediaType"`
		Title      string  `json:"title"`
		Name       string  `json:"name"`
		PosterPath *string `json:"posterPath"`
	} `json:"results"`
}

type requestBody struct {
	MediaID   int64  `json:"mediaId"`
	MediaType string `json:"mediaType"`
	Seasons   []int  `json:"seasons"`
}

type seriesResponse struct {
	NumberOfSeasons int `json:"numberOfSeasons"`
}

// Search implements Client.
func (c *HTTPClient) Search(ctx context.Context, query string, kind Kind) []Candidate {
	key := "search|" + string(kind) + "|" + c.language + "|" + query
	if cached, ok := c.cached(key); ok {
		out := cached.([]Candidate)
		logger.Debug(ctx, component, "search.cache_hit", slog.String("query", query), slog.Int("count", len(out)))
		return append([]Candidate(nil), out...)
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("page", "1")
	q.Set("language", c.language)

	var resp searchResponse
	start := time.Now()
	if err := c.do(ctx, http.MethodGet, "/api/v1/search?"+q.Encode(), nil, http.StatusOK, &resp); err != nil {
		logger.Error(ctx, component, "search",
			slog.String("status", "fail"),
			slog.String("query", query),
			slog.String("kind", string(kind)),
			slog.String("err", err.Error()),
			slog.Duration("duration", logger.Took(start)),
		)
		return nil
	}

	var out []Candidate
	for _, r := range resp.Results {
		if Kind(r.MediaType) != kind {
			continue
		}
		title := r.Title
		if title == "" {
			title = r.Name
		}
		out = append(out, Candidate{
			ID:         r.ID,
			Title:      title,
			Kind:       kind,
			PosterPath: format.DerefString(r.PosterPath, ""),
		})
	}
	c.store(key, append([]Candidate(nil), out...))
	logger.Info(ctx, component, "search",
		slog.String("status", "ok"),
		slog.String("query", query),
		slog.String("kind", string(kind)),
		slog.Int("count", len(out)),
		slog.Duration("duration", logger.Took(start)),
	)
	return out
}

// SubmitRequest implements Client. A 201 response is the only success.
func (c *HTTPClient) SubmitRequest(ctx context.Context, cand Candidate, seasons []int) bool {
	body := requestBody{MediaID: cand.ID, MediaType: string(cand.Kind), Seasons: seasons}
	if body.Seasons == nil {
		body.Seasons = []int{}
	}

	start := time.Now()
	attrs := []slog.Attr{
		slog.Int64("media_id", cand.ID),
		slog.String("kind", string(cand.Kind)),
		slog.Any("seasons", body.Seasons),
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/request", body, http.StatusCreated, nil); err != nil {
		logger.Error(ctx, component, "request.submit", append(attrs,
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
			slog.Duration("duration", logger.Took(start)),
		)...)
		return false
	}
	logger.Info(ctx, component, "request.submit", append(attrs,
		slog.String("status", "ok"),
		slog.Duration("duration", logger.Took(start)),
	)...)
	return true
}

// SeasonCount implements Client.
func (c *HTTPClient) SeasonCount(ctx context.Context, seriesID int64) int {
	id := strconv.FormatInt(seriesID, 10)
	key := "seasons|" + id
	if cached, ok := c.cached(key); ok {
		return cached.(int)
	}

	var resp seriesResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/tv/"+id, nil, http.StatusOK, &resp); err != nil {
		logger.Error(ctx, component, "series.seasons",
			slog.String("status", "fail"),
			slog.Int64("media_id", seriesID),
			slog.String("err", err.Error()),
		)
		return 0
	}
	n := max(resp.NumberOfSeasons, 0)
	c.store(key, n)
	logger.Info(ctx, component, "series.seasons", slog.Int64("media_id", seriesID), slog.Int("count", n))
	return n
}

func (c *HTTPClient) cached(key string) (any, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *HTTPClient) store(key string, v any) {
	if c.cache != nil {
		c.cache.Set(key, v, cache.DefaultExpiration)
	}
}

// do performs one call: no retries, bounded by the client timeout.
func (c *HTTPClient) do(ctx context.Context, method, path string, in any, wantStatus int, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
