// Package universe produces the ordered list of ticker symbols to ingest by
// scraping the S&P 500 constituents table from Wikipedia, with a local JSON
// cache so re-runs do not depend on the page being reachable.
package universe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

// Source scrapes and caches the ticker universe.
type Source struct {
	url        string
	cachePath  string
	maxAge     time.Duration
	httpClient *http.Client
	logger     zerolog.Logger
}

// Options holds options for creating a new Source.
type Options struct {
	URL         string
	CachePath   string
	CacheMaxAge time.Duration
	Timeout     time.Duration
}

// New creates a new universe Source.
func New(opts Options) *Source {
	if opts.URL == "" {
		opts.URL = defaultURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.CacheMaxAge == 0 {
		opts.CacheMaxAge = 24 * time.Hour
	}

	return &Source{
		url:        opts.URL,
		cachePath:  opts.CachePath,
		maxAge:     opts.CacheMaxAge,
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     log.With().Str("component", "universe").Logger(),
	}
}

// cacheFile is the on-disk shape of the cached symbol list.
type cacheFile struct {
	FetchedAt time.Time `json:"fetched_at"`
	Symbols   []string  `json:"symbols"`
}

// Tickers returns the symbol list, preferring a fresh cache, then a live
// scrape, then a stale cache if the scrape fails.
func (s *Source) Tickers(ctx context.Context) ([]string, error) {
	if symbols, ok := s.loadCache(false); ok {
		s.logger.Debug().Int("count", len(symbols)).Msg("Loaded ticker universe from cache")
		return symbols, nil
	}

	symbols, err := s.Scrape(ctx)
	if err != nil {
		if stale, ok := s.loadCache(true); ok {
			s.logger.Warn().Err(err).Int("count", len(stale)).Msg("Scrape failed, using stale cache")
			return stale, nil
		}
		return nil, err
	}

	s.writeCache(symbols)
	return symbols, nil
}

// Scrape fetches the Wikipedia page and pulls the first column of the
// constituents table.
func (s *Source) Scrape(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching universe page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching universe page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing universe page: %w", err)
	}

	var symbols []string
	doc.Find("table.wikitable.sortable").First().Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		symbol := strings.TrimSpace(row.Find("td").First().Text())
		if symbol != "" {
			symbols = append(symbols, strings.ToUpper(symbol))
		}
	})

	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols found in constituents table")
	}

	s.logger.Info().Int("count", len(symbols)).Msg("Scraped ticker universe")
	return symbols, nil
}

// loadCache reads the cache file; allowStale skips the age check.
func (s *Source) loadCache(allowStale bool) ([]string, bool) {
	if s.cachePath == "" {
		return nil, false
	}
	data, err := os.ReadFile(s.cachePath)
	if err != nil {
		return nil, false
	}
	var cached cacheFile
	if err := json.Unmarshal(data, &cached); err != nil {
		s.logger.Warn().Err(err).Str("path", s.cachePath).Msg("Ignoring unreadable universe cache")
		return nil, false
	}
	if len(cached.Symbols) == 0 {
		return nil, false
	}
	if !allowStale && time.Since(cached.FetchedAt) > s.maxAge {
		return nil, false
	}
	return cached.Symbols, true
}

func (s *Source) writeCache(symbols []string) {
	if s.cachePath == "" {
		return
	}
	data, err := json.MarshalIndent(cacheFile{FetchedAt: time.Now().UTC(), Symbols: symbols}, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.cachePath), 0o755); err != nil {
		s.logger.Warn().Err(err).Str("path", s.cachePath).Msg("Failed to create cache directory")
		return
	}
	if err := os.WriteFile(s.cachePath, data, 0o644); err != nil {
		s.logger.Warn().Err(err).Str("path", s.cachePath).Msg("Failed to write universe cache")
	}
}
