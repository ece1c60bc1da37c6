package universe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const constituentsHTML = `<html><body>
<table class="wikitable sortable">
<tr><th>Symbol</th><th>Security</th></tr>
<tr><td>MMM
</td><td>3M</td></tr>
<tr><td> AAPL </td><td>Apple Inc.</td></tr>
<tr><td>brk.b</td><td>Berkshire Hathaway</td></tr>
</table>
<table class="wikitable"><tr><td>XXXX</td></tr></table>
</body></html>`

func TestScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(constituentsHTML))
	}))
	defer srv.Close()

	s := New(Options{URL: srv.URL})
	symbols, err := s.Scrape(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"MMM", "AAPL", "BRK.B"}, symbols)
}

func TestScrapeNoTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>nothing here</p></body></html>`))
	}))
	defer srv.Close()

	s := New(Options{URL: srv.URL})
	_, err := s.Scrape(context.Background())
	require.Error(t, err)
}

func TestTickersWritesCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(constituentsHTML))
	}))
	defer srv.Close()

	cachePath := filepath.Join(t.TempDir(), "universe", "sp500.json")
	s := New(Options{URL: srv.URL, CachePath: cachePath})

	symbols, err := s.Tickers(context.Background())
	require.NoError(t, err)
	assert.Len(t, symbols, 3)

	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}
}

func TestTickersPrefersFreshCache(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(constituentsHTML))
	}))
	defer srv.Close()

	cachePath := filepath.Join(t.TempDir(), "sp500.json")
	s := New(Options{URL: srv.URL, CachePath: cachePath, CacheMaxAge: time.Hour})

	_, err := s.Tickers(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, hits)

	_, err = s.Tickers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, hits, "second call should be served from cache")
}

func TestTickersFallsBackToStaleCache(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "sp500.json")
	err := os.WriteFile(cachePath, []byte(`{"fetched_at":"2020-01-01T00:00:00Z","symbols":["AAPL","MSFT"]}`), 0o644)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := New(Options{URL: srv.URL, CachePath: cachePath, CacheMaxAge: time.Minute})
	symbols, err := s.Tickers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, symbols)
}

func TestTickersScrapeFailureNoCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := New(Options{URL: srv.URL})
	_, err := s.Tickers(context.Background())
	require.Error(t, err)
}
