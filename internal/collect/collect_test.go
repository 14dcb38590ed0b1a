// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/giangpth/Alkaptonuria/internal/httputil"
	"github.com/giangpth/Alkaptonuria/pkg/types"
)

func testCfg() types.CollectConfig {
	return types.CollectConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
		ChunkSize: types.DefaultChunkSize,
		PageDelay: types.DefaultPageDelay,
	}
}

// fakeESearch serves synthetic esearch pages for a fixed total count.
// Identifiers are sequential starting at 1000. It records the retstart of
// every pagination request (retmax > 0).
type fakeESearch struct {
	count     int
	calls     int
	starts    []int
	lastQuery map[string]string
}

func (f *fakeESearch) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.calls++
		q := r.URL.Query()
		f.lastQuery = map[string]string{}
		for k := range q {
			f.lastQuery[k] = q.Get(k)
		}

		retmax, _ := strconv.Atoi(q.Get("retmax"))
		retstart, _ := strconv.Atoi(q.Get("retstart"))

		var ids []string
		if retmax > 0 {
			f.starts = append(f.starts, retstart)
			for i := retstart; i < retstart+retmax && i < f.count; i++ {
				ids = append(ids, fmt.Sprintf("%d", 1000+i))
			}
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"esearchresult":{"count":"%d","idlist":[%s]}}`,
			f.count, quoteJoin(ids))
	}
}

func quoteJoin(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = `"` + id + `"`
	}
	return strings.Join(quoted, ",")
}

func newTestCollector(ts *httptest.Server) (*Collector, *[]time.Duration) {
	var slept []time.Duration
	c := &Collector{
		Client: ts.Client(),
		Sleep:  func(d time.Duration) { slept = append(slept, d) },
	}
	return c, &slept
}

func withBase(t *testing.T, ts *httptest.Server) {
	t.Helper()
	old := eutilsSearchBase
	eutilsSearchBase = ts.URL
	t.Cleanup(func() { eutilsSearchBase = old })
}

func TestCollectZeroCount(t *testing.T) {
	fake := &fakeESearch{count: 0}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()
	withBase(t, ts)

	c, _ := newTestCollector(ts)
	pmids, err := c.Collect(context.Background(), "alkaptonuria", testCfg())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(pmids) != 0 {
		t.Errorf("len(pmids) = %d, want 0", len(pmids))
	}
	// Only the count probe, no pagination calls.
	if fake.calls != 1 {
		t.Errorf("calls = %d, want 1", fake.calls)
	}
	if len(fake.starts) != 0 {
		t.Errorf("pagination offsets = %v, want none", fake.starts)
	}
}

func TestCollectPaginationWindows(t *testing.T) {
	fake := &fakeESearch{count: 25000}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()
	withBase(t, ts)

	c, slept := newTestCollector(ts)
	pmids, err := c.Collect(context.Background(), "alkaptonuria", testCfg())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	// Exactly 3 pagination calls with offsets 0, 10000, 20000.
	wantStarts := []int{0, 10000, 20000}
	if !reflect.DeepEqual(fake.starts, wantStarts) {
		t.Errorf("pagination offsets = %v, want %v", fake.starts, wantStarts)
	}
	if len(pmids) != 25000 {
		t.Errorf("len(pmids) = %d, want 25000", len(pmids))
	}

	// Pacing runs between consecutive pagination calls only.
	if len(*slept) != 2 {
		t.Errorf("sleep count = %d, want 2", len(*slept))
	}
	for _, d := range *slept {
		if d != types.DefaultPageDelay {
			t.Errorf("sleep duration = %v, want %v", d, types.DefaultPageDelay)
		}
	}
}

func TestCollectSortedUnique(t *testing.T) {
	// Pages overlap and arrive out of numeric order.
	pages := [][]string{
		{"10", "9", "100"},
		{"9", "2", "30"},
	}
	var call int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		retmax, _ := strconv.Atoi(r.URL.Query().Get("retmax"))
		if retmax == 0 {
			fmt.Fprint(w, `{"esearchresult":{"count":"6","idlist":[]}}`)
			return
		}
		ids := pages[call]
		call++
		fmt.Fprintf(w, `{"esearchresult":{"count":"6","idlist":[%s]}}`, quoteJoin(ids))
	}))
	defer ts.Close()
	withBase(t, ts)

	cfg := testCfg()
	cfg.ChunkSize = 3
	c, _ := newTestCollector(ts)
	pmids, err := c.Collect(context.Background(), "q", cfg)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	want := []types.PMID{"2", "9", "10", "30", "100"}
	if !reflect.DeepEqual(pmids, want) {
		t.Errorf("pmids = %v, want %v", pmids, want)
	}
}

func TestCollectIdempotent(t *testing.T) {
	fake := &fakeESearch{count: 42}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()
	withBase(t, ts)

	c, _ := newTestCollector(ts)
	first, err := c.Collect(context.Background(), "q", testCfg())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	second, err := c.Collect(context.Background(), "q", testCfg())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("runs differ: %v vs %v", first, second)
	}
}

func TestCollectMissingIDListIsEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Pages without an idlist field decode as empty, not an error.
		fmt.Fprint(w, `{"esearchresult":{"count":"5"}}`)
	}))
	defer ts.Close()
	withBase(t, ts)

	c, _ := newTestCollector(ts)
	pmids, err := c.Collect(context.Background(), "q", testCfg())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(pmids) != 0 {
		t.Errorf("len(pmids) = %d, want 0", len(pmids))
	}
}

func TestCollectMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing esearchresult", `{"header":{}}`},
		{"non-numeric count", `{"esearchresult":{"count":"many"}}`},
		{"not json", `<html>oops</html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()
			withBase(t, ts)

			c, _ := newTestCollector(ts)
			if _, err := c.Collect(context.Background(), "q", testCfg()); err == nil {
				t.Error("Collect succeeded, want error")
			}
		})
	}
}

func TestCollectNonRetryableStatus(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()
	withBase(t, ts)

	c, _ := newTestCollector(ts)
	_, err := c.Collect(context.Background(), "q", testCfg())

	var re *httputil.RequestError
	if err == nil {
		t.Fatal("Collect succeeded, want error")
	}
	if !errors.As(err, &re) {
		t.Fatalf("error = %v, want *httputil.RequestError", err)
	}
	if re.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", re.StatusCode)
	}
	// Non-retryable statuses fail immediately.
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestCollectAPIKeyForwarded(t *testing.T) {
	fake := &fakeESearch{count: 1}
	ts := httptest.NewServer(fake.handler())
	defer ts.Close()
	withBase(t, ts)

	cfg := testCfg()
	cfg.APIKey = "abc123"
	c, _ := newTestCollector(ts)
	if _, err := c.Collect(context.Background(), "q", cfg); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if got := fake.lastQuery["api_key"]; got != "abc123" {
		t.Errorf("api_key = %q, want %q", got, "abc123")
	}
	if got := fake.lastQuery["db"]; got != "pubmed" {
		t.Errorf("db = %q, want %q", got, "pubmed")
	}
	if got := fake.lastQuery["retmode"]; got != "json" {
		t.Errorf("retmode = %q, want %q", got, "json")
	}
}
