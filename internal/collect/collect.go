// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect retrieves the full set of PubMed identifiers matching a
// keyword query via the NCBI esearch API.
package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/giangpth/Alkaptonuria/internal/httputil"
	"github.com/giangpth/Alkaptonuria/pkg/types"
)

// eutilsSearchBase is the PubMed esearch endpoint. Declared as a var so
// tests can substitute an httptest server.
var eutilsSearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"

// Collector pages through esearch results for a query.
type Collector struct {
	Client *http.Client

	// Sleep is invoked between consecutive pagination requests to respect
	// the upstream rate limit. Nil means time.Sleep; tests inject a stub.
	Sleep func(time.Duration)
}

// Collect returns every PMID matching query, deduplicated and sorted
// ascending by numeric value.
//
// It first issues a count-only probe to learn the total match count, then
// fetches windows of cfg.ChunkSize identifiers at increasing offsets. The
// pacing delay cfg.PageDelay is imposed between consecutive pagination
// requests regardless of response latency. A zero count returns an empty
// slice without issuing any pagination request.
func (c *Collector) Collect(ctx context.Context, query string, cfg types.CollectConfig) ([]types.PMID, error) {
	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = types.DefaultChunkSize
	}

	probe, err := c.fetch(ctx, query, 0, 0, cfg)
	if err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(probe.Count)
	if err != nil {
		return nil, fmt.Errorf("parsing esearch count %q: %w", probe.Count, err)
	}

	var pmids []types.PMID
	for start := 0; start < count; start += chunk {
		if start > 0 {
			c.sleep(cfg.PageDelay)
		}
		page, err := c.fetch(ctx, query, chunk, start, cfg)
		if err != nil {
			return nil, err
		}
		for _, id := range page.IDList {
			pmids = append(pmids, types.PMID(id))
		}
	}

	return types.SortUnique(pmids), nil
}

// fetch issues one esearch request and decodes the envelope. retmax 0 is
// the count-only probe.
func (c *Collector) fetch(ctx context.Context, query string, retmax, retstart int, cfg types.CollectConfig) (*esearchResult, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"retmode": {"json"},
		"term":    {query},
		"retmax":  {strconv.Itoa(retmax)},
	}
	if retmax > 0 {
		params.Set("retstart", strconv.Itoa(retstart))
	}
	if cfg.APIKey != "" {
		params.Set("api_key", cfg.APIKey)
	}

	reqURL := eutilsSearchBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("esearch request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("esearch request: %w", err)
	}

	var env esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("parsing esearch response: %w", err)
	}
	if env.ESearchResult == nil {
		return nil, fmt.Errorf("esearch response missing esearchresult")
	}
	return env.ESearchResult, nil
}

func (c *Collector) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if c.Sleep != nil {
		c.Sleep(d)
		return
	}
	time.Sleep(d)
}

// esearch API JSON structures. Count is string-encoded by the API; IDList
// may be absent on a page, which decodes as an empty list.
type esearchResponse struct {
	ESearchResult *esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count  string   `json:"count"`
	IDList []string `json:"idlist"`
}
