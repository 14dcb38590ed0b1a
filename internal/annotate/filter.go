// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotate filters PMID sets through the PubTator annotation
// export API, keeping identifiers the service annotates with the
// requested biomedical concepts.
package annotate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/giangpth/Alkaptonuria/internal/httputil"
	"github.com/giangpth/Alkaptonuria/pkg/types"
)

// pubtatorExportBase is the PubTator biocjson export endpoint. Declared as
// a var so tests can substitute an httptest server.
var pubtatorExportBase = "https://www.ncbi.nlm.nih.gov/research/pubtator-api/publications/export/biocjson"

// Filter batches PMIDs through the annotation export API.
type Filter struct {
	Client *http.Client

	// Sleep is invoked between consecutive batch requests. Nil means
	// time.Sleep; tests inject a stub.
	Sleep func(time.Duration)
}

// Keep returns the subset of pmids whose exported document carries at
// least one annotation for the requested concepts, summed across all
// passages. The concept names are passed to the service verbatim;
// concept-type matching happens upstream, not locally.
//
// Input order is preserved within each request batch, but the returned
// set is unordered; callers re-sort before use. A PMID absent from the
// response is excluded, indistinguishable from one returned with zero
// annotations.
func (f *Filter) Keep(ctx context.Context, pmids []types.PMID, concepts []string, cfg types.FilterConfig) (map[types.PMID]struct{}, error) {
	page := cfg.PageSize
	if page <= 0 {
		page = types.DefaultPageSize
	}

	requested := make(map[types.PMID]struct{}, len(pmids))
	for _, id := range pmids {
		requested[id] = struct{}{}
	}

	keep := make(map[types.PMID]struct{})
	for i := 0; i < len(pmids); i += page {
		if i > 0 {
			f.sleep(cfg.BatchDelay)
		}

		end := i + page
		if end > len(pmids) {
			end = len(pmids)
		}

		docs, err := f.export(ctx, pmids[i:end], concepts, cfg)
		if err != nil {
			return nil, err
		}

		for _, doc := range docs {
			// Ignore documents we never asked for; the result is always a
			// subset of the input.
			if _, ok := requested[types.PMID(doc.ID)]; !ok {
				continue
			}
			if doc.annotationCount() > 0 {
				keep[types.PMID(doc.ID)] = struct{}{}
			}
		}
	}
	return keep, nil
}

// export issues one annotation export request for a batch of PMIDs.
func (f *Filter) export(ctx context.Context, batch []types.PMID, concepts []string, cfg types.FilterConfig) ([]exportDocument, error) {
	ids := make([]string, len(batch))
	for i, id := range batch {
		ids[i] = string(id)
	}

	params := url.Values{
		"pmids":    {strings.Join(ids, ",")},
		"concepts": {strings.Join(concepts, ",")},
	}

	reqURL := pubtatorExportBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, f.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("annotation export request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("annotation export request: %w", err)
	}

	var er exportResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("parsing annotation export response: %w", err)
	}
	return er.Documents, nil
}

func (f *Filter) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if f.Sleep != nil {
		f.Sleep(d)
		return
	}
	time.Sleep(d)
}

// PubTator biocjson export structures. A document without passages, or a
// passage without annotations, is a defined empty case.
type exportResponse struct {
	Documents []exportDocument `json:"documents"`
}

type exportDocument struct {
	ID       string          `json:"id"`
	Passages []exportPassage `json:"passages"`
}

type exportPassage struct {
	Annotations []json.RawMessage `json:"annotations"`
}

// annotationCount sums annotation records across all passages.
func (d exportDocument) annotationCount() int {
	total := 0
	for _, p := range d.Passages {
		total += len(p.Annotations)
	}
	return total
}
