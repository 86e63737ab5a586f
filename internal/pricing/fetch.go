// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pricing

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/estimate-engine/internal/httputil"
)

// FetchYAML downloads a YAML price list from a mirror URL and imports it
// into the store. Rate-limited responses are retried with backoff.
func (s *Store) FetchYAML(ctx context.Context, client *http.Client, url, userAgent string, w io.Writer) (ImportSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("fetching price list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ImportSummary{}, fmt.Errorf("price mirror returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("reading price list body: %w", err)
	}

	return s.importData(ctx, data, w)
}
