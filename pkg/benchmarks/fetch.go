package benchmarks

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const maxTableBytes = 4 << 20

// Source says where a table comes from. File wins over URL; with neither set
// the embedded table is used.
type Source struct {
	File string
	URL  string
}

// Load resolves src into a Table.
func Load(ctx context.Context, src Source) (*Table, error) {
	switch {
	case src.File != "":
		data, err := os.ReadFile(src.File)
		if err != nil {
			return nil, fmt.Errorf("read benchmark table: %w", err)
		}
		return Parse(data)
	case src.URL != "":
		return Fetch(ctx, src.URL, nil)
	}
	return Default(), nil
}

// Fetch downloads a YAML table. A nil client gets a quiet retrying client with
// a short timeout.
func Fetch(ctx context.Context, url string, client *retryablehttp.Client) (*Table, error) {
	if client == nil {
		client = retryablehttp.NewClient()
		client.Logger = log.New(io.Discard, "", 0)
		client.RetryMax = 3
		client.HTTPClient.Timeout = 15 * time.Second
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/yaml, text/yaml, text/plain")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch benchmark table: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch benchmark table: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTableBytes))
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
