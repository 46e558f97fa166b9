package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"catalog-sync/core/source"
)

const docsBaseURL = "https://docs.google.com"

// Client downloads a publicly readable spreadsheet tab via the CSV
// export endpoint.
type Client struct {
	baseURL       string
	spreadsheetID string
	gid           string
	http          *http.Client
}

// NewClient creates a sheet download client from the configuration.
func NewClient(cfg Config) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return &Client{
		baseURL:       docsBaseURL,
		spreadsheetID: cfg.SpreadsheetID,
		gid:           cfg.GID,
		http:          &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

// Row is one sheet row decoded against the lowercased header.
type Row map[string]string

// Rows downloads the tab and decodes it. The direct export URL is tried
// first; on any failure the gviz endpoint serves as fallback, since a
// sheet can be published through gviz while its export URL is blocked.
// Header names are lowercased so sheet formatting does not affect
// matching.
func (c *Client) Rows(ctx context.Context) ([]Row, error) {
	exportURL := fmt.Sprintf("%s/spreadsheets/d/%s/export?format=csv&gid=%s",
		c.baseURL, c.spreadsheetID, c.gid)

	rows, err := c.download(ctx, exportURL)
	if err == nil {
		return rows, nil
	}

	gvizURL := fmt.Sprintf("%s/spreadsheets/d/%s/gviz/tq?tqx=out:csv&gid=%s",
		c.baseURL, c.spreadsheetID, c.gid)
	rows, gvizErr := c.download(ctx, gvizURL)
	if gvizErr != nil {
		// Classification follows the primary endpoint.
		return nil, err
	}
	return rows, nil
}

func (c *Client) download(ctx context.Context, rawURL string) ([]Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, source.NewFatal(SourceName, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, source.NewTransient(SourceName, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound:
		return nil, source.NewFatal(SourceName, fmt.Errorf("sheet not accessible: %s", resp.Status))
	default:
		return nil, source.NewTransient(SourceName, fmt.Errorf("download failed: %s", resp.Status))
	}

	return decodeCSV(resp.Body)
}

// decodeCSV reads the header row, lowercases the column names, and
// decodes each remaining row into a map.
func decodeCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // sheets pad short rows inconsistently

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, source.NewFatal(SourceName, fmt.Errorf("malformed csv header: %w", err))
	}
	for i, col := range header {
		header[i] = strings.ToLower(strings.TrimSpace(col))
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, source.NewFatal(SourceName, fmt.Errorf("malformed csv row: %w", err))
		}

		row := make(Row, len(header))
		for i, col := range header {
			if col == "" || i >= len(record) {
				continue
			}
			row[col] = strings.TrimSpace(record[i])
		}
		rows = append(rows, row)
	}
}
