package sheets

import (
	"context"
	"time"

	"catalog-sync/core/source"

	"go.uber.org/zap"
)

// SourceName identifies this adapter in records and conflict policy.
const SourceName = "sheets"

// Adapter exposes a spreadsheet tab as a record source.
type Adapter struct {
	client    *Client
	keyColumn string
	mandatory bool
	logger    *zap.Logger
}

// NewAdapter creates the sheet source adapter.
func NewAdapter(cfg Config, logger *zap.Logger) *Adapter {
	keyColumn := cfg.KeyColumn
	if keyColumn == "" {
		keyColumn = "article"
	}
	return &Adapter{
		client:    NewClient(cfg),
		keyColumn: keyColumn,
		mandatory: cfg.Mandatory,
		logger:    logger,
	}
}

func (a *Adapter) Name() string    { return SourceName }
func (a *Adapter) Mandatory() bool { return a.mandatory }

// Fetch downloads the tab and converts each row into a record keyed by
// the configured key column. Rows without a key are passed through with
// an empty key; downstream reconciliation rejects and counts them, so
// nothing is silently dropped here.
func (a *Adapter) Fetch(ctx context.Context) ([]source.Record, error) {
	rows, err := a.client.Rows(ctx)
	if err != nil {
		return nil, err
	}
	observedAt := time.Now()

	records := make([]source.Record, 0, len(rows))
	for _, row := range rows {
		key := row[a.keyColumn]

		fields := make(map[string]string, len(row))
		for col, value := range row {
			if col == a.keyColumn || value == "" {
				continue
			}
			fields[col] = value
		}

		records = append(records, source.Record{
			Key:        key,
			Source:     SourceName,
			ObservedAt: observedAt,
			Fields:     fields,
		})
	}

	a.logger.Debug("Fetched rows", zap.String("source", SourceName), zap.Int("count", len(records)))
	return records, nil
}
