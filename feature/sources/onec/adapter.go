package onec

import (
	"context"
	"time"

	"catalog-sync/core/source"

	"go.uber.org/zap"
)

// SourceName identifies this adapter in records and conflict policy.
const SourceName = "onec"

// Adapter exposes the 1C catalog as a record source.
type Adapter struct {
	client    *Client
	mandatory bool
	logger    *zap.Logger
}

// NewAdapter creates the 1C source adapter.
func NewAdapter(cfg Config, logger *zap.Logger) *Adapter {
	return &Adapter{
		client:    NewClient(cfg),
		mandatory: cfg.Mandatory,
		logger:    logger,
	}
}

func (a *Adapter) Name() string    { return SourceName }
func (a *Adapter) Mandatory() bool { return a.mandatory }

// Fetch lists the short-product catalog and normalizes it into records
// keyed by article. The fetch time stamps every record: the upstream
// carries no per-row modification time.
func (a *Adapter) Fetch(ctx context.Context) ([]source.Record, error) {
	products, err := a.client.ShortProducts(ctx)
	if err != nil {
		return nil, err
	}
	observedAt := time.Now()

	records := make([]source.Record, 0, len(products))
	for _, p := range products {
		fields := map[string]string{"name": p.Name}
		if p.Brand != "" {
			fields["brand"] = p.Brand
		}
		if p.Country != "" {
			fields["country"] = p.Country
		}
		if p.Unit != "" {
			fields["unit"] = p.Unit
		}
		if p.Class.RusName != "" {
			fields["class"] = p.Class.RusName
		}

		records = append(records, source.Record{
			Key:        p.Article,
			Source:     SourceName,
			ObservedAt: observedAt,
			Fields:     fields,
		})
	}

	a.logger.Debug("Fetched products", zap.String("source", SourceName), zap.Int("count", len(records)))
	return records, nil
}
