package scraper

import (
	"context"
	"log/slog"

	"github.com/salesops/giftware-scraper/internal/extractor"
	"github.com/salesops/giftware-scraper/internal/models"
	"github.com/salesops/giftware-scraper/internal/resolver"
	"github.com/salesops/giftware-scraper/internal/session"
)

// ItemState tracks one identifier through the pipeline. States advance
// strictly forward; Found, NotFound and Error are terminal.
type ItemState string

const (
	StatePending    ItemState = "pending"
	StateResolving  ItemState = "resolving"
	StateExtracting ItemState = "extracting"
	StateFound      ItemState = "found"
	StateNotFound   ItemState = "not_found"
	StateError      ItemState = "error"
)

// Pipeline turns one item number into its terminal ProductRecord:
// URL resolution, page load, field extraction, classification. Faults are
// captured in the record, never raised to the batch.
type Pipeline struct {
	resolver  *resolver.Resolver
	extractor *extractor.Extractor
	logger    *slog.Logger
}

func NewPipeline(r *resolver.Resolver, e *extractor.Extractor, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		resolver:  r,
		extractor: e,
		logger:    logger.With("component", "pipeline"),
	}
}

// Process runs one identifier to a terminal state against the given session.
func (pl *Pipeline) Process(ctx context.Context, sess *session.Session, itemNumber string) models.ProductRecord {
	resolved, err := pl.resolver.Resolve(ctx, sess, itemNumber)
	if err != nil {
		pl.logger.Error("resolution fault", "item", itemNumber, "error", err)
		return pl.terminal(itemNumber, StateError, models.ErrorRecord(itemNumber, err.Error()))
	}
	if !resolved.Loaded {
		return pl.terminal(itemNumber, StateNotFound, models.NotFoundRecord(itemNumber))
	}

	record := models.ProductRecord{
		ItemNumber:   itemNumber,
		ProductName:  models.SentinelNotFound,
		UnitPrice:    models.SentinelNotFound,
		CaseQuantity: models.SentinelNotFound,
		URL:          resolved.URL,
		Status:       models.StatusFound,
	}

	name, err := pl.extractor.Name(sess.Page)
	if err != nil {
		pl.logger.Error("name extraction fault", "item", itemNumber, "error", err)
		return pl.terminal(itemNumber, StateError, models.ErrorRecord(itemNumber, err.Error()))
	}
	if name.Found {
		record.ProductName = name.Value
	}

	price, err := pl.extractor.Price(sess.Page, sess)
	if err != nil {
		pl.logger.Error("price extraction fault", "item", itemNumber, "error", err)
		return pl.terminal(itemNumber, StateError, models.ErrorRecord(itemNumber, err.Error()))
	}
	if price.Found || price.Value != "" {
		record.UnitPrice = price.Value
	}

	caseQty, err := pl.extractor.CaseQuantity(sess.Page)
	if err != nil {
		pl.logger.Error("case quantity extraction fault", "item", itemNumber, "error", err)
		return pl.terminal(itemNumber, StateError, models.ErrorRecord(itemNumber, err.Error()))
	}
	if caseQty.Found {
		record.CaseQuantity = caseQty.Value
	}

	// A record is Found only when the page yielded a product name; partial
	// field misses inside a Found record stay as sentinels.
	if !name.Found {
		record.Status = models.StatusNotFound
		return pl.terminal(itemNumber, StateNotFound, record)
	}

	pl.logger.Info("item extracted",
		"item", itemNumber,
		"name", record.ProductName,
		"price", record.UnitPrice,
		"case", record.CaseQuantity,
		"nameSource", name.Source,
		"priceSource", price.Source,
		"caseSource", caseQty.Source,
	)

	return pl.terminal(itemNumber, StateFound, record)
}

func (pl *Pipeline) terminal(item string, state ItemState, record models.ProductRecord) models.ProductRecord {
	pl.logger.Debug("item terminal", "item", item, "state", state, "status", record.Status)
	return record
}
