// Package importer implements C3: the idempotent upsert of products,
// orders, and order lines from the upstream feed, auto-pack of vanished
// orders, and sync-log bookkeeping, per spec §4.2 steps 1-9.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"warehouse-pick-coordinator/internal/domains/order"
	"warehouse-pick-coordinator/internal/domains/product"
	"warehouse-pick-coordinator/internal/domains/settings"
	"warehouse-pick-coordinator/internal/domains/sync/synclog"
	"warehouse-pick-coordinator/internal/domains/sync/upstreamclient"
	"warehouse-pick-coordinator/internal/shared/apperr"
	db "warehouse-pick-coordinator/pkg/database"
)

// SyncResult is the outcome of one Sync() run, mirroring the SyncLog
// counters plus the per-item warnings absorbed along the way.
type SyncResult struct {
	SyncLogID int64
	Counters  synclog.Counters
	Warnings  []string
}

// Service is the C3 operation surface.
type Service interface {
	Sync(ctx context.Context) (*SyncResult, error)
}

type importer struct {
	pool         *pgxpool.Pool
	client       *upstreamclient.Client
	synclogRepo  synclog.Repository
	productRepo  product.Repository
	orderRepo    order.Repository
	settingsRepo settings.Repository
}

func NewImporter(
	pool *pgxpool.Pool,
	client *upstreamclient.Client,
	synclogRepo synclog.Repository,
	productRepo product.Repository,
	orderRepo order.Repository,
	settingsRepo settings.Repository,
) Service {
	return &importer{
		pool: pool, client: client, synclogRepo: synclogRepo,
		productRepo: productRepo, orderRepo: orderRepo, settingsRepo: settingsRepo,
	}
}

type flatProduct struct {
	fields product.UpsertFields
}

type flatOrder struct {
	externalID   string
	number       string
	customerName string
}

type flatLine struct {
	externalID string
	sku        string
	qty        int
}

// Sync runs the full import per spec §4.2. A SyncBusy guard rejects a
// second concurrent run; the SyncLog row for step 1 is committed
// immediately (outside any transaction) so concurrent observers see the
// in-flight sync before the rest of the work begins.
func (im *importer) Sync(ctx context.Context) (*SyncResult, error) {
	busy, err := im.synclogRepo.AnyInProgress(ctx)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("check sync busy: %w", err))
	}
	if busy {
		return nil, apperr.SyncBusy("a sync is already in progress")
	}

	cfg, err := im.settingsRepo.GetAPIConfig(ctx)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("load api config: %w", err))
	}

	logRow, err := im.synclogRepo.Start(ctx)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("start sync log: %w", err))
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	doc, err := im.client.Fetch(fetchCtx, cfg.APIBaseURL, cfg.APIKey)
	if err != nil {
		_ = im.synclogRepo.Fail(ctx, logRow.ID, err.Error())
		_ = im.settingsRepo.StampLastSync(ctx, time.Now(), string(synclog.StatusError))
		return nil, err
	}

	products, orders, lines, warnings := flatten(doc)

	result := &SyncResult{SyncLogID: logRow.ID, Warnings: warnings}
	result.Counters.OrdersFetched = len(orders)

	txErr := db.WithTransaction(ctx, im.pool, func(tx pgx.Tx) error {
		productRepo := im.productRepo.WithTx(tx)
		orderRepo := im.orderRepo.WithTx(tx)

		productIDBySKU := make(map[string]int64, len(products))
		for sku, fp := range products {
			p, created, err := productRepo.Upsert(ctx, fp.fields)
			if err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("product %s: %v", sku, err))
				continue
			}
			productIDBySKU[sku] = p.ID
			if created {
				result.Counters.ProductsCreated++
			} else {
				result.Counters.ProductsUpdated++
			}
		}

		seenExternalIDs := make([]string, 0, len(orders))
		orderIDByExternalID := make(map[string]int64, len(orders))
		for externalID, fo := range orders {
			seenExternalIDs = append(seenExternalIDs, externalID)
			o, created, err := orderRepo.UpsertByExternalID(ctx, externalID, fo.number, fo.customerName)
			if err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("order %s: %v", externalID, err))
				continue
			}
			orderIDByExternalID[externalID] = o.ID
			if created {
				result.Counters.OrdersCreated++
			} else {
				result.Counters.OrdersUpdated++
			}
		}

		touchedOrders := make(map[int64]bool)
		for _, fl := range lines {
			orderID, ok := orderIDByExternalID[fl.externalID]
			if !ok {
				continue
			}
			productID, ok := productIDBySKU[fl.sku]
			if !ok {
				continue
			}
			_, created, clamped, err := orderRepo.UpsertLine(ctx, orderID, productID, fl.qty)
			if err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("line %s/%s: %v", fl.externalID, fl.sku, err))
				continue
			}
			if clamped {
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"line %s/%s: upstream qty_ordered would drop below qty already accounted for; left unchanged", fl.externalID, fl.sku))
			}
			if created {
				result.Counters.ItemsCreated++
			} else {
				result.Counters.ItemsUpdated++
			}
			touchedOrders[orderID] = true
		}

		packedIDs, err := orderRepo.AutoPack(ctx, seenExternalIDs)
		if err != nil {
			return apperr.Internal(fmt.Errorf("auto-pack: %w", err))
		}
		for _, id := range packedIDs {
			log.Info().Int64("order_id", id).Msg("auto-packed order absent from upstream feed")
		}

		for orderID := range touchedOrders {
			if err := rederive(ctx, orderRepo, orderID); err != nil {
				return err
			}
		}
		return nil
	})

	if txErr != nil {
		_ = im.synclogRepo.Fail(ctx, logRow.ID, txErr.Error())
		_ = im.settingsRepo.StampLastSync(ctx, time.Now(), string(synclog.StatusError))
		return nil, txErr
	}

	if err := im.synclogRepo.Complete(ctx, logRow.ID, result.Counters); err != nil {
		log.Error().Err(err).Msg("failed to finalize sync log")
	}
	_ = im.settingsRepo.StampLastSync(ctx, time.Now(), string(synclog.StatusSuccess))

	log.Info().
		Int("products_created", result.Counters.ProductsCreated).
		Int("products_updated", result.Counters.ProductsUpdated).
		Int("orders_created", result.Counters.OrdersCreated).
		Int("orders_updated", result.Counters.OrdersUpdated).
		Int("items_created", result.Counters.ItemsCreated).
		Int("items_updated", result.Counters.ItemsUpdated).
		Int("warnings", len(result.Warnings)).
		Msg("sync completed")

	return result, nil
}

// flatten walks the four-level tree into the three upsert streams spec
// §4.2 step 3 describes: distinct products by SKU, distinct orders by
// external id, and order-lines keyed by (external_id, sku) with qty
// summed across duplicate appearances. Per-item decode problems are
// isolated into warnings rather than aborting the whole sync.
func flatten(doc *upstreamclient.Document) (map[string]flatProduct, map[string]flatOrder, []flatLine, []string) {
	products := make(map[string]flatProduct)
	orders := make(map[string]flatOrder)
	lineQty := make(map[string]int)
	var warnings []string

	for _, cat := range doc.Categories {
		for _, sub := range cat.Subcategories {
			for _, item := range sub.Items {
				if item.SKU == "" {
					warnings = append(warnings, fmt.Sprintf("dropped item with blank sku in %s/%s", cat.Name, sub.Name))
					continue
				}
				fields := product.UpsertFields{
					SKU:      item.SKU,
					Title:    item.Title,
					Category: cat.Name,
					Price:    item.Price,
				}
				if sub.Name != "" {
					name := sub.Name
					fields.Subcategory = &name
				}
				if item.ImageURL != "" {
					url := item.ImageURL
					fields.ImageURL = &url
				}
				if item.VendorName != "" {
					v := item.VendorName
					fields.VendorName = &v
				}
				if item.VariationDetails != "" {
					v := item.VariationDetails
					fields.VariationDetails = &v
				}
				products[item.SKU] = flatProduct{fields: fields}

				for _, leaf := range item.Orders {
					if leaf.ExternalOrderID == "" {
						warnings = append(warnings, fmt.Sprintf("dropped order leaf with blank external_order_id for sku %s", item.SKU))
						continue
					}
					if _, ok := orders[leaf.ExternalOrderID]; !ok {
						orders[leaf.ExternalOrderID] = flatOrder{
							externalID:   leaf.ExternalOrderID,
							number:       leaf.Number,
							customerName: leaf.CustomerName,
						}
					}
					key := leaf.ExternalOrderID + "\x00" + item.SKU
					lineQty[key] += leaf.Qty
				}
			}
		}
	}

	lines := make([]flatLine, 0, len(lineQty))
	for key, qty := range lineQty {
		var externalID, sku string
		for i := 0; i < len(key); i++ {
			if key[i] == 0 {
				externalID, sku = key[:i], key[i+1:]
				break
			}
		}
		lines = append(lines, flatLine{externalID: externalID, sku: sku, qty: qty})
	}

	return products, orders, lines, warnings
}

func rederive(ctx context.Context, repo order.Repository, orderID int64) error {
	o, err := repo.FindByID(ctx, orderID)
	if err != nil {
		return apperr.Internal(fmt.Errorf("load order for derivation: %w", err))
	}
	lines, err := repo.LinesByOrder(ctx, orderID)
	if err != nil {
		return apperr.Internal(fmt.Errorf("load lines for derivation: %w", err))
	}
	status, readyToPack := order.Derive(o.CurrentShipment, order.LinesInShipment(lines, o.CurrentShipment))
	if err := repo.ApplyDerivation(ctx, orderID, status, readyToPack); err != nil {
		return apperr.Internal(fmt.Errorf("apply derivation: %w", err))
	}
	return nil
}
