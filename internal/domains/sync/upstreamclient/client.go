// Package upstreamclient fetches the upstream commerce feed: a four-level
// tree of categories, subcategories, items, and the orders each item
// appears on. No pagination is assumed; the document is consumed whole.
package upstreamclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"warehouse-pick-coordinator/internal/shared/apperr"
)

const defaultTimeout = 30 * time.Second

// OrderLeaf is one (item, order) appearance — the same external_order_id
// may recur across multiple items; the client never deduplicates, leaving
// fan-in to the importer.
type OrderLeaf struct {
	ExternalOrderID string          `json:"external_order_id"`
	Number          string          `json:"number"`
	CustomerName    string          `json:"customer_name"`
	Qty             int             `json:"qty"`
	CreatedAt       time.Time       `json:"created_at"`
	RawExtra        map[string]any  `json:"-"`
}

// Item carries product fields plus the orders that demand it.
type Item struct {
	SKU              string         `json:"sku"`
	Title            string         `json:"title"`
	ImageURL         string         `json:"image_url"`
	Price            *decimal.Decimal `json:"price"`
	VendorName       string         `json:"vendor_name"`
	VariationDetails string         `json:"variation_details"`
	Orders           []OrderLeaf    `json:"orders"`
	RawExtra         map[string]any `json:"-"`
}

type Subcategory struct {
	Name     string         `json:"name"`
	Items    []Item         `json:"items"`
	RawExtra map[string]any `json:"-"`
}

type Category struct {
	Name          string         `json:"name"`
	Subcategories []Subcategory  `json:"subcategories"`
	RawExtra      map[string]any `json:"-"`
}

// Document is the root of the upstream feed.
type Document struct {
	Categories []Category `json:"categories"`
}

// Client fetches and validates the upstream document.
type Client struct {
	httpClient *http.Client
}

func New() *Client {
	return &Client{httpClient: &http.Client{Timeout: defaultTimeout}}
}

// Fetch issues the bearer-authenticated GET and decodes the response into
// a Document. Transport failures map to UpstreamUnavailable; schema
// mismatches map to UpstreamMalformed. Unknown fields on categories,
// subcategories, and items are logged at debug and dropped — the catch-all
// DTO shape per spec §9; unknown fields on order leaves and at the document
// root are dropped without a log line. An item with a blank sku is passed
// through unchanged so the importer can record it as a warning.
func (c *Client) Fetch(ctx context.Context, baseURL, apiKey string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, apperr.UpstreamUnavailable(fmt.Errorf("build request: %w", err))
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.UpstreamUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.UpstreamUnavailable(fmt.Errorf("upstream returned status %d", resp.StatusCode))
	}

	var raw struct {
		Categories []map[string]any `json:"categories"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&raw); err != nil {
		return nil, apperr.UpstreamMalformed(err)
	}

	doc := &Document{}
	for _, catRaw := range raw.Categories {
		cat, err := decodeCategory(catRaw)
		if err != nil {
			return nil, apperr.UpstreamMalformed(err)
		}
		doc.Categories = append(doc.Categories, cat)
	}
	return doc, nil
}

func decodeCategory(raw map[string]any) (Category, error) {
	var cat Category
	b, err := json.Marshal(raw)
	if err != nil {
		return cat, err
	}
	var shallow struct {
		Name          string           `json:"name"`
		Subcategories []map[string]any `json:"subcategories"`
	}
	if err := json.Unmarshal(b, &shallow); err != nil {
		return cat, err
	}
	cat.Name = shallow.Name
	cat.RawExtra = dropKnownKeys(raw, "name", "subcategories")
	logUnknown("category", cat.Name, cat.RawExtra)

	for _, subRaw := range shallow.Subcategories {
		sub, err := decodeSubcategory(subRaw)
		if err != nil {
			return cat, err
		}
		cat.Subcategories = append(cat.Subcategories, sub)
	}
	return cat, nil
}

func decodeSubcategory(raw map[string]any) (Subcategory, error) {
	var sub Subcategory
	b, err := json.Marshal(raw)
	if err != nil {
		return sub, err
	}
	var shallow struct {
		Name  string           `json:"name"`
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(b, &shallow); err != nil {
		return sub, err
	}
	sub.Name = shallow.Name
	sub.RawExtra = dropKnownKeys(raw, "name", "items")
	logUnknown("subcategory", sub.Name, sub.RawExtra)

	for _, itemRaw := range shallow.Items {
		item, err := decodeItem(itemRaw)
		if err != nil {
			return sub, err
		}
		sub.Items = append(sub.Items, item)
	}
	return sub, nil
}

func decodeItem(raw map[string]any) (Item, error) {
	var item Item
	b, err := json.Marshal(raw)
	if err != nil {
		return item, err
	}
	if err := json.Unmarshal(b, &item); err != nil {
		return item, err
	}
	item.RawExtra = dropKnownKeys(raw, "sku", "title", "image_url", "price", "vendor_name", "variation_details", "orders")
	logUnknown("item", item.SKU, item.RawExtra)
	return item, nil
}

func dropKnownKeys(raw map[string]any, known ...string) map[string]any {
	set := make(map[string]bool, len(known))
	for _, k := range known {
		set[k] = true
	}
	extra := make(map[string]any)
	for k, v := range raw {
		if !set[k] {
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}

func logUnknown(level, id string, extra map[string]any) {
	if len(extra) == 0 {
		return
	}
	log.Debug().Str("node", level).Str("id", id).Interface("unknown_fields", extra).Msg("dropping unknown upstream fields")
}
