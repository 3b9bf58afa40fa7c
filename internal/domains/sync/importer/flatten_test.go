package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"warehouse-pick-coordinator/internal/domains/sync/upstreamclient"
)

func TestFlatten_DedupesOrdersAndSumsLineQty(t *testing.T) {
	doc := &upstreamclient.Document{
		Categories: []upstreamclient.Category{
			{
				Name: "Toys",
				Subcategories: []upstreamclient.Subcategory{
					{
						Name: "Blocks",
						Items: []upstreamclient.Item{
							{
								SKU:   "SKU-1",
								Title: "Lego Set",
								Orders: []upstreamclient.OrderLeaf{
									{ExternalOrderID: "EXT-1", Number: "ORD-1", CustomerName: "Jane", Qty: 2},
									{ExternalOrderID: "EXT-1", Number: "ORD-1", CustomerName: "Jane", Qty: 3},
								},
							},
						},
					},
				},
			},
		},
	}

	products, orders, lines, warnings := flatten(doc)

	assert.Empty(t, warnings)
	assert.Len(t, products, 1)
	assert.Contains(t, products, "SKU-1")
	assert.Equal(t, "Toys", products["SKU-1"].fields.Category)

	assert.Len(t, orders, 1)
	assert.Contains(t, orders, "EXT-1")
	assert.Equal(t, "ORD-1", orders["EXT-1"].number)

	assert.Len(t, lines, 1)
	assert.Equal(t, "EXT-1", lines[0].externalID)
	assert.Equal(t, "SKU-1", lines[0].sku)
	assert.Equal(t, 5, lines[0].qty)
}

func TestFlatten_DropsBlankSKUAsWarning(t *testing.T) {
	doc := &upstreamclient.Document{
		Categories: []upstreamclient.Category{
			{
				Name: "Toys",
				Subcategories: []upstreamclient.Subcategory{
					{
						Name: "Blocks",
						Items: []upstreamclient.Item{
							{SKU: "", Title: "Unnamed"},
						},
					},
				},
			},
		},
	}

	products, orders, lines, warnings := flatten(doc)

	assert.Empty(t, products)
	assert.Empty(t, orders)
	assert.Empty(t, lines)
	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "blank sku")
}

func TestFlatten_DropsBlankExternalOrderIDAsWarning(t *testing.T) {
	doc := &upstreamclient.Document{
		Categories: []upstreamclient.Category{
			{
				Name: "Toys",
				Subcategories: []upstreamclient.Subcategory{
					{
						Name: "Blocks",
						Items: []upstreamclient.Item{
							{
								SKU:   "SKU-1",
								Title: "Lego Set",
								Orders: []upstreamclient.OrderLeaf{
									{ExternalOrderID: "", Qty: 1},
								},
							},
						},
					},
				},
			},
		},
	}

	products, orders, lines, warnings := flatten(doc)

	assert.Len(t, products, 1)
	assert.Empty(t, orders)
	assert.Empty(t, lines)
	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "blank external_order_id")
}

func TestFlatten_DistinctSKUsOnSameOrderProduceSeparateLines(t *testing.T) {
	doc := &upstreamclient.Document{
		Categories: []upstreamclient.Category{
			{
				Name: "Toys",
				Subcategories: []upstreamclient.Subcategory{
					{
						Name: "Blocks",
						Items: []upstreamclient.Item{
							{
								SKU:    "SKU-1",
								Orders: []upstreamclient.OrderLeaf{{ExternalOrderID: "EXT-1", Qty: 1}},
							},
							{
								SKU:    "SKU-2",
								Orders: []upstreamclient.OrderLeaf{{ExternalOrderID: "EXT-1", Qty: 4}},
							},
						},
					},
				},
			},
		},
	}

	_, orders, lines, warnings := flatten(doc)

	assert.Empty(t, warnings)
	assert.Len(t, orders, 1)
	assert.Len(t, lines, 2)

	bySKU := make(map[string]int)
	for _, l := range lines {
		bySKU[l.sku] = l.qty
	}
	assert.Equal(t, 1, bySKU["SKU-1"])
	assert.Equal(t, 4, bySKU["SKU-2"])
}
