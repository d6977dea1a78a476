// Package catalog holds the reference product catalog used to enrich
// persisted cart lines and to resolve products for cart/wishlist commands.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"storefront-client/internal/model"
)

type Catalog struct {
	products []model.Product
	byID     map[int64]model.Product
}

// Load reads a JSON array of products. A missing file yields an empty
// catalog rather than an error; enrichment is best effort.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FromProducts(nil), nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	return FromProducts(products), nil
}

func FromProducts(products []model.Product) *Catalog {
	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &Catalog{products: products, byID: byID}
}

func (c *Catalog) Lookup(id int64) (model.Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

func (c *Catalog) All() []model.Product {
	return c.products
}

func (c *Catalog) Len() int {
	return len(c.products)
}
