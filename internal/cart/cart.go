// Package cart holds the client-side cart: an ordered collection of line
// items keyed by product id, persisted in full on every mutation. There is
// no server-side cart; the local blob is the only durability mechanism.
package cart

import (
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"storefront-client/internal/model"
	"storefront-client/internal/store"
)

// Catalog resolves products for rehydration enrichment.
type Catalog interface {
	Lookup(id int64) (model.Product, bool)
}

type Store struct {
	db  *store.Store
	log *slog.Logger

	mu    sync.Mutex
	lines []model.CartLine
}

func New(db *store.Store, log *slog.Logger) *Store {
	return &Store{db: db, log: log}
}

// Load rehydrates the persisted cart and enriches lines missing display
// fields from the reference catalog. Enrichment is one way: it backfills
// empty fields and never removes stored ones. Lines with no catalog match
// keep their stored minimal shape.
func (c *Store) Load(cat Catalog) error {
	var lines []model.CartLine
	if _, err := c.db.Get(store.KeyCart, &lines); err != nil {
		return err
	}

	enriched := false
	for i := range lines {
		p, ok := cat.Lookup(lines[i].ProductID)
		if !ok {
			continue
		}
		if lines[i].NameEn == "" && p.NameEn != "" {
			lines[i].NameEn = p.NameEn
			enriched = true
		}
		if lines[i].Name == "" && p.Name != "" {
			lines[i].Name = p.Name
			enriched = true
		}
		if lines[i].CategoryID == 0 && p.CategoryID != 0 {
			lines[i].CategoryID = p.CategoryID
			enriched = true
		}
		if lines[i].Image == "" && p.Image != "" {
			lines[i].Image = p.Image
			enriched = true
		}
	}

	c.mu.Lock()
	c.lines = lines
	c.mu.Unlock()

	if enriched {
		return c.persist()
	}
	return nil
}

// Add inserts a line for the product, or increments the quantity of the
// existing line for the same product id. Quantities below one count as one.
func (c *Store) Add(p model.Product, size *model.PackSize, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	unitPrice := p.Price
	sizeLabel := ""
	var packSizeID int64
	if size != nil {
		unitPrice = size.Price
		sizeLabel = size.Label
		packSizeID = size.ID
	}

	c.mu.Lock()
	merged := false
	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		c.lines = append(c.lines, model.CartLine{
			ProductID:  p.ID,
			Name:       p.Name,
			NameEn:     p.NameEn,
			CategoryID: p.CategoryID,
			UnitPrice:  unitPrice,
			Quantity:   quantity,
			Image:      p.Image,
			SizeLabel:  sizeLabel,
			PackSizeID: packSizeID,
		})
	}
	c.mu.Unlock()

	return c.persist()
}

func (c *Store) Remove(productID int64) error {
	c.mu.Lock()
	kept := c.lines[:0]
	for _, l := range c.lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	c.lines = kept
	c.mu.Unlock()

	return c.persist()
}

// UpdateQuantity sets the line's quantity. Zero or negative removes the
// line; a line is never retained at quantity zero.
func (c *Store) UpdateQuantity(productID int64, quantity int) error {
	if quantity <= 0 {
		return c.Remove(productID)
	}

	c.mu.Lock()
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity = quantity
			break
		}
	}
	c.mu.Unlock()

	return c.persist()
}

func (c *Store) Clear() error {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()

	return c.persist()
}

// Count is the sum of line quantities.
func (c *Store) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

// Total is recomputed from the lines on every call, never cached.
func (c *Store) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Store) Lines() []model.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Store) persist() error {
	c.mu.Lock()
	lines := make([]model.CartLine, len(c.lines))
	copy(lines, c.lines)
	c.mu.Unlock()

	if err := c.db.Put(store.KeyCart, lines); err != nil {
		c.log.Error("persist cart", "err", err)
		return err
	}
	return nil
}
