// Package catalog is the closed, read-only list of personas and features the
// journal knows about: their prices, display metadata, and, for personas, the
// instruction handed to the summarizer.
//
// Unknown identifiers are always rejected; nothing is priced or summarized by
// default.
package catalog

import (
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/common"
)

// FeatureID identifies a persona or feature.
type FeatureID string

const (
	Stoic          FeatureID = "stoic"
	Zen            FeatureID = "zen"
	Shadow         FeatureID = "shadow"
	OfflineJournal FeatureID = "offline-journal"

	// Lifetime entitles every other identifier at once.
	Lifetime FeatureID = "lifetime"
)

// DefaultPersona is free and never needs an entitlement.
const DefaultPersona = Stoic

// DefaultCurrency is used for every price in the default catalog.
const DefaultCurrency = "usd"

// Kind tells personas, plain features and the wildcard apart.
type Kind string

const (
	KindPersona  Kind = "persona"
	KindFeature  Kind = "feature"
	KindWildcard Kind = "wildcard"
)

// Price is what a purchase of a feature costs.
type Price struct {
	AmountMinorUnits int64
	Currency         string
	DisplayName      string
	Description      string
}

// Product is a catalog item.
type Product struct {
	ID    FeatureID
	Kind  Kind
	Price Price
	// Instruction is set for personas only.
	Instruction string
}

// Free reports whether the product costs nothing.
func (p Product) Free() bool {
	return p.Price.AmountMinorUnits == 0
}

// Catalog is immutable once built and safe for concurrent use.
type Catalog struct {
	order    []FeatureID
	products map[FeatureID]Product
}

// New builds a catalog from products. Duplicate or empty identifiers, and
// personas without an instruction, are rejected.
func New(products ...Product) (*Catalog, error) {
	c := &Catalog{
		order:    make([]FeatureID, 0, len(products)),
		products: make(map[FeatureID]Product, len(products)),
	}

	for _, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog: empty feature id")
		}
		if _, dup := c.products[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate feature id %q", p.ID)
		}
		if p.Kind == KindPersona && p.Instruction == "" {
			return nil, fmt.Errorf("catalog: persona %q has no instruction", p.ID)
		}
		c.order = append(c.order, p.ID)
		c.products[p.ID] = p
	}

	return c, nil
}

// Parse validates a raw identifier against the catalog.
func (c *Catalog) Parse(raw string) (FeatureID, error) {
	id := FeatureID(raw)
	if _, ok := c.products[id]; !ok {
		return "", fmt.Errorf("%w: %q", common.ErrUnknownFeature, raw)
	}
	return id, nil
}

// Product returns the catalog item for id.
func (c *Catalog) Product(id FeatureID) (Product, error) {
	p, ok := c.products[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %q", common.ErrUnknownFeature, id)
	}
	return p, nil
}

// PriceOf returns the price of id or ErrUnknownFeature.
func (c *Catalog) PriceOf(id FeatureID) (Price, error) {
	p, err := c.Product(id)
	if err != nil {
		return Price{}, err
	}
	return p.Price, nil
}

// IsWildcard is true only for the lifetime identifier.
func (c *Catalog) IsWildcard(id FeatureID) bool {
	return id == Lifetime
}

// Purchasable reports whether id exists and costs something.
func (c *Catalog) Purchasable(id FeatureID) bool {
	p, ok := c.products[id]
	return ok && !p.Free()
}

// Instruction returns the summarizer instruction for a persona. Identifiers
// that are not personas fail with ErrUnknownPersona.
func (c *Catalog) Instruction(id FeatureID) (string, error) {
	p, ok := c.products[id]
	if !ok || p.Kind != KindPersona {
		return "", fmt.Errorf("%w: %q", common.ErrUnknownPersona, id)
	}
	return p.Instruction, nil
}

// Products lists the catalog in declaration order.
func (c *Catalog) Products() []Product {
	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.products[id])
	}
	return out
}

// IDs lists every identifier except the wildcard, in declaration order.
func (c *Catalog) IDs() []FeatureID {
	out := make([]FeatureID, 0, len(c.order))
	for _, id := range c.order {
		if c.IsWildcard(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
