package inventory

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/rudraroyaltypython/inventory-sys/internal/masterdata/products"
)

// ProductLister returns the full catalog in a stable order.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]products.Product, error)
}

// WriteCatalog renders products in the feed format accepted by Importer.
func WriteCatalog(w io.Writer, items []products.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, p := range items {
		if err := cw.Write([]string{
			p.SKU,
			p.Name,
			p.CategoryName,
			p.UnitPrice.String(),
			p.TaxPercent.String(),
			p.Stock.String(),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Export loads every product and writes the feed.
func Export(ctx context.Context, lister ProductLister, w io.Writer) error {
	items, err := lister.ListProducts(ctx)
	if err != nil {
		return err
	}
	return WriteCatalog(w, items)
}
