package products

import "github.com/shopspring/decimal"

type ProductInput struct {
	SKU        string          `json:"sku" validate:"required,max=64"`
	Name       string          `json:"name" validate:"required,max=200"`
	CategoryID *int64          `json:"category_id"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TaxPercent decimal.Decimal `json:"tax_percent"`
	Stock      decimal.Decimal `json:"stock"`
}

func (in ProductInput) toProduct() Product {
	return Product{
		SKU:        in.SKU,
		Name:       in.Name,
		CategoryID: in.CategoryID,
		UnitPrice:  in.UnitPrice,
		TaxPercent: in.TaxPercent,
		Stock:      in.Stock,
	}
}
