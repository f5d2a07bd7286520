package main

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rudraroyaltypython/inventory-sys/internal/accounting"
	"github.com/rudraroyaltypython/inventory-sys/internal/app"
	"github.com/rudraroyaltypython/inventory-sys/internal/masterdata/categories"
	"github.com/rudraroyaltypython/inventory-sys/internal/masterdata/customers"
	"github.com/rudraroyaltypython/inventory-sys/internal/masterdata/suppliers"
	"github.com/rudraroyaltypython/inventory-sys/internal/platform/db"
	"github.com/rudraroyaltypython/inventory-sys/internal/purchases"
	"github.com/rudraroyaltypython/inventory-sys/internal/sales"
	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

var (
	//go:embed data/coa.yaml
	chartYAML []byte
	//go:embed data/products.csv
	productsCSV []byte
)

func main() {
	ctx := context.Background()
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{})
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	svc := app.BuildServices(cfg, pool, nil, nil, app.NewLogger(cfg))

	fmt.Println("→ Seeding chart of accounts...")
	chart, err := svc.Accounting.LoadChart(ctx, bytes.NewReader(chartYAML))
	if err != nil {
		log.Fatalf("seed accounts: %v", err)
	}
	fmt.Printf("  %d created, %d updated\n", chart.Created, chart.Updated)

	fmt.Println("→ Seeding master data...")
	for _, in := range []categories.CategoryInput{
		{Name: "Hardware", Description: "Fasteners and fixings"},
		{Name: "Electrical", Description: "Lighting and power"},
		{Name: "Paint", Description: "Interior and exterior paint"},
	} {
		if _, err := svc.MasterData.Categories.Create(ctx, in); err != nil && !errors.Is(err, shared.ErrDuplicate) {
			log.Fatalf("seed category %s: %v", in.Name, err)
		}
	}
	supplier, err := svc.MasterData.Suppliers.Create(ctx, suppliers.SupplierInput{
		Name: "Northwind Fasteners", Contact: "Ana Souza", Email: "orders@northwind.example", Phone: "+1 555 0100",
	})
	if err != nil {
		log.Fatalf("seed supplier: %v", err)
	}
	customer, err := svc.MasterData.Customers.Create(ctx, customers.CustomerInput{
		Name: "Harbor Builders", Contact: "Lee Park", Email: "ap@harbor.example",
		CreditLimit: decimal.NewFromInt(5000),
	})
	if err != nil {
		log.Fatalf("seed customer: %v", err)
	}

	fmt.Println("→ Importing product catalog...")
	imported, err := svc.Catalog.Import(ctx, bytes.NewReader(productsCSV))
	if err != nil {
		log.Fatalf("import catalog: %v", err)
	}
	fmt.Printf("  batch %s: %d imported, %d failed\n", imported.BatchID, imported.Imported, len(imported.Errors))

	bolt := productID(ctx, svc, "HW-001")
	bulb := productID(ctx, svc, "EL-001")

	fmt.Println("→ Seeding purchases and sales...")
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if _, err := svc.Purchases.Create(ctx, purchases.CreateInput{
		SupplierID:    supplier.ID,
		InvoiceNumber: "NW-1001",
		Date:          today.AddDate(0, 0, -7),
		Received:      true,
		Items: []purchases.ItemInput{
			{ProductID: bolt, Quantity: decimal.NewFromInt(500), UnitPrice: decimal.RequireFromString("0.20")},
			{ProductID: bulb, Quantity: decimal.NewFromInt(40), UnitPrice: decimal.RequireFromString("1.50")},
		},
	}); err != nil {
		log.Fatalf("seed purchase: %v", err)
	}
	if _, err := svc.Sales.Create(ctx, sales.SaleInput{
		CustomerID: &customer.ID,
		Date:       today.AddDate(0, 0, -2),
		Items: []sales.SaleItemInput{
			{ProductID: bolt, Quantity: decimal.NewFromInt(120), UnitPrice: decimal.RequireFromString("0.35")},
			{ProductID: bulb, Quantity: decimal.NewFromInt(6), UnitPrice: decimal.RequireFromString("2.40")},
		},
	}); err != nil {
		log.Fatalf("seed sale: %v", err)
	}
	invoice, err := svc.Invoices.Create(ctx, sales.InvoiceInput{
		CustomerID: &customer.ID,
		InvoiceNo:  fmt.Sprintf("INV-%s", today.Format("20060102")),
		Date:       today,
		Items: []sales.InvoiceItemInput{
			{ProductID: bolt, Qty: decimal.NewFromInt(120), Rate: decimal.RequireFromString("0.35")},
			{ProductID: bulb, Qty: decimal.NewFromInt(6), Rate: decimal.RequireFromString("2.40")},
		},
	})
	switch {
	case errors.Is(err, shared.ErrDuplicate):
		fmt.Println("  invoice for today already present")
	case err != nil:
		log.Fatalf("seed invoice: %v", err)
	default:
		if _, err := svc.Invoices.RecordPayment(ctx, invoice.ID, sales.PaymentInput{Amount: decimal.NewFromInt(20)}); err != nil {
			log.Fatalf("seed payment: %v", err)
		}
	}

	fmt.Println("→ Posting opening journal entry...")
	cash := accountID(ctx, svc, "1000")
	equity := accountID(ctx, svc, "3000")
	if _, err := svc.Accounting.PostEntry(ctx, accounting.PostEntryInput{
		Date:      today.AddDate(0, 0, -30),
		Narration: "Owner capital contribution",
		Lines: []accounting.LineInput{
			{AccountID: cash, Debit: decimal.NewFromInt(10000)},
			{AccountID: equity, Credit: decimal.NewFromInt(10000)},
		},
	}); err != nil {
		log.Fatalf("seed journal entry: %v", err)
	}

	fmt.Println("✓ Seed complete")
}

func productID(ctx context.Context, svc *app.Services, sku string) int64 {
	p, err := svc.MasterData.Products.GetBySKU(ctx, sku)
	if err != nil {
		log.Fatalf("lookup product %s: %v", sku, err)
	}
	return p.ID
}

func accountID(ctx context.Context, svc *app.Services, code string) int64 {
	accounts, _, err := svc.Accounting.ListAccounts(ctx, shared.ListFilters{Search: code}.Normalize())
	if err != nil {
		log.Fatalf("lookup account %s: %v", code, err)
	}
	for _, a := range accounts {
		if a.Code == code {
			return a.ID
		}
	}
	log.Fatalf("account %s not found", code)
	return 0
}
