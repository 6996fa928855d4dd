// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/documents/purchase"
	"stockbook/internal/domain/registers/stock"
	"stockbook/internal/domain/timeline"
	"stockbook/internal/infrastructure/storage/postgres"
	"stockbook/internal/infrastructure/storage/postgres/document_repo"
	"stockbook/internal/infrastructure/storage/postgres/register_repo"
	"stockbook/pkg/logger"
	"stockbook/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	seed, err := seedCatalogs(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed catalogs", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoOrder(ctx, pool, log, seed); err != nil {
			log.Fatalw("failed to seed demo order", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// seedIDs collects catalog IDs needed by the demo documents.
type seedIDs struct {
	warehouseID id.ID
	supplierID  id.ID
	productIDs  []id.ID
}

func seedCatalogs(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (*seedIDs, error) {
	out := &seedIDs{}

	// 1. Warehouses
	warehouses := []struct {
		name      string
		address   string
		wType     string
		isDefault bool
	}{
		{"Main Warehouse", "12 Dock Rd, Springfield", "main", true},
		{"Retail Store", "5 Market St, Springfield", "retail", false},
		{"Transit Warehouse", "Virtual", "transit", false},
	}

	for i, w := range warehouses {
		whID := id.New()
		code := fmt.Sprintf("WH-%03d", i+1)
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_warehouses (id, code, name, address, type, is_active, allow_negative_stock, is_default, version, deletion_mark)
			VALUES ($1, $2, $3, $4, $5, true, false, $6, 1, false)
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, whID, code, w.name, w.address, w.wType, w.isDefault)
		if err != nil {
			log.Warnw("failed to seed warehouse", "name", w.name, "error", err)
			continue
		}

		// If conflict, fetch the existing ID so documents can reference it.
		if commandTag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx, `
				SELECT id FROM cat_warehouses WHERE code = $1 AND deletion_mark = FALSE
			`, code).Scan(&whID)
			if err != nil {
				log.Warnw("failed to fetch existing warehouse", "code", code, "error", err)
				continue
			}
		}

		if w.isDefault {
			out.warehouseID = whID
		}
	}

	// 2. Suppliers
	suppliers := []struct {
		name      string
		legalForm string
		taxID     string
		terms     int
	}{
		{"Acme Supplies Ltd", "company", "77-0708389", 30},
		{"Northline Trading", "company", "77-1014067", 14},
		{"J. Smith Sole Trader", "individual", "77-2300012", 0},
	}

	for i, s := range suppliers {
		supID := id.New()
		code := fmt.Sprintf("SUP-%03d", i+1)
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_suppliers (id, code, name, legal_form, full_name, tax_id, payment_terms_days, version, deletion_mark)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 1, false)
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, supID, code, s.name, s.legalForm, s.name, s.taxID, s.terms)
		if err != nil {
			log.Warnw("failed to seed supplier", "name", s.name, "error", err)
			continue
		}

		if commandTag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx, `
				SELECT id FROM cat_suppliers WHERE code = $1 AND deletion_mark = FALSE
			`, code).Scan(&supID)
			if err != nil {
				log.Warnw("failed to fetch existing supplier", "code", code, "error", err)
				continue
			}
		}

		if id.IsNil(out.supplierID) {
			out.supplierID = supID
		}
	}

	// 3. Products
	products := []struct {
		name    string
		sku     string
		barcode string
		pType   string
		unit    string
		price   string
	}{
		{"Office Paper A4", "PAP-A4", "4600000000001", "goods", "pack", "5.40"},
		{"Ballpoint Pen Blue", "PEN-BLU", "4600000000002", "goods", "pcs", "0.35"},
		{"Desktop Stapler", "STP-001", "4600000000003", "goods", "pcs", "7.90"},
		{"Paper Clips 28mm (100)", "CLP-028", "4600000000004", "goods", "pack", "1.10"},
		{"Lever Arch Folder", "FOL-REG", "4600000000005", "goods", "pcs", "2.60"},
		{"Freight Delivery", "DELIVERY", "", "service", "pcs", "25.00"},
	}

	for i, p := range products {
		prodID := id.New()
		code := fmt.Sprintf("PRD-%05d", i+1)

		var barcode *string
		if p.barcode != "" {
			val := p.barcode
			barcode = &val
		}

		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_products (id, code, name, type, sku, barcode, unit, default_purchase_price, weight, volume, min_stock_level, version, deletion_mark)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, 0, 1, false)
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, prodID, code, p.name, p.pType, p.sku, barcode, p.unit, p.price)
		if err != nil {
			log.Warnw("failed to seed product", "name", p.name, "error", err)
			continue
		}

		if commandTag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx, `
				SELECT id FROM cat_products WHERE code = $1 AND deletion_mark = FALSE
			`, code).Scan(&prodID)
			if err != nil {
				log.Warnw("failed to fetch existing product", "code", code, "error", err)
				continue
			}
		}

		out.productIDs = append(out.productIDs, prodID)
	}

	log.Infow("catalogs seeded",
		"warehouses", len(warehouses),
		"suppliers", len(suppliers),
		"products", len(out.productIDs),
	)

	return out, nil
}

// seedDemoOrder creates one purchase order through the service stack so the
// demo data carries a document number, timeline events and stock movements
// exactly the way the API produces them.
func seedDemoOrder(ctx context.Context, pool *postgres.Pool, log *logger.Logger, seed *seedIDs) error {
	if id.IsNil(seed.supplierID) || id.IsNil(seed.warehouseID) || len(seed.productIDs) < 2 {
		log.Warn("catalog seed incomplete, skipping demo order")
		return nil
	}

	txManager := postgres.NewTxManager(pool)
	gen := numerator.New(pool.Unwrap())

	orderRepo := document_repo.NewPurchaseOrderRepo(txManager)
	paymentRepo := document_repo.NewPaymentRepo(txManager)
	returnRepo := document_repo.NewPurchaseReturnRepo(txManager)
	stockRepo := register_repo.NewStockRepo(txManager)

	eventStore, err := postgres.NewEventStore(txManager)
	if err != nil {
		return fmt.Errorf("create event store: %w", err)
	}

	timelineSvc := timeline.NewService(eventStore)
	stockSvc := stock.NewService(stockRepo)

	purchaseSvc := purchase.NewService(
		orderRepo,
		returnRepo,
		paymentRepo,
		timelineSvc,
		stockSvc,
		gen,
		txManager,
	)

	doc := purchase.NewPurchaseOrder(seed.supplierID, seed.warehouseID)
	doc.Comment = "Seeded demo order"
	doc.AddLine(seed.productIDs[0], types.NewQuantityFromFloat64(10), types.MustMoney("5.40"))
	doc.AddLine(seed.productIDs[1], types.NewQuantityFromFloat64(100), types.MustMoney("0.35"))

	if err := purchaseSvc.Create(ctx, doc); err != nil {
		return fmt.Errorf("create demo order: %w", err)
	}

	log.Infow("demo purchase order created",
		"order_id", doc.ID,
		"number", doc.Number,
		"total", doc.TotalAmount,
	)

	return nil
}
