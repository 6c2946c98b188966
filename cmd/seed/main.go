package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/mkweon/barunpos-backend/config"
	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/internal/app/repository"
	"github.com/mkweon/barunpos-backend/internal/app/service"
	"github.com/mkweon/barunpos-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// productRow is one parsed catalog line plus its opening stock count.
type productRow struct {
	product  model.Product
	quantity decimal.Decimal
}

func main() {
	// 명령줄 인자 확인
	if len(os.Args) < 3 {
		log.Fatal("Usage: go run cmd/seed/main.go <business_id> <xlsx_file_path>")
	}

	businessID, err := strconv.ParseUint(os.Args[1], 10, 32)
	if err != nil {
		log.Fatal("Invalid business ID:", err)
	}
	filePath := os.Args[2]

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// DB 연결
	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	// Repository 생성
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	inventoryRepo := repository.NewInventoryRepository(db.GetDB())
	inventoryService := service.NewInventoryService(inventoryRepo, productRepo, db.GetDB())

	// Opening stock rows need an author; use the first admin of the business
	actor, err := findImportActor(userRepo, uint(businessID))
	if err != nil {
		log.Fatal("Failed to find an admin/manager for the business:", err)
	}

	// XLSX 파일 읽기
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := readProductsFromXLSX(filePath, uint(businessID))
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(rows))

	// 사용자 확인
	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	// 배치로 저장
	batchSize := 500
	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.product)
	}
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := productRepo.BulkCreate(products, batchSize); err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	// 초기 재고 입고 처리
	stocked := 0
	for _, row := range rows {
		if row.quantity.LessThanOrEqual(decimal.Zero) {
			continue
		}

		product, err := productRepo.FindBySKU(uint(businessID), row.product.SKU)
		if err != nil {
			log.Printf("Skipping opening stock for %s: %v", row.product.SKU, err)
			continue
		}

		_, err = inventoryService.RecordTransaction(
			uint(businessID),
			actor.ID,
			product.ID,
			model.TransactionReceiving,
			row.quantity,
			"catalog import opening stock",
		)
		if err != nil {
			log.Printf("Failed to record opening stock for %s: %v", row.product.SKU, err)
			continue
		}
		stocked++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d, opening stock rows: %d\n", len(rows), stocked)
}

func findImportActor(userRepo repository.UserRepository, businessID uint) (*model.User, error) {
	users, err := userRepo.FindByBusinessID(businessID)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Role.CanManageSessions() {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("no admin or manager found for business %d", businessID)
}

func readProductsFromXLSX(filePath string, businessID uint) ([]productRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	// 첫 번째 시트 이름 가져오기
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var result []productRow
	seenSKUs := make(map[string]bool) // 중복 제거용
	skippedCount := 0

	// 기대 컬럼: SKU, 상품명, 설명, 판매가, 매입가, 세율(%), 세금유형, 초기수량
	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 4 {
			skippedCount++
			continue
		}

		sku := strings.TrimSpace(row[0])
		name := strings.TrimSpace(row[1])
		if sku == "" || name == "" || seenSKUs[sku] {
			skippedCount++
			continue
		}
		seenSKUs[sku] = true

		sellingPrice, err := decimal.NewFromString(strings.TrimSpace(row[3]))
		if err != nil {
			log.Printf("Row %d: invalid selling price %q, skipping", i+1, row[3])
			skippedCount++
			continue
		}

		product := model.Product{
			BusinessID:   businessID,
			SKU:          sku,
			Name:         name,
			SellingPrice: sellingPrice,
			TaxType:      model.TaxNone,
			IsActive:     true,
		}

		if len(row) > 2 {
			product.Description = strings.TrimSpace(row[2])
		}
		if len(row) > 4 {
			if v, err := decimal.NewFromString(strings.TrimSpace(row[4])); err == nil {
				product.PurchasePrice = v
			}
		}
		if len(row) > 5 {
			if v, err := decimal.NewFromString(strings.TrimSpace(row[5])); err == nil {
				product.TaxRate = v
			}
		}
		if len(row) > 6 {
			switch model.TaxType(strings.TrimSpace(row[6])) {
			case model.TaxVAT:
				product.TaxType = model.TaxVAT
			case model.TaxGST:
				product.TaxType = model.TaxGST
			case model.TaxSalesTax:
				product.TaxType = model.TaxSalesTax
			}
		}

		quantity := decimal.Zero
		if len(row) > 7 {
			if v, err := decimal.NewFromString(strings.TrimSpace(row[7])); err == nil {
				quantity = v
			}
		}

		result = append(result, productRow{product: product, quantity: quantity})
	}

	if skippedCount > 0 {
		fmt.Printf("Skipped %d rows\n", skippedCount)
	}

	return result, nil
}
