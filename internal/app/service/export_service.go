package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/mkweon/barunpos-backend/internal/app/repository"
	"github.com/mkweon/barunpos-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

type ExportService interface {
	ExportInventoryTransactions(businessID uint, filter repository.TransactionFilter) (*bytes.Buffer, string, error)
}

type exportService struct {
	inventoryRepo repository.InventoryRepository
}

func NewExportService(inventoryRepo repository.InventoryRepository) ExportService {
	return &exportService{inventoryRepo: inventoryRepo}
}

// ExportInventoryTransactions renders the inventory ledger as an XLSX audit
// sheet. Returns the file content and a suggested filename.
func (s *exportService) ExportInventoryTransactions(businessID uint, filter repository.TransactionFilter) (*bytes.Buffer, string, error) {
	// Exports ignore pagination; auditors want the full filtered range
	filter.Page = 0
	filter.Limit = 0

	transactions, total, err := s.inventoryRepo.ListTransactions(businessID, filter)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Inventory Ledger"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "일시", "상품", "SKU", "유형", "수량", "증감", "메모", "담당자 ID"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, transaction := range transactions {
		values := []interface{}{
			transaction.ID,
			transaction.CreatedAt.Format("2006-01-02 15:04:05"),
			transaction.Product.Name,
			transaction.Product.SKU,
			string(transaction.Type),
			transaction.Quantity.String(),
			transaction.Type.Delta(transaction.Quantity).String(),
			transaction.Notes,
			transaction.CreatedByID,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.Error("Failed to render inventory export", err, map[string]interface{}{
			"business_id": businessID,
		})
		return nil, "", err
	}

	filename := fmt.Sprintf("inventory-ledger-%d-%s.xlsx", businessID, time.Now().Format("20060102-150405"))
	logger.Info("Inventory ledger exported", map[string]interface{}{
		"business_id": businessID,
		"rows":        total,
	})
	return buf, filename, nil
}
