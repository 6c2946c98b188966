package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo 에러 정보 구조
type ErrorInfo struct {
	Code    string // 에러 코드 (codes.go 참조)
	Message string // 사용자 친화적 메시지
}

// ParseError 에러를 파싱하여 사용자 친화적인 메시지와 코드로 변환
// 보안상 민감한 정보는 숨기되, 사용자가 문제를 해결할 수 있는 정보 제공
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "서버 오류가 발생했습니다",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. GORM 기본 에러
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 2. PostgreSQL 에러 파싱

	// 2-1. Unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// 2-2. Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStr)
	}

	// 2-3. Not null constraint violation (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return parseNotNullError(errStr)
	}

	// 3. 네트워크/연결 에러
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalDBError,
			Message: "데이터베이스 연결에 실패했습니다. 잠시 후 다시 시도해주세요",
		}
	}

	// 4. 기본 내부 서버 오류
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

// parseDuplicateKeyError Unique constraint 위반 에러 파싱
func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	// 영수증 번호 중복
	if strings.Contains(errLower, "receipt_number") || strings.Contains(errLower, "idx_sales_receipt") {
		return ErrorInfo{
			Code:    SaleReceiptConflict,
			Message: "영수증 번호가 중복되었습니다. 다시 시도해주세요",
		}
	}

	// 상품 SKU 중복
	if strings.Contains(errLower, "sku") || strings.Contains(errLower, "idx_products_business_sku") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "이미 등록된 상품 코드입니다",
		}
	}

	// 재고 기록 중복 (business + product)
	if strings.Contains(errLower, "idx_inventory_records_business_product") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "이미 재고 기록이 존재하는 상품입니다",
		}
	}

	// 이메일 중복
	if strings.Contains(errLower, "email") || strings.Contains(errLower, "idx_users_email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "이미 사용 중인 이메일입니다",
		}
	}

	// 테이블 번호 중복
	if strings.Contains(errLower, "idx_tables_business_number") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "이미 등록된 테이블 번호입니다",
		}
	}

	// Primary key 중복
	if strings.Contains(errLower, "pkey") || strings.Contains(errLower, "primary key") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "이미 존재하는 데이터입니다. 다시 시도해주세요",
		}
	}

	// 기본 중복 메시지
	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "이미 존재하는 데이터입니다",
	}
}

// parseForeignKeyError Foreign key constraint 위반 에러 파싱
func parseForeignKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	// 삭제 시 참조 중인 데이터가 있는 경우
	if strings.Contains(errLower, "still referenced") || strings.Contains(errLower, "is still referenced by") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "연결된 데이터가 있어 삭제할 수 없습니다",
		}
	}

	// 존재하지 않는 참조 데이터
	if strings.Contains(errLower, "product_id") || strings.Contains(errLower, "fk_products") {
		return ErrorInfo{
			Code:    StockProductNotFound,
			Message: "존재하지 않는 상품입니다",
		}
	}
	if strings.Contains(errLower, "customer_id") || strings.Contains(errLower, "fk_customers") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "존재하지 않는 고객입니다",
		}
	}
	if strings.Contains(errLower, "table_id") || strings.Contains(errLower, "fk_restaurant_tables") {
		return ErrorInfo{
			Code:    TableNotFound,
			Message: "존재하지 않는 테이블입니다",
		}
	}
	if strings.Contains(errLower, "user_id") || strings.Contains(errLower, "fk_users") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "존재하지 않는 사용자입니다",
		}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "참조하는 데이터를 찾을 수 없습니다",
	}
}

// parseNotNullError Not null constraint 위반 에러 파싱
func parseNotNullError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "email") {
		return ErrorInfo{Code: ValidationRequired, Message: "이메일은 필수 항목입니다"}
	}
	if strings.Contains(errLower, "password") {
		return ErrorInfo{Code: ValidationRequired, Message: "비밀번호는 필수 항목입니다"}
	}
	if strings.Contains(errLower, "name") {
		return ErrorInfo{Code: ValidationRequired, Message: "이름은 필수 항목입니다"}
	}
	if strings.Contains(errLower, "quantity") {
		return ErrorInfo{Code: ValidationRequired, Message: "수량은 필수 항목입니다"}
	}

	return ErrorInfo{Code: ValidationRequired, Message: "필수 항목이 누락되었습니다"}
}

func getNotFoundMessage(context string) string {
	switch context {
	case "sale":
		return "판매 내역을 찾을 수 없습니다"
	case "product":
		return "상품을 찾을 수 없습니다"
	case "inventory":
		return "재고 기록을 찾을 수 없습니다"
	case "register":
		return "시재 세션을 찾을 수 없습니다"
	case "table":
		return "테이블을 찾을 수 없습니다"
	case "customer":
		return "고객을 찾을 수 없습니다"
	case "user":
		return "사용자를 찾을 수 없습니다"
	default:
		return "요청한 데이터를 찾을 수 없습니다"
	}
}

func getDefaultErrorMessage(context string) string {
	switch context {
	case "sale":
		return "판매 처리 중 오류가 발생했습니다"
	case "inventory":
		return "재고 처리 중 오류가 발생했습니다"
	case "register":
		return "시재 처리 중 오류가 발생했습니다"
	default:
		return "서버 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	}
}
