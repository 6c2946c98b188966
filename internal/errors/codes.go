package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// POS 프론트엔드에서 이 코드를 기반으로 메시지를 매핑함

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // 로그인 필요
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // 잘못된 이메일/비밀번호
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // 토큰 만료
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // 잘못된 토큰
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // 토큰 폐기됨
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // 이메일 중복

	// ==================== 인가/권한 (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"      // 접근 권한 없음
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND" // 권한 정보 없음
	AuthzManagerOnly  = "AUTHZ_MANAGER_ONLY"   // 관리자/매니저만 가능

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // 잘못된 입력
	ValidationInvalidID     = "VALIDATION_INVALID_ID"     // 잘못된 ID
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"  // 범위 초과
	ValidationRequired      = "VALIDATION_REQUIRED"       // 필수 항목

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"       // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"  // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"        // 충돌

	// ==================== 판매 (SALE_) ====================
	SaleNotFound          = "SALE_NOT_FOUND"           // 판매 없음
	SaleEmptyCart         = "SALE_EMPTY_CART"          // 빈 장바구니
	SaleInvalidType       = "SALE_INVALID_TYPE"        // 잘못된 판매 유형
	SaleInvalidTransition = "SALE_INVALID_TRANSITION"  // 허용되지 않는 상태 전이
	SaleAlreadyFinalized  = "SALE_ALREADY_FINALIZED"   // 이미 완료/취소된 판매
	SaleReceiptConflict   = "SALE_RECEIPT_CONFLICT"    // 영수증 번호 중복

	// ==================== 재고 (STOCK_) ====================
	StockRecordNotFound    = "STOCK_RECORD_NOT_FOUND"    // 재고 기록 없음
	StockInvalidQuantity   = "STOCK_INVALID_QUANTITY"    // 잘못된 수량
	StockInvalidTxType     = "STOCK_INVALID_TX_TYPE"     // 잘못된 재고 이동 유형
	StockProductNotFound   = "STOCK_PRODUCT_NOT_FOUND"   // 상품 없음
	StockProductInactive   = "STOCK_PRODUCT_INACTIVE"    // 판매 중지된 상품

	// ==================== 시재/금전함 (REGISTER_) ====================
	RegisterNotFound      = "REGISTER_NOT_FOUND"       // 세션 없음
	RegisterAlreadyOpen   = "REGISTER_ALREADY_OPEN"    // 이미 열린 세션 존재
	RegisterAlreadyClosed = "REGISTER_ALREADY_CLOSED"  // 이미 마감된 세션
	RegisterNotOpen       = "REGISTER_NOT_OPEN"        // 열린 세션 없음

	// ==================== 테이블 (TABLE_) ====================
	TableNotFound      = "TABLE_NOT_FOUND"       // 테이블 없음
	TableNotAvailable  = "TABLE_NOT_AVAILABLE"   // 사용 중인 테이블
	TableInvalidStatus = "TABLE_INVALID_STATUS"  // 잘못된 테이블 상태

	// ==================== 업로드 (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // 잘못된 파일 형식
	UploadNotConfigured   = "UPLOAD_NOT_CONFIGURED"    // 스토리지 미설정

	// ==================== 서버 (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR" // 서버 오류
	InternalDBError     = "INTERNAL_DB_ERROR"     // DB 오류
)
