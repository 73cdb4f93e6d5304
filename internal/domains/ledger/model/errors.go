package model

import "errors"

// Repository-level sentinel errors - taxonomy cố định của ledger.
// Mọi failure đều trả về typed error cho caller, không bao giờ panic
// xuyên layer.
var (
	// Balance
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Task completion
	ErrQuotaExceeded    = errors.New("task quota exceeded")
	ErrTokenAlreadyUsed = errors.New("task token already used or expired")
	ErrGateNotFound     = errors.New("task gate not found")
	ErrGateInactive     = errors.New("task gate is inactive")

	// Giftcode redemption
	ErrCodeNotFound    = errors.New("gift code not found")
	ErrCodeExpired     = errors.New("gift code expired or inactive")
	ErrCodeAlreadyUsed = errors.New("gift code already used by this account")
	ErrCodeExhausted   = errors.New("gift code usage limit reached")

	// Account state
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountBanned   = errors.New("account is banned")

	// Concurrency / transport
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrStoreUnavailable       = errors.New("store unavailable")
)

// IsRetryable báo cho caller biết lỗi có nên retry với backoff không.
// Chỉ StoreUnavailable là transient; mọi lỗi khác là terminal cho attempt đó.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

type ErrorCode string

const (
	ErrCodeInsufficientBalance ErrorCode = "LEDGER_INSUFFICIENT_BALANCE" // 422
	ErrCodeQuotaExceeded       ErrorCode = "LEDGER_QUOTA_EXCEEDED"       // 422
	ErrCodeTokenUsed           ErrorCode = "LEDGER_TOKEN_USED"           // 409
	ErrCodeGiftNotFound        ErrorCode = "GIFTCODE_NOT_FOUND"          // 404
	ErrCodeGiftExpired         ErrorCode = "GIFTCODE_EXPIRED"            // 400
	ErrCodeGiftUsed            ErrorCode = "GIFTCODE_ALREADY_USED"       // 409
	ErrCodeGiftExhausted       ErrorCode = "GIFTCODE_EXHAUSTED"          // 409
	ErrCodeBanned              ErrorCode = "ACCOUNT_BANNED"              // 403
	ErrCodeConflict            ErrorCode = "LEDGER_CONFLICT"             // 409
)

// AppError mang message hiển thị cho user (tiếng Việt) kèm machine code
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Predefined user-facing errors
var (
	ErrMsgInsufficientBalance = &AppError{
		Code:       ErrCodeInsufficientBalance,
		Message:    "Số dư không đủ để thực hiện giao dịch",
		HTTPStatus: 422,
	}
	ErrMsgQuotaExceeded = &AppError{
		Code:       ErrCodeQuotaExceeded,
		Message:    "Bạn đã đạt giới hạn nhiệm vụ hôm nay",
		HTTPStatus: 422,
	}
	ErrMsgTokenUsed = &AppError{
		Code:       ErrCodeTokenUsed,
		Message:    "Mã nhiệm vụ đã được sử dụng hoặc hết hạn",
		HTTPStatus: 409,
	}
	ErrMsgGiftNotFound = &AppError{
		Code:       ErrCodeGiftNotFound,
		Message:    "Giftcode không tồn tại",
		HTTPStatus: 404,
	}
	ErrMsgGiftUsed = &AppError{
		Code:       ErrCodeGiftUsed,
		Message:    "Bạn đã nhập giftcode này rồi",
		HTTPStatus: 409,
	}
	ErrMsgGiftExhausted = &AppError{
		Code:       ErrCodeGiftExhausted,
		Message:    "Giftcode đã hết lượt sử dụng",
		HTTPStatus: 409,
	}
	ErrMsgBanned = &AppError{
		Code:       ErrCodeBanned,
		Message:    "Tài khoản của bạn đã bị khóa",
		HTTPStatus: 403,
	}
)
