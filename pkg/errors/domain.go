package errors

import "net/http"

// Invoice errors
var (
	ErrInvoiceNotFound = &Error{
		Code:       "INVOICE_NOT_FOUND",
		Message:    "Invoice not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrDuplicateExternalID = &Error{
		Code:       "DUPLICATE_EXTERNAL_ID",
		Message:    "An invoice with this external_id already exists for this tenant",
		HTTPStatus: http.StatusConflict,
	}

	ErrInvoiceImmutable = &Error{
		Code:       "INVOICE_IMMUTABLE",
		Message:    "Invoice is immutable once payment has been initiated",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidStatusTransition = &Error{
		Code:       "INVALID_STATUS_TRANSITION",
		Message:    "Requested invoice status transition is not allowed",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrGatewayUnsupportedCurrency = &Error{
		Code:       "GATEWAY_UNSUPPORTED_CURRENCY",
		Message:    "Gateway does not support the requested currency",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrUnknownGateway = &Error{
		Code:       "UNKNOWN_GATEWAY",
		Message:    "Unknown payment gateway",
		HTTPStatus: http.StatusBadRequest,
	}
)

// Installment errors
var (
	ErrInstallmentSumMismatch = &Error{
		Code:       "INSTALLMENT_SUM_MISMATCH",
		Message:    "Installment amounts do not sum to the expected total",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInstallmentNotUnpaid = &Error{
		Code:       "INSTALLMENT_NOT_UNPAID",
		Message:    "Installment is not in an adjustable/payable state",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrSequentialPaymentViolation = &Error{
		Code:       "SEQUENTIAL_PAYMENT_VIOLATION",
		Message:    "Installments must be paid in order",
		HTTPStatus: http.StatusBadRequest,
	}
)

// Transaction / webhook errors
var (
	ErrDuplicateGatewayRef = &Error{
		Code:       "DUPLICATE_GATEWAY_REF",
		Message:    "A transaction with this gateway_transaction_ref already exists",
		HTTPStatus: http.StatusOK,
	}

	ErrWebhookSignatureInvalid = &Error{
		Code:       "WEBHOOK_SIGNATURE_INVALID",
		Message:    "Webhook signature verification failed",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrWebhookDecodeFailed = &Error{
		Code:       "WEBHOOK_DECODE_FAILED",
		Message:    "Webhook payload could not be decoded",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrCurrencyMismatch = &Error{
		Code:       "CURRENCY_MISMATCH",
		Message:    "Transaction currency does not match invoice currency",
		HTTPStatus: http.StatusBadRequest,
	}
)

// Auth / tenant errors
var (
	ErrInvalidAPIKey = &Error{
		Code:       "INVALID_API_KEY",
		Message:    "API key is missing, unknown, or inactive",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrCrossTenantAccess = &Error{
		Code:       "CROSS_TENANT_ACCESS",
		Message:    "Resource does not belong to the authenticated tenant",
		HTTPStatus: http.StatusNotFound,
	}
)
