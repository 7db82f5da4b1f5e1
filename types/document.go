package types

import (
	"fmt"
	"strings"
)

// DocumentType is the declared kind of an uploaded file.
type DocumentType string

const (
	DocumentTypeInvoice  DocumentType = "invoice"
	DocumentTypeContract DocumentType = "contract"
)

// ParseDocumentType 解析上传时声明的类型，空值按 invoice 处理
func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(strings.ToLower(strings.TrimSpace(s))) {
	case "", DocumentTypeInvoice:
		return DocumentTypeInvoice, nil
	case DocumentTypeContract:
		return DocumentTypeContract, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, s)
	}
}

// DocumentStatus 文档生命周期状态
type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusError      DocumentStatus = "error"
	StatusSaved      DocumentStatus = "saved"
)

// Settled reports whether the extraction stage is over for a document.
func (s DocumentStatus) Settled() bool {
	return s == StatusReady || s == StatusError || s == StatusSaved
}

// 允许的状态迁移；删除 (cancel) 不是状态，只允许从 ready 发起
var transitions = map[DocumentStatus][]DocumentStatus{
	StatusProcessing: {StatusReady, StatusError},
	StatusReady:      {StatusSaved},
}

// CanTransition reports whether from -> to is a legal forward move.
func CanTransition(from, to DocumentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// 发票付款状态
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentOverdue = "overdue"
)

// ValidPaymentStatus reports whether s is one of the payment states.
func ValidPaymentStatus(s string) bool {
	return s == PaymentPending || s == PaymentPaid || s == PaymentOverdue
}

// 合同状态
const (
	ContractActive  = "active"
	ContractExpired = "expired"
)

// AlertTypeReminder is the only alert type the sweep produces.
const AlertTypeReminder = "reminder"
