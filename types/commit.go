package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FormValue is a raw form field as typed by the reviewer. Clients may send it
// as a JSON string, a number or null; it is always kept as trimmed text and
// parsed later by the review rules.
type FormValue string

func (v *FormValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = FormValue(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*v = FormValue(n.String())
		return nil
	}
	return fmt.Errorf("%w: expected string or number, got %s", ErrInvalidInput, b)
}

func (v FormValue) String() string { return string(v) }

// Blank reports whether the field was left empty.
func (v FormValue) Blank() bool { return strings.TrimSpace(string(v)) == "" }

type LineItemInput struct {
	Description FormValue `json:"description"`
	Quantity    FormValue `json:"quantity"`
	UnitPrice   FormValue `json:"unit_price"`
	Amount      FormValue `json:"amount"`
}

// CommitRequest 审核表单：供应商 + 用户修改后的字段
// 发票只读 invoice 字段，合同只读 contract 字段
type CommitRequest struct {
	VendorID   *string `json:"vendor_id"`
	VendorName string  `json:"vendor_name"`

	// invoice
	InvoiceNumber FormValue       `json:"invoice_number"`
	InvoiceDate   FormValue       `json:"invoice_date"`
	DueDate       FormValue       `json:"due_date"`
	TotalAmount   FormValue       `json:"total_amount"`
	TaxAmount     FormValue       `json:"tax_amount"`
	Items         []LineItemInput `json:"items"`

	// contract
	Parties       []string  `json:"parties"`
	StartDate     FormValue `json:"start_date"`
	EndDate       FormValue `json:"end_date"`
	PaymentAmount FormValue `json:"payment_amount"`

	SummaryText FormValue `json:"summary_text"`
}

// CommitRequestFromDraft pre-fills a review form with the extracted values,
// which is what the client shows before the user edits anything.
func CommitRequestFromDraft(d Draft) CommitRequest {
	var req CommitRequest
	switch {
	case d.Invoice != nil:
		inv := d.Invoice
		req.InvoiceNumber = strValue(inv.InvoiceNumber)
		req.InvoiceDate = strValue(inv.InvoiceDate)
		req.DueDate = strValue(inv.DueDate)
		req.TotalAmount = numValue(inv.TotalAmount)
		req.TaxAmount = numValue(inv.TaxAmount)
		for _, it := range inv.Items {
			req.Items = append(req.Items, LineItemInput{
				Description: FormValue(it.Description),
				Quantity:    numValue(&it.Quantity),
				UnitPrice:   numValue(&it.UnitPrice),
				Amount:      numValue(&it.Amount),
			})
		}
		req.SummaryText = FormValue(inv.SummaryText)
	case d.Contract != nil:
		c := d.Contract
		req.Parties = append(req.Parties, c.Parties...)
		req.StartDate = strValue(c.StartDate)
		req.EndDate = strValue(c.EndDate)
		req.PaymentAmount = numValue(c.PaymentAmount)
		req.SummaryText = FormValue(c.SummaryText)
	}
	return req
}

func strValue(p *string) FormValue {
	if p == nil {
		return ""
	}
	return FormValue(*p)
}

func numValue(p *float64) FormValue {
	if p == nil {
		return ""
	}
	return FormValue(fmt.Sprintf("%g", *p))
}

// VendorInput 创建/更新供应商
type VendorInput struct {
	Name    string  `json:"name" binding:"required"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type PaymentStatusInput struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}
