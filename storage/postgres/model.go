package postgres

import (
	"docuflow/types"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document 对应 documents 表：上传的原始文件 + 提取状态
type Document struct {
	ID        string               `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string               `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	FileName  string               `gorm:"column:file_name;type:varchar(255);not null" json:"file_name"`
	FilePath  string               `gorm:"column:file_path;type:text;not null" json:"file_path"`
	FileType  types.DocumentType   `gorm:"column:file_type;type:varchar(20);not null" json:"file_type"`
	Status    types.DocumentStatus `gorm:"column:status;type:varchar(20);not null;default:processing;index" json:"status"`
	DraftData datatypes.JSON       `gorm:"column:draft_data" json:"draft_data,omitempty"`
	ErrorMsg  *string              `gorm:"column:error_msg;type:text" json:"error_msg,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Document) TableName() string { return "documents" }

func (d *Document) BeforeCreate(*gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// Draft decodes draft_data. Only meaningful while the document is ready.
func (d *Document) Draft() (types.Draft, error) {
	if len(d.DraftData) == 0 {
		return types.Draft{}, types.ErrInvalidDraft
	}
	return types.DecodeDraft(d.FileType, d.DraftData)
}

type Vendor struct {
	ID      string  `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string  `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	Name    string  `gorm:"column:name;type:varchar(255);not null;index" json:"name"`
	Email   *string `gorm:"column:email;type:varchar(255)" json:"email"`
	Phone   *string `gorm:"column:phone;type:varchar(64)" json:"phone"`
	Address *string `gorm:"column:address;type:text" json:"address"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Vendor) TableName() string { return "vendors" }

func (v *Vendor) BeforeCreate(*gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

// InvoiceRecord 对应 invoice_data 表，审核提交后生成
// 日期统一存 UTC 零点
type InvoiceRecord struct {
	ID              string                              `gorm:"primaryKey;type:uuid" json:"id"`
	UserID          string                              `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	DocumentID      *string                             `gorm:"column:document_id;type:uuid;index" json:"document_id"`
	VendorID        *string                             `gorm:"column:vendor_id;type:uuid;index" json:"vendor_id"`
	InvoiceNumber   *string                             `gorm:"column:invoice_number;type:varchar(128)" json:"invoice_number"`
	InvoiceDate     *time.Time                          `gorm:"column:invoice_date;type:date" json:"invoice_date"`
	DueDate         *time.Time                          `gorm:"column:due_date;type:date;index" json:"due_date"`
	TotalAmount     *float64                            `gorm:"column:total_amount;type:decimal(15,2)" json:"total_amount"`
	TaxAmount       *float64                            `gorm:"column:tax_amount;type:decimal(15,2)" json:"tax_amount"`
	Items           datatypes.JSONSlice[types.LineItem] `gorm:"column:items" json:"items"`
	SummaryText     *string                             `gorm:"column:summary_text;type:text" json:"summary_text"`
	ConfidenceScore *float64                            `gorm:"column:confidence_score" json:"confidence_score"`
	PaymentStatus   string                              `gorm:"column:payment_status;type:varchar(20);not null;default:pending;index" json:"payment_status"`

	Vendor   *Vendor   `gorm:"foreignKey:VendorID;constraint:OnDelete:SET NULL" json:"vendor,omitempty"`
	Document *Document `gorm:"foreignKey:DocumentID;constraint:OnDelete:SET NULL" json:"document,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InvoiceRecord) TableName() string { return "invoice_data" }

func (r *InvoiceRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.PaymentStatus == "" {
		r.PaymentStatus = types.PaymentPending
	}
	return nil
}

// VendorName 没有关联供应商时返回空串
func (r *InvoiceRecord) VendorName() string {
	if r.Vendor == nil {
		return ""
	}
	return r.Vendor.Name
}

// ContractRecord 对应 contract_data 表
type ContractRecord struct {
	ID              string                      `gorm:"primaryKey;type:uuid" json:"id"`
	UserID          string                      `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	DocumentID      *string                     `gorm:"column:document_id;type:uuid;index" json:"document_id"`
	VendorID        *string                     `gorm:"column:vendor_id;type:uuid;index" json:"vendor_id"`
	Parties         datatypes.JSONSlice[string] `gorm:"column:parties" json:"parties"`
	StartDate       *time.Time                  `gorm:"column:start_date;type:date" json:"start_date"`
	EndDate         *time.Time                  `gorm:"column:end_date;type:date;index" json:"end_date"`
	PaymentAmount   *float64                    `gorm:"column:payment_amount;type:decimal(15,2)" json:"payment_amount"`
	SummaryText     *string                     `gorm:"column:summary_text;type:text" json:"summary_text"`
	ConfidenceScore *float64                    `gorm:"column:confidence_score" json:"confidence_score"`
	Status          string                      `gorm:"column:status;type:varchar(20);not null;default:active;index" json:"status"`

	Vendor   *Vendor   `gorm:"foreignKey:VendorID;constraint:OnDelete:SET NULL" json:"vendor,omitempty"`
	Document *Document `gorm:"foreignKey:DocumentID;constraint:OnDelete:SET NULL" json:"document,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ContractRecord) TableName() string { return "contract_data" }

func (r *ContractRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Status == "" {
		r.Status = types.ContractActive
	}
	return nil
}

func (r *ContractRecord) IsActive() bool {
	return r.Status == types.ContractActive
}

type Alert struct {
	ID               string  `gorm:"primaryKey;type:uuid" json:"id"`
	UserID           string  `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	Title            string  `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Message          *string `gorm:"column:message;type:text" json:"message"`
	Type             string  `gorm:"column:type;type:varchar(32);not null;default:reminder" json:"type"`
	RelatedInvoiceID *string `gorm:"column:related_invoice_id;type:uuid" json:"related_invoice_id"`
	IsRead           bool    `gorm:"column:is_read;not null;default:false" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}

func (Alert) TableName() string { return "alerts" }

func (a *Alert) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Type == "" {
		a.Type = types.AlertTypeReminder
	}
	return nil
}
