package vars

import "time"

const (
	// 模型工具名（强制调用）
	ExtractToolName = "extract_document_data"
	ExtractToolDesc = "Extract structured data from the document"

	// 对象存储默认桶
	DocumentBucket = "documents"
	SignedURLTTL   = 60 * time.Second

	// 提醒窗口：今天 ~ 今天+3天
	ReminderWindowDays = 3
	// 首页 "即将到期"
	DueSoonDays = 7

	DefaultEmailFrom = "DocuFlow AI <onboarding@resend.dev>"
	PaymentNote      = "Please ensure timely payment to avoid late fees."
	UnknownVendor    = "Unknown Vendor"

	// PDF 文本兜底时截断长度
	MaxTextChars = 20000

	DateLayout = "2006-01-02"
)

// 提示词
var (
	SystemPrompt = `You are a careful data-entry assistant for accounts payable and contract management.
Read the attached document and report what it states. Never guess: leave a field out when the document does not show it.
Dates must be formatted as YYYY-MM-DD. Amounts are plain numbers without currency symbols or thousands separators.`

	InvoicePrompt = `Extract the invoice data from this document using the ` + ExtractToolName + ` tool.
Capture the invoice number, invoice date, due date, total amount, tax amount and every line item
(description, quantity, unit price, amount). Write a one or two sentence summary_text of what was billed,
and set confidence_score between 0 and 1 to reflect how legible and complete the document was.`

	ContractPrompt = `Extract the contract data from this document using the ` + ExtractToolName + ` tool.
Capture every contracting party by full name, the start date, the end date and the payment amount.
Write a one or two sentence summary_text of the agreement, and set confidence_score between 0 and 1
to reflect how legible and complete the document was.`

	// 纯文本模型：PDF 先转文本再拼接进提示词
	TextDocumentPrompt = `The document text follows between the markers.
----- BEGIN DOCUMENT -----
{{.Content}}
----- END DOCUMENT -----`
)
