package models

// ItemStatus classifies the terminal outcome for one input item number.
type ItemStatus string

const (
	StatusFound         ItemStatus = "Found"
	StatusNotFound      ItemStatus = "Not Found"
	StatusLoginRequired ItemStatus = "Login Required"
	StatusError         ItemStatus = "Error"
)

// Sentinel values stand in for intentionally absent fields. They are fixed
// placeholders, not extraction errors, and downstream consumers rely on the
// exact strings.
const (
	SentinelLoginRequired = "Login required"
	SentinelNotFound      = "Not found"
	SentinelItemNotFound  = "Item not found"
	SentinelNA            = "N/A"
	SentinelNoURL         = "Item not available"
)

// ProductRecord is the terminal, immutable record emitted for one input item
// number. Exactly one record exists per input identifier, in input order.
type ProductRecord struct {
	ItemNumber   string     `json:"item_number"`
	ProductName  string     `json:"product_name"`
	UnitPrice    string     `json:"unit_price"`
	CaseQuantity string     `json:"case_quantity"`
	URL          string     `json:"url"`
	Status       ItemStatus `json:"status"`
	StatusReason string     `json:"status_reason,omitempty"`
}

// NotFoundRecord is the record shape for an identifier no candidate URL
// resolved for.
func NotFoundRecord(itemNumber string) ProductRecord {
	return ProductRecord{
		ItemNumber:   itemNumber,
		ProductName:  SentinelItemNotFound,
		UnitPrice:    SentinelNA,
		CaseQuantity: SentinelNA,
		URL:          SentinelNoURL,
		Status:       StatusNotFound,
	}
}

// ErrorRecord is the record shape for an identifier whose processing hit an
// engine fault. The fault is captured per item instead of aborting the batch.
func ErrorRecord(itemNumber, reason string) ProductRecord {
	return ProductRecord{
		ItemNumber:   itemNumber,
		ProductName:  "Error",
		UnitPrice:    "Error",
		CaseQuantity: "Error",
		URL:          SentinelNoURL,
		Status:       StatusError,
		StatusReason: reason,
	}
}
