package api

// Record is one purchase-order line item as delivered by a source. Every
// field is optional; the aggregator decides what a missing value means.
type Record struct {
	OrderID         *string  `json:"order_id"`
	OrderDate       *string  `json:"order_date"`
	ProductName     *string  `json:"product_name"`
	ProductQuantity *float64 `json:"product_quantity"`
	ProductPrice    *float64 `json:"product_price"`
	ProductURL      *string  `json:"product_url,omitempty"`
	ImageURL        *string  `json:"product_image_url,omitempty"`
}

// Format selects the decoder used by ReadRecords.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Deref returns the string value of a nullable field, or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Float returns the value of a nullable number and whether it was present.
func Float(f *float64) (float64, bool) {
	if f == nil {
		return 0, false
	}
	return *f, true
}
