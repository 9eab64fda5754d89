package render

import (
	"encoding/json"
	"sort"
	"time"
)

// ApprovalStatus is the decision state of an approval record.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// DocumentInput is everything one render consumes. It is owned by the
// caller and treated as read-only for the duration of the render.
type DocumentInput struct {
	Order     PurchaseOrder
	Warehouse *Address
	Vendor    *Address
	Approvals []Approval
}

// PurchaseOrder is the purchase-order aggregate.
type PurchaseOrder struct {
	ID           string
	Number       string
	OrderDate    time.Time
	ExpectedDate time.Time
	Currency     string
	Subtotal     float64
	Tax          float64
	Total        float64
	Paid         float64
	Payments     []Payment
	Notes        string
	DeliveryTerm string
	Packing      string
	Items        []LineItem
}

// LineItem is one ordered product/variant row.
type LineItem struct {
	ProductID string
	VariantID string
	SKU       string
	Name      string
	Quantity  float64
	UnitPrice float64
	Total     float64
	Notes     string
	// Attributes is an opaque JSON blob that may carry image URLs and a
	// color label. Malformed content is treated as empty.
	Attributes json.RawMessage
}

// Payment is a recorded payment against the order.
type Payment struct {
	Date   time.Time
	Method string
	Amount float64
}

// Approval is one approver's decision record.
type Approval struct {
	UserName      string
	Status        ApprovalStatus
	Comment       string
	SignaturePath string
	DecidedAt     time.Time
}

// Address is a point-in-time snapshot of a warehouse or vendor address.
type Address struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	Region     string
	PostalCode string
	Country    string
	Phone      string
	Email      string
}

// Lines flattens the address into display lines, skipping empties.
func (a *Address) Lines() []string {
	if a == nil {
		return nil
	}
	var lines []string
	push := func(s string) {
		if s != "" {
			lines = append(lines, s)
		}
	}
	push(a.Name)
	push(a.Line1)
	push(a.Line2)
	cityLine := a.City
	if a.Region != "" {
		if cityLine != "" {
			cityLine += ", "
		}
		cityLine += a.Region
	}
	if a.PostalCode != "" {
		if cityLine != "" {
			cityLine += " "
		}
		cityLine += a.PostalCode
	}
	push(cityLine)
	push(a.Country)
	push(a.Phone)
	push(a.Email)
	return lines
}

// sortedItems returns the line items ordered by (ProductID, SKU) so
// variants of one product sit together. The sort is stable: items with
// equal keys keep their input order.
func sortedItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].SKU < out[j].SKU
	})
	return out
}

// variantAttributes is the understood subset of the line-item attributes
// blob.
type variantAttributes struct {
	Images []string `json:"images"`
	Image  string   `json:"image"`
	Color  string   `json:"color"`
}

// parseAttributes decodes the attributes blob, tolerating malformed JSON
// by returning the zero value.
func parseAttributes(raw json.RawMessage) variantAttributes {
	var attrs variantAttributes
	if len(raw) == 0 {
		return attrs
	}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return variantAttributes{}
	}
	return attrs
}

// imageURL returns the first image URL carried by the attributes, if any.
func (v variantAttributes) imageURL() string {
	for _, u := range v.Images {
		if u != "" {
			return u
		}
	}
	return v.Image
}
