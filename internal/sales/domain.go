package sales

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a sale.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus returns the Status named by s or ErrInvalidStatus.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusPaid, StatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("%w: '%s'", ErrInvalidStatus, s)
	}
}

// UnmarshalText rejects anything outside the three known states.
func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// CanTransitionTo reports whether a sale in status s may move to next.
// PAID and CANCELLED are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusPaid || next == StatusCancelled
	case StatusPaid, StatusCancelled:
		return false
	default:
		return false
	}
}

// PaymentType is how the customer settles a sale.
type PaymentType string

const (
	PaymentCash     PaymentType = "CASH"
	PaymentCard     PaymentType = "CARD"
	PaymentTransfer PaymentType = "TRANSFER"
)

// PaymentTypes lists every accepted payment type, in display order.
var PaymentTypes = []PaymentType{PaymentCash, PaymentCard, PaymentTransfer}

// ParsePaymentType returns the PaymentType named by s or ErrInvalidPaymentType.
func ParsePaymentType(s string) (PaymentType, error) {
	switch pt := PaymentType(s); pt {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return pt, nil
	default:
		return "", fmt.Errorf("%w: '%s'", ErrInvalidPaymentType, s)
	}
}

// UnmarshalText rejects anything but CASH, CARD and TRANSFER.
func (p *PaymentType) UnmarshalText(b []byte) error {
	pt, err := ParsePaymentType(string(b))
	if err != nil {
		return err
	}
	*p = pt
	return nil
}

// ItemInput is a line item as entered by the caller, before totals exist.
type ItemInput struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// SaleItem is one product line of a sale. UnitPrice is captured when the
// sale is built and never re-fetched from the catalog.
type SaleItem struct {
	ProductID  string          `json:"productId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// Sale represents a customer transaction in the system.
type Sale struct {
	ID            string          `json:"id"`
	Items         []SaleItem      `json:"items"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
	SaleDate      time.Time       `json:"saleDate"`
	PaymentDate   *time.Time      `json:"paymentDate"`
	PaymentType   PaymentType     `json:"paymentType"`
	Status        Status          `json:"status"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	Version       int             `json:"version,omitempty"`
}

// Clone returns a deep copy of the sale.
func (s *Sale) Clone() *Sale {
	c := *s
	if s.Items != nil {
		c.Items = make([]SaleItem, len(s.Items))
		copy(c.Items, s.Items)
	}
	if s.PaymentDate != nil {
		d := *s.PaymentDate
		c.PaymentDate = &d
	}
	return &c
}

// SalePatch is a partial update sent to the persistence gateway. Nil fields
// are left untouched. Version, when non-zero, is the version the caller last
// saw; a store that tracks versions rejects the patch if it has moved on.
type SalePatch struct {
	Status        *Status          `json:"status,omitempty"`
	PaymentType   *PaymentType     `json:"paymentType,omitempty"`
	PaymentDate   *time.Time       `json:"paymentDate,omitempty"`
	CustomerName  *string          `json:"customerName,omitempty"`
	CustomerPhone *string          `json:"customerPhone,omitempty"`
	Items         []SaleItem       `json:"items,omitempty"`
	TotalAmount   *decimal.Decimal `json:"totalAmount,omitempty"`
	Version       int              `json:"version,omitempty"`
}

// Apply writes the non-nil fields of p onto sale.
func (p SalePatch) Apply(sale *Sale) {
	if p.Status != nil {
		sale.Status = *p.Status
	}
	if p.PaymentType != nil {
		sale.PaymentType = *p.PaymentType
	}
	if p.PaymentDate != nil {
		d := *p.PaymentDate
		sale.PaymentDate = &d
	}
	if p.CustomerName != nil {
		sale.CustomerName = *p.CustomerName
	}
	if p.CustomerPhone != nil {
		sale.CustomerPhone = *p.CustomerPhone
	}
	if p.Items != nil {
		sale.Items = make([]SaleItem, len(p.Items))
		copy(sale.Items, p.Items)
	}
	if p.TotalAmount != nil {
		sale.TotalAmount = *p.TotalAmount
	}
}
