package sales

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	minCustomerNameLen  = 2
	minCustomerPhoneLen = 10
)

// Service enforces the sale lifecycle on top of a Storage backend.
type Service struct {
	storage Storage
	logger  *zap.Logger
	now     func() time.Time
}

// PaymentStat aggregates sales sharing one payment type.
type PaymentStat struct {
	Type  PaymentType     `json:"type"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// dayLayout keys the per-day buckets, always in UTC.
const dayLayout = "2006-01-02"

// DailyStat counts the sales of one UTC day. TotalRevenue only sums PAID sales.
type DailyStat struct {
	Date         string          `json:"date"`
	TotalSales   int             `json:"total_sales"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// Metadata para la respuesta de búsqueda
type SalesMetadata struct {
	Quantity     int             `json:"quantity"`
	Pending      int             `json:"pending"`
	Paid         int             `json:"paid"`
	Cancelled    int             `json:"cancelled"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PaidRevenue  decimal.Decimal `json:"paid_revenue"`
	PaymentStats []PaymentStat   `json:"payment_stats"`
	DailyStats   []DailyStat     `json:"daily_stats"`
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the time source used for sale and payment dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new Service.
func NewService(storage Storage, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSale validates the input, computes totals and persists a new PENDING
// sale. The returned sale is the one handed back by the gateway.
func (s *Service) CreateSale(ctx context.Context, customerName, customerPhone string, paymentType PaymentType, items []ItemInput) (*Sale, error) {
	if err := validateCustomer(customerName, customerPhone); err != nil {
		return nil, err
	}
	if _, err := ParsePaymentType(string(paymentType)); err != nil {
		return nil, invalid("paymentType", "%v", err)
	}

	lines, total, err := ComputeTotals(items)
	if err != nil {
		return nil, err
	}

	sale := &Sale{
		Items:         lines,
		TotalAmount:   total,
		CustomerName:  strings.TrimSpace(customerName),
		CustomerPhone: strings.TrimSpace(customerPhone),
		SaleDate:      s.now(),
		PaymentDate:   nil,
		PaymentType:   paymentType,
		Status:        StatusPending,
	}

	created, err := s.storage.Create(ctx, sale)
	if err != nil {
		s.logger.Error("failed to save sale", zap.String("customer", sale.CustomerName), zap.Error(err))
		return nil, gatewayErr("create", err)
	}

	s.logger.Info("sale created",
		zap.String("sale_id", created.ID),
		zap.Int("items", len(created.Items)),
		zap.Stringer("total_amount", created.TotalAmount),
	)
	return created, nil
}

// GetSale loads a sale by ID.
func (s *Service) GetSale(ctx context.Context, id string) (*Sale, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("id", "sale id is required")
	}
	sale, err := s.storage.Read(ctx, id)
	if err != nil {
		return nil, gatewayErr("get", err)
	}
	return sale, nil
}

// MarkAsPaid moves a PENDING sale to PAID. A zero paymentDate means now.
//
// The status is checked on the given sale first and then on a freshly read
// copy immediately before the update. On success *sale is replaced with the
// stored result, so calling MarkAsPaid again on the same value fails with
// ErrInvalidTransition.
func (s *Service) MarkAsPaid(ctx context.Context, sale *Sale, paymentType PaymentType, paymentDate time.Time) (*Sale, error) {
	if sale == nil {
		return nil, invalid("sale", "sale is required")
	}
	if _, err := ParsePaymentType(string(paymentType)); err != nil {
		return nil, invalid("paymentType", "%v", err)
	}
	if paymentDate.IsZero() {
		paymentDate = s.now()
	}

	paid := StatusPaid
	return s.transition(ctx, sale, StatusPaid, SalePatch{
		Status:      &paid,
		PaymentType: &paymentType,
		PaymentDate: &paymentDate,
	})
}

// CancelSale moves a PENDING sale to CANCELLED, with the same freshness
// rules as MarkAsPaid.
func (s *Service) CancelSale(ctx context.Context, sale *Sale) (*Sale, error) {
	if sale == nil {
		return nil, invalid("sale", "sale is required")
	}

	cancelled := StatusCancelled
	return s.transition(ctx, sale, StatusCancelled, SalePatch{Status: &cancelled})
}

func (s *Service) transition(ctx context.Context, sale *Sale, to Status, patch SalePatch) (*Sale, error) {
	if !sale.Status.CanTransitionTo(to) {
		return nil, transitionErr(sale.Status, to)
	}

	current, err := s.storage.Read(ctx, sale.ID)
	if err != nil {
		return nil, gatewayErr("get", err)
	}
	if !current.Status.CanTransitionTo(to) {
		s.logger.Warn("sale changed since it was loaded",
			zap.String("sale_id", sale.ID),
			zap.String("seen_status", string(sale.Status)),
			zap.String("current_status", string(current.Status)),
		)
		return nil, transitionErr(current.Status, to)
	}

	patch.Version = current.Version
	updated, err := s.storage.Update(ctx, sale.ID, patch)
	if err != nil {
		s.logger.Error("failed to update sale", zap.String("sale_id", sale.ID), zap.Error(err))
		return nil, gatewayErr("update", err)
	}

	*sale = *updated.Clone()
	s.logger.Info("sale status changed",
		zap.String("sale_id", updated.ID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)),
	)
	return updated, nil
}

// UpdateSaleStatus loads a sale and applies the transition to status.
// paymentType and paymentDate only matter when status is PAID; an empty
// paymentType keeps the one chosen at creation.
func (s *Service) UpdateSaleStatus(ctx context.Context, saleID string, status Status, paymentType PaymentType, paymentDate time.Time) (*Sale, error) {
	sale, err := s.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	switch status {
	case StatusPaid:
		if paymentType == "" {
			paymentType = sale.PaymentType
		}
		return s.MarkAsPaid(ctx, sale, paymentType, paymentDate)
	case StatusCancelled:
		return s.CancelSale(ctx, sale)
	case StatusPending:
		return nil, transitionErr(sale.Status, status)
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidStatus, status)
	}
}

// UpdateSaleDetails replaces the customer details, payment type and items of
// a PENDING sale. Line totals are recomputed from the new items.
func (s *Service) UpdateSaleDetails(ctx context.Context, saleID, customerName, customerPhone string, paymentType PaymentType, items []ItemInput) (*Sale, error) {
	if err := validateCustomer(customerName, customerPhone); err != nil {
		return nil, err
	}
	if _, err := ParsePaymentType(string(paymentType)); err != nil {
		return nil, invalid("paymentType", "%v", err)
	}
	lines, total, err := ComputeTotals(items)
	if err != nil {
		return nil, err
	}

	current, err := s.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if current.Status != StatusPending {
		return nil, fmt.Errorf("%w: cannot edit a %s sale", ErrInvalidTransition, current.Status)
	}

	name := strings.TrimSpace(customerName)
	phone := strings.TrimSpace(customerPhone)
	updated, err := s.storage.Update(ctx, saleID, SalePatch{
		PaymentType:   &paymentType,
		CustomerName:  &name,
		CustomerPhone: &phone,
		Items:         lines,
		TotalAmount:   &total,
		Version:       current.Version,
	})
	if err != nil {
		s.logger.Error("failed to update sale", zap.String("sale_id", saleID), zap.Error(err))
		return nil, gatewayErr("update", err)
	}

	s.logger.Info("sale details updated", zap.String("sale_id", saleID), zap.Stringer("total_amount", updated.TotalAmount))
	return updated, nil
}

// SearchFilter narrows SearchSale. Zero fields match everything. From is
// inclusive and To exclusive, both compared against SaleDate.
type SearchFilter struct {
	Status      string
	PaymentType string
	From        time.Time
	To          time.Time
}

// SearchSale returns the sales matching filter, newest first, together with
// aggregate metadata.
func (s *Service) SearchSale(ctx context.Context, filter SearchFilter) ([]*Sale, SalesMetadata, error) {
	var parsedStatus Status
	if filter.Status != "" {
		st, err := ParseStatus(strings.ToUpper(filter.Status))
		if err != nil {
			s.logger.Warn("Invalid status filter provided", zap.String("statusFilter", filter.Status))
			return nil, SalesMetadata{}, err
		}
		parsedStatus = st
	}

	var parsedPayment PaymentType
	if filter.PaymentType != "" {
		pt, err := ParsePaymentType(strings.ToUpper(filter.PaymentType))
		if err != nil {
			s.logger.Warn("Invalid payment type filter provided", zap.String("paymentTypeFilter", filter.PaymentType))
			return nil, SalesMetadata{}, err
		}
		parsedPayment = pt
	}

	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return nil, SalesMetadata{}, invalid("start_date", "must be before end_date")
	}

	allSales, err := s.storage.GetAll(ctx)
	if err != nil {
		s.logger.Error("Failed to get all sales from storage", zap.Error(err))
		return nil, SalesMetadata{}, gatewayErr("list", err)
	}

	filtered := make([]*Sale, 0)
	metadata := SalesMetadata{TotalAmount: decimal.Zero, PaidRevenue: decimal.Zero}
	byPayment := map[PaymentType]*PaymentStat{}
	byDay := map[string]*DailyStat{}

	for _, sale := range allSales {
		if sale == nil {
			continue
		}
		if parsedStatus != "" && sale.Status != parsedStatus {
			continue
		}
		if parsedPayment != "" && sale.PaymentType != parsedPayment {
			continue
		}
		if !filter.From.IsZero() && sale.SaleDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !sale.SaleDate.Before(filter.To) {
			continue
		}

		filtered = append(filtered, sale)

		metadata.Quantity++
		metadata.TotalAmount = metadata.TotalAmount.Add(sale.TotalAmount)

		day := sale.SaleDate.UTC().Format(dayLayout)
		daily, ok := byDay[day]
		if !ok {
			daily = &DailyStat{Date: day, TotalRevenue: decimal.Zero}
			byDay[day] = daily
		}
		daily.TotalSales++

		switch sale.Status {
		case StatusPending:
			metadata.Pending++
		case StatusPaid:
			metadata.Paid++
			metadata.PaidRevenue = metadata.PaidRevenue.Add(sale.TotalAmount)
			daily.TotalRevenue = daily.TotalRevenue.Add(sale.TotalAmount)
		case StatusCancelled:
			metadata.Cancelled++
		}

		stat, ok := byPayment[sale.PaymentType]
		if !ok {
			stat = &PaymentStat{Type: sale.PaymentType, Total: decimal.Zero}
			byPayment[sale.PaymentType] = stat
		}
		stat.Count++
		stat.Total = stat.Total.Add(sale.TotalAmount)
	}

	metadata.PaymentStats = make([]PaymentStat, 0, len(byPayment))
	for _, pt := range PaymentTypes {
		if stat, ok := byPayment[pt]; ok {
			metadata.PaymentStats = append(metadata.PaymentStats, *stat)
		}
	}

	metadata.DailyStats = make([]DailyStat, 0, len(byDay))
	for _, daily := range byDay {
		metadata.DailyStats = append(metadata.DailyStats, *daily)
	}
	slices.SortFunc(metadata.DailyStats, func(a, b DailyStat) int {
		return strings.Compare(a.Date, b.Date)
	})

	slices.SortFunc(filtered, func(a, b *Sale) int {
		return b.SaleDate.Compare(a.SaleDate)
	})

	s.logger.Info("Sales search completed",
		zap.String("status_filter", filter.Status),
		zap.String("payment_type_filter", filter.PaymentType),
		zap.Time("from", filter.From),
		zap.Time("to", filter.To),
		zap.Int("results_count", len(filtered)),
		zap.Int("pending", metadata.Pending),
		zap.Int("paid", metadata.Paid),
		zap.Int("cancelled", metadata.Cancelled),
	)

	return filtered, metadata, nil
}

func validateCustomer(name, phone string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < minCustomerNameLen {
		return invalid("customerName", "must contain at least %d characters", minCustomerNameLen)
	}
	if utf8.RuneCountInString(strings.TrimSpace(phone)) < minCustomerPhoneLen {
		return invalid("customerPhone", "must contain at least %d characters", minCustomerPhoneLen)
	}
	return nil
}
