package billing

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/apperror"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/clock"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/database"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/logger"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/metrics"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/catalog"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	maxAttempts = 3
	historyDays = 30
)

// Service defines the bill engine.
type Service interface {
	CreateBill(ctx context.Context, req CreateBillRequest) (*Bill, error)
	// DeleteBill reverses a bill's stock and ledger effects, then removes it.
	DeleteBill(ctx context.Context, billID string) error
	GetBill(ctx context.Context, billID string) (*Bill, error)
	ListToday(ctx context.Context) ([]*Bill, error)
	ListByDate(ctx context.Context, day string) ([]*Bill, error)
	ListPast30Days(ctx context.Context) ([]*Bill, error)
}

type service struct {
	tx    TxManager
	bills Repository
	cal   *clock.Calendar
	clock clock.Clock
	log   logrus.FieldLogger
}

func NewService(tx TxManager, bills Repository, cal *clock.Calendar, clk clock.Clock, log logrus.FieldLogger) Service {
	return &service{tx: tx, bills: bills, cal: cal, clock: clk, log: log}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Money fields validate as numbers; an absent NullDecimal is empty.
	v.RegisterCustomTypeFunc(func(f reflect.Value) interface{} {
		switch d := f.Interface().(type) {
		case decimal.Decimal:
			return d.InexactFloat64()
		case decimal.NullDecimal:
			if d.Valid {
				return d.Decimal.InexactFloat64()
			}
		}
		return nil
	}, decimal.Decimal{}, decimal.NullDecimal{})
	// cents: at most two decimal places, the precision amounts are stored at.
	_ = v.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
		d := decimal.NewFromFloat(fl.Field().Float())
		return d.Equal(d.Round(2))
	})
	return v
}

// ── Create ────────────────────────────────────────────────────────────────────

func (s *service) CreateBill(ctx context.Context, req CreateBillRequest) (*Bill, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	var (
		bill *Bill
		err  error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		bill, err = s.createOnce(ctx, req)
		if !retryable(err) {
			break
		}
		s.log.WithFields(logrus.Fields{"attempt": attempt}).WithError(err).Warn("create bill, retrying")
	}
	if err != nil {
		s.logFailure("CreateBill", req, err)
		return nil, err
	}

	metrics.BillsCreated.Inc()
	metrics.BillAmount.Observe(bill.TotalAmount.InexactFloat64())
	return bill, nil
}

// createOnce prices and validates items in input order (stock, then price
// floor), decrements stock as it goes, checks cash, and writes the bill and
// ledger. Any failure discards every write.
func (s *service) createOnce(ctx context.Context, req CreateBillRequest) (*Bill, error) {
	now := s.clock.Now()
	bill := &Bill{
		Date:          s.cal.In(now),
		Time:          s.cal.TimeLabel(now),
		DayIdentifier: s.cal.DayID(now),
		Cash:          req.Cash,
	}

	err := s.tx.WithinTx(ctx, func(st Stores) error {
		total := decimal.Zero
		items := make([]LineItem, 0, len(req.Items))
		for _, it := range req.Items {
			variant := catalog.NormalizeVariant(it.Variant)
			p, err := st.Catalog.GetProduct(ctx, it.ProductID, variant)
			if err != nil {
				return err
			}
			if p.Stock < it.Quantity {
				return apperror.New(apperror.ErrInsufficientStock,
					"Insufficient stock for %s. Available: %d", p.Label(), p.Stock)
			}
			price := p.SellingPrice
			if it.Price.Valid {
				price = it.Price.Decimal
			}
			if price.LessThan(p.BuyingPrice) {
				return apperror.New(apperror.ErrInvalidPrice,
					"Price for %s cannot be less than buying price (Rs.%s)", p.Label(), p.BuyingPrice)
			}

			line := price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			total = total.Add(line)
			items = append(items, LineItem{
				ProductID:   p.ProductID,
				Name:        p.Name,
				Variant:     variant,
				Quantity:    it.Quantity,
				Price:       price,
				BuyingPrice: decimal.NewNullDecimal(p.BuyingPrice),
				Total:       line,
			})

			if _, err := st.Catalog.AdjustStock(ctx, p.ProductID, variant, -it.Quantity); err != nil {
				return err
			}
		}

		if req.Cash.LessThan(total) {
			return apperror.New(apperror.ErrInsufficientCash, "Insufficient cash")
		}

		id, err := st.Bills.NextBillID(ctx)
		if err != nil {
			return err
		}
		bill.BillID = id
		bill.Items = items
		bill.TotalAmount = total
		bill.Change = req.Cash.Sub(total)
		if err := st.Bills.Insert(ctx, bill); err != nil {
			return err
		}
		return st.Ledger.Add(ctx, bill.DayIdentifier, total, now)
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

func checkRequest(req CreateBillRequest) error {
	if err := validate.Struct(req); err != nil {
		return apperror.Validation("%s", validationMessage(err))
	}
	return nil
}

// retryable reports failures a fresh transaction can get past: an id taken
// outside the sequence, or a deadlock between bills sharing products.
func retryable(err error) bool {
	return errors.Is(err, apperror.ErrConflict) || database.IsRetryable(err)
}

func validationMessage(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err.Error()
	}
	msgs := make([]string, 0, len(ves))
	for _, ve := range ves {
		field := strings.SplitN(ve.Namespace(), ".", 2)
		msgs = append(msgs, fmt.Sprintf("%s: %s", field[len(field)-1], ve.Tag()))
	}
	sort.Strings(msgs)
	return strings.Join(msgs, ", ")
}

// ── Delete ────────────────────────────────────────────────────────────────────

func (s *service) DeleteBill(ctx context.Context, billID string) error {
	today := s.cal.DayID(s.clock.Now())
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = s.deleteOnce(ctx, billID, today)
		if !database.IsRetryable(err) {
			break
		}
		s.log.WithFields(logrus.Fields{"attempt": attempt, "billId": billID}).WithError(err).Warn("delete bill, retrying")
	}
	if err != nil {
		s.logFailure("DeleteBill", billID, err)
		return err
	}
	metrics.BillsDeleted.Inc()
	return nil
}

func (s *service) deleteOnce(ctx context.Context, billID, today string) error {
	return s.tx.WithinTx(ctx, func(st Stores) error {
		b, err := st.Bills.Get(ctx, billID)
		if err != nil {
			return err
		}
		for _, li := range b.Items {
			_, err := st.Catalog.AdjustStock(ctx, li.ProductID, li.Variant, li.Quantity)
			if errors.Is(err, apperror.ErrNotFound) {
				// Products removed since the sale are not recreated.
				continue
			}
			if err != nil {
				return err
			}
		}
		if b.DayIdentifier == today {
			if err := st.Ledger.Subtract(ctx, today, b.TotalAmount); err != nil {
				return err
			}
		}
		return st.Bills.Delete(ctx, billID)
	})
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *service) GetBill(ctx context.Context, billID string) (*Bill, error) {
	return s.bills.Get(ctx, billID)
}

func (s *service) ListToday(ctx context.Context) ([]*Bill, error) {
	return s.bills.ListByDay(ctx, s.cal.DayID(s.clock.Now()))
}

func (s *service) ListByDate(ctx context.Context, day string) ([]*Bill, error) {
	if _, err := s.cal.ParseDay(day); err != nil {
		return nil, apperror.Validation("%s", err.Error())
	}
	return s.bills.ListByDay(ctx, day)
}

func (s *service) ListPast30Days(ctx context.Context) ([]*Bill, error) {
	return s.bills.ListBetween(ctx, s.cal.RollingWindow(s.clock.Now(), historyDays))
}

// logFailure records errors the caller cannot act on.
func (s *service) logFailure(funcName string, data any, err error) {
	if apperror.HTTPStatus(err) >= 500 {
		logger.LogError(s.log, "billing", funcName, "unit of work failed", data, err)
	}
}
