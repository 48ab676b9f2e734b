package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartsupply/delivery-app/internal/models"
	"github.com/smartsupply/delivery-app/internal/timeutil"
)

// ClosingService builds and persists the end-of-day snapshot. Summary is a
// pure read; Save recomputes the same figures inside a transaction and
// upserts them keyed by PKT calendar date, replacing the breakdown children
// wholesale.
type ClosingService struct {
	DB *gorm.DB
}

func NewClosingService(db *gorm.DB) *ClosingService { return &ClosingService{DB: db} }

// blockingStatuses are the order statuses that keep the counter open: the
// day cannot be closed while any order is still moving.
var blockingStatuses = []string{
	models.StatusPending,
	models.StatusAssigned,
	models.StatusInProgress,
	models.StatusCreated,
}

type RiderBreakdown struct {
	RiderID    uint
	RiderName  string
	Orders     int
	Bottles    int
	Amount     decimal.Decimal
	PaidAmount decimal.Decimal
}

type PaymentBreakdown struct {
	Method     string
	Orders     int
	PaidAmount decimal.Decimal
}

type ClosingSummary struct {
	Date                    string
	CustomerPayable         decimal.Decimal
	CustomerReceivable      decimal.Decimal
	TotalPaidAmount         decimal.Decimal
	TotalCurrentOrderAmount decimal.Decimal
	WalkInAmount            decimal.Decimal
	ClearBillAmount         decimal.Decimal
	BalanceClearedToday     decimal.Decimal
	TotalBottles            int
	TotalOrders             int
	Riders                  []RiderBreakdown
	Payments                []PaymentBreakdown
	CanClose                bool
	InProgressOrders        int
	AlreadyExists           bool
}

// Summary computes today's closing figures without persisting anything.
// Calling it twice without intervening writes returns identical figures.
func (s *ClosingService) Summary() (*ClosingSummary, error) {
	return s.compute(s.DB, time.Now())
}

// Save recomputes the closing and upserts it by date. It refuses to close
// while any order is still in a non-terminal status.
func (s *ClosingService) Save() (*models.DailyClosing, error) {
	now := time.Now()
	var closing models.DailyClosing
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		summary, err := s.compute(tx, now)
		if err != nil {
			return err
		}
		if !summary.CanClose {
			return InvalidStatef("cannot close the day: %d order(s) still in progress", summary.InProgressOrders)
		}

		date := timeutil.ClosingDate(now)
		err = tx.Where("date = ?", date).First(&closing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return StoreFailure(err)
		}
		fresh := errors.Is(err, gorm.ErrRecordNotFound)

		closing.Date = date
		closing.CustomerPayable = summary.CustomerPayable
		closing.CustomerReceivable = summary.CustomerReceivable
		closing.TotalPaidAmount = summary.TotalPaidAmount
		closing.TotalCurrentOrderAmount = summary.TotalCurrentOrderAmount
		closing.WalkInAmount = summary.WalkInAmount
		closing.ClearBillAmount = summary.ClearBillAmount
		closing.BalanceClearedToday = summary.BalanceClearedToday
		closing.TotalBottles = summary.TotalBottles
		closing.TotalOrders = summary.TotalOrders
		closing.Riders = nil
		closing.Payments = nil

		if fresh {
			if err := tx.Create(&closing).Error; err != nil {
				return StoreFailure(err)
			}
		} else {
			if err := tx.Save(&closing).Error; err != nil {
				return StoreFailure(err)
			}
			// Children are replaced wholesale on every re-save.
			if err := tx.Where("closing_id = ?", closing.ID).Delete(&models.DailyClosingRider{}).Error; err != nil {
				return StoreFailure(err)
			}
			if err := tx.Where("closing_id = ?", closing.ID).Delete(&models.DailyClosingPayment{}).Error; err != nil {
				return StoreFailure(err)
			}
		}

		for _, r := range summary.Riders {
			row := models.DailyClosingRider{
				ClosingID:  closing.ID,
				RiderID:    r.RiderID,
				RiderName:  r.RiderName,
				Orders:     r.Orders,
				Bottles:    r.Bottles,
				Amount:     r.Amount,
				PaidAmount: r.PaidAmount,
			}
			if err := tx.Create(&row).Error; err != nil {
				return StoreFailure(err)
			}
			closing.Riders = append(closing.Riders, row)
		}
		for _, p := range summary.Payments {
			row := models.DailyClosingPayment{
				ClosingID:  closing.ID,
				Method:     p.Method,
				Orders:     p.Orders,
				PaidAmount: p.PaidAmount,
			}
			if err := tx.Create(&row).Error; err != nil {
				return StoreFailure(err)
			}
			closing.Payments = append(closing.Payments, row)
		}
		return nil
	})
	if err != nil {
		return nil, asServiceError(err)
	}
	return &closing, nil
}

// GetByDate loads a saved closing with its breakdowns.
func (s *ClosingService) GetByDate(date time.Time) (*models.DailyClosing, error) {
	var closing models.DailyClosing
	err := s.DB.Preload("Riders").Preload("Payments").
		Where("date = ?", timeutil.ClosingDate(date)).First(&closing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("no closing for %s", timeutil.DateStr(date))
		}
		return nil, StoreFailure(err)
	}
	return &closing, nil
}

// List returns all closings, newest first.
func (s *ClosingService) List() ([]models.DailyClosing, error) {
	var closings []models.DailyClosing
	if err := s.DB.Preload("Riders").Preload("Payments").Order("date desc").Find(&closings).Error; err != nil {
		return nil, StoreFailure(err)
	}
	return closings, nil
}

func (s *ClosingService) compute(db *gorm.DB, now time.Time) (*ClosingSummary, error) {
	start, end := timeutil.DayBoundsUTC(now)

	var blocking int64
	if err := db.Model(&models.Order{}).Where("status IN ?", blockingStatuses).Count(&blocking).Error; err != nil {
		return nil, StoreFailure(err)
	}

	var customers []models.Customer
	if err := db.Where("is_active = ?", true).Find(&customers).Error; err != nil {
		return nil, StoreFailure(err)
	}
	summary := &ClosingSummary{
		Date:             timeutil.DateStr(now),
		CanClose:         blocking == 0,
		InProgressOrders: int(blocking),
	}
	for _, c := range customers {
		switch c.CurrentBalance.Sign() {
		case 1:
			summary.CustomerReceivable = summary.CustomerReceivable.Add(c.CurrentBalance)
		case -1:
			summary.CustomerPayable = summary.CustomerPayable.Add(c.CurrentBalance.Abs())
		}
	}

	var orders []models.Order
	err := db.Preload("Rider").
		Where("created_at >= ? AND created_at < ? AND status <> ?", start, end, models.StatusCancelled).
		Order("id").Find(&orders).Error
	if err != nil {
		return nil, StoreFailure(err)
	}

	riderIdx := map[uint]int{}
	methodIdx := map[string]int{}
	for _, o := range orders {
		summary.TotalPaidAmount = summary.TotalPaidAmount.Add(o.PaidAmount)
		summary.TotalCurrentOrderAmount = summary.TotalCurrentOrderAmount.Add(o.CurrentOrderAmount)
		summary.TotalBottles += o.NumberOfBottles
		summary.TotalOrders++

		switch o.OrderType {
		case models.TypeWalkIn:
			summary.WalkInAmount = summary.WalkInAmount.Add(o.PaidAmount)
		case models.TypeClearBill:
			summary.ClearBillAmount = summary.ClearBillAmount.Add(o.PaidAmount)
		}

		if o.RiderID != nil {
			i, ok := riderIdx[*o.RiderID]
			if !ok {
				name := ""
				if o.Rider != nil {
					name = o.Rider.Name
				}
				summary.Riders = append(summary.Riders, RiderBreakdown{RiderID: *o.RiderID, RiderName: name})
				i = len(summary.Riders) - 1
				riderIdx[*o.RiderID] = i
			}
			r := &summary.Riders[i]
			r.Orders++
			r.Bottles += o.NumberOfBottles
			r.Amount = r.Amount.Add(o.CurrentOrderAmount)
			r.PaidAmount = r.PaidAmount.Add(o.PaidAmount)
		}

		i, ok := methodIdx[o.PaymentMethod]
		if !ok {
			summary.Payments = append(summary.Payments, PaymentBreakdown{Method: o.PaymentMethod})
			i = len(summary.Payments) - 1
			methodIdx[o.PaymentMethod] = i
		}
		p := &summary.Payments[i]
		p.Orders++
		p.PaidAmount = p.PaidAmount.Add(o.PaidAmount)
	}

	summary.BalanceClearedToday = summary.TotalCurrentOrderAmount.Sub(summary.TotalPaidAmount)

	var existing int64
	if err := db.Model(&models.DailyClosing{}).Where("date = ?", timeutil.ClosingDate(now)).Count(&existing).Error; err != nil {
		return nil, StoreFailure(err)
	}
	summary.AlreadyExists = existing > 0
	return summary, nil
}
