package services

import (
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/smartsupply/delivery-app/internal/models"
)

// CustomerService covers the customer directory: creation, updates,
// activation, search, and the walk-in sentinel. Balance mutations are the
// OrderService's job; this service never writes current_balance.
type CustomerService struct {
	DB *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService { return &CustomerService{DB: db} }

type CustomerInput struct {
	Name            string
	Phone           string
	Whatsapp        string
	HouseNo         string
	StreetNo        string
	Area            string
	City            string
	BottleCount     int
	AvgDaysToRefill int
}

func (s *CustomerService) Create(in CustomerInput) (*models.Customer, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, InvalidRequestf("name is required")
	}
	c := models.Customer{
		Name:            strings.TrimSpace(in.Name),
		Phone:           in.Phone,
		Whatsapp:        in.Whatsapp,
		HouseNo:         in.HouseNo,
		StreetNo:        in.StreetNo,
		Area:            in.Area,
		City:            in.City,
		BottleCount:     in.BottleCount,
		AvgDaysToRefill: in.AvgDaysToRefill,
		IsActive:        true,
	}
	if err := s.DB.Create(&c).Error; err != nil {
		return nil, StoreFailure(err)
	}
	return &c, nil
}

func (s *CustomerService) Update(id uint, in CustomerInput) (*models.Customer, error) {
	var c models.Customer
	if err := s.DB.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("customer %d not found", id)
		}
		return nil, StoreFailure(err)
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, InvalidRequestf("name is required")
	}
	updates := map[string]any{
		"name":               strings.TrimSpace(in.Name),
		"phone":              in.Phone,
		"whatsapp":           in.Whatsapp,
		"house_no":           in.HouseNo,
		"street_no":          in.StreetNo,
		"area":               in.Area,
		"city":               in.City,
		"bottle_count":       in.BottleCount,
		"avg_days_to_refill": in.AvgDaysToRefill,
	}
	if err := s.DB.Model(&c).Updates(updates).Error; err != nil {
		return nil, StoreFailure(err)
	}
	if err := s.DB.First(&c, id).Error; err != nil {
		return nil, StoreFailure(err)
	}
	return &c, nil
}

// SetActive flips the active flag. Customers are never hard-deleted; their
// ledger history has to stay intact.
func (s *CustomerService) SetActive(id uint, active bool) (*models.Customer, error) {
	var c models.Customer
	if err := s.DB.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("customer %d not found", id)
		}
		return nil, StoreFailure(err)
	}
	if err := s.DB.Model(&c).Update("is_active", active).Error; err != nil {
		return nil, StoreFailure(err)
	}
	c.IsActive = active
	return &c, nil
}

// List returns customers, optionally filtered by status ("active" /
// "inactive") and a search term matched against name, phone, whatsapp and
// house number. Recent orders are preloaded for list views.
func (s *CustomerService) List(status, term string) ([]models.Customer, error) {
	q := s.DB.Order("created_at desc").Preload("Orders", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at desc").Limit(5)
	})
	switch strings.ToLower(status) {
	case "active":
		q = q.Where("is_active = ?", true)
	case "inactive":
		q = q.Where("is_active = ?", false)
	}
	if term = strings.TrimSpace(term); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where(
			"lower(name) LIKE ? OR phone LIKE ? OR whatsapp LIKE ? OR lower(house_no) LIKE ?",
			like, "%"+term+"%", "%"+term+"%", like,
		)
	}
	var customers []models.Customer
	if err := q.Find(&customers).Error; err != nil {
		return nil, StoreFailure(err)
	}
	return customers, nil
}

// Get loads a customer with the full order history, newest first.
func (s *CustomerService) Get(id uint) (*models.Customer, error) {
	var c models.Customer
	err := s.DB.Preload("Orders", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at desc").Preload("Rider")
	}).First(&c, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("customer %d not found", id)
		}
		return nil, StoreFailure(err)
	}
	return &c, nil
}

// WalkIn returns the walk-in sentinel customer, creating it on first use.
func (s *CustomerService) WalkIn() (*models.Customer, error) {
	var c models.Customer
	err := s.DB.Where("name = ?", models.WalkInCustomerName).First(&c).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, StoreFailure(err)
	}
	c = models.Customer{Name: models.WalkInCustomerName, IsActive: true}
	if err := s.DB.Create(&c).Error; err != nil {
		return nil, StoreFailure(err)
	}
	return &c, nil
}

func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(n), nil
}
