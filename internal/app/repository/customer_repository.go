package repository

import (
	"github.com/mkweon/barunpos-backend/internal/app/model"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(customer *model.Customer) error
	FindByID(businessID, id uint) (*model.Customer, error)
	FindByPhone(businessID uint, phone string) (*model.Customer, error)
	List(businessID uint) ([]model.Customer, error)
	Update(customer *model.Customer) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(customer *model.Customer) error {
	return r.db.Create(customer).Error
}

func (r *customerRepository) FindByID(businessID, id uint) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.Where("business_id = ?", businessID).
		First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByPhone(businessID uint, phone string) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.Where("business_id = ? AND phone = ?", businessID, phone).
		First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) List(businessID uint) ([]model.Customer, error) {
	var customers []model.Customer
	if err := r.db.Where("business_id = ?", businessID).
		Order("name ASC").
		Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *customerRepository) Update(customer *model.Customer) error {
	return r.db.Save(customer).Error
}
