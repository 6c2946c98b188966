package repository

import (
	"github.com/mkweon/barunpos-backend/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TableRepository interface {
	Create(table *model.RestaurantTable) error
	FindByID(businessID, id uint) (*model.RestaurantTable, error)
	FindByIDForUpdate(tx *gorm.DB, businessID, id uint) (*model.RestaurantTable, error)
	List(businessID uint) ([]model.RestaurantTable, error)
	Update(table *model.RestaurantTable) error
	UpdateStatus(tx *gorm.DB, businessID, id uint, status model.TableStatus) error
}

type tableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) Create(table *model.RestaurantTable) error {
	return r.db.Create(table).Error
}

func (r *tableRepository) FindByID(businessID, id uint) (*model.RestaurantTable, error) {
	var table model.RestaurantTable
	if err := r.db.Where("business_id = ?", businessID).
		First(&table, id).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepository) FindByIDForUpdate(tx *gorm.DB, businessID, id uint) (*model.RestaurantTable, error) {
	var table model.RestaurantTable
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("business_id = ?", businessID).
		First(&table, id).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepository) List(businessID uint) ([]model.RestaurantTable, error) {
	var tables []model.RestaurantTable
	if err := r.db.Where("business_id = ?", businessID).
		Order("number ASC").
		Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *tableRepository) Update(table *model.RestaurantTable) error {
	return r.db.Save(table).Error
}

func (r *tableRepository) UpdateStatus(tx *gorm.DB, businessID, id uint, status model.TableStatus) error {
	result := tx.Model(&model.RestaurantTable{}).
		Where("business_id = ? AND id = ?", businessID, id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
