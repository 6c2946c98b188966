package repository

import (
	"github.com/mkweon/barunpos-backend/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegisterRepository interface {
	Create(session *model.CashRegisterSession) error
	FindByID(businessID, id uint) (*model.CashRegisterSession, error)
	FindByIDForUpdate(tx *gorm.DB, businessID, id uint) (*model.CashRegisterSession, error)
	Update(tx *gorm.DB, session *model.CashRegisterSession) error
	List(businessID uint, includeArchived bool) ([]model.CashRegisterSession, error)
	SetArchived(businessID, id uint, archived bool) error
}

type registerRepository struct {
	db *gorm.DB
}

func NewRegisterRepository(db *gorm.DB) RegisterRepository {
	return &registerRepository{db: db}
}

func (r *registerRepository) Create(session *model.CashRegisterSession) error {
	return r.db.Create(session).Error
}

func (r *registerRepository) FindByID(businessID, id uint) (*model.CashRegisterSession, error) {
	var session model.CashRegisterSession
	if err := r.db.Preload("Staff").
		Where("business_id = ?", businessID).
		First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *registerRepository) FindByIDForUpdate(tx *gorm.DB, businessID, id uint) (*model.CashRegisterSession, error) {
	var session model.CashRegisterSession
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("business_id = ?", businessID).
		First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *registerRepository) Update(tx *gorm.DB, session *model.CashRegisterSession) error {
	return tx.Save(session).Error
}

func (r *registerRepository) List(businessID uint, includeArchived bool) ([]model.CashRegisterSession, error) {
	query := r.db.Preload("Staff").Where("business_id = ?", businessID)
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}

	var sessions []model.CashRegisterSession
	if err := query.Order("opening_time DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *registerRepository) SetArchived(businessID, id uint, archived bool) error {
	result := r.db.Model(&model.CashRegisterSession{}).
		Where("business_id = ? AND id = ?", businessID, id).
		Update("is_archived", archived)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
