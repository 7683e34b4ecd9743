package repository

import (
	"khattha_backend/internal/model"

	"gorm.io/gorm"
)

type DiscountRepository struct {
	DB *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) *DiscountRepository {
	return &DiscountRepository{DB: db}
}

func (r *DiscountRepository) Create(discount *model.Discount) error {
	return r.DB.Create(discount).Error
}

func (r *DiscountRepository) ListAll() ([]model.Discount, error) {
	var discounts []model.Discount
	err := r.DB.Order("created_at desc").Find(&discounts).Error
	return discounts, err
}

func (r *DiscountRepository) ListActive() ([]model.Discount, error) {
	var discounts []model.Discount
	err := r.DB.Where("is_active = ?", true).Order("created_at desc").Find(&discounts).Error
	return discounts, err
}

func (r *DiscountRepository) Update(discount *model.Discount) error {
	return r.DB.Save(discount).Error
}

func (r *DiscountRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Discount{}, id).Error
}
