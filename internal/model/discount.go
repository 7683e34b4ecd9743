package model

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// swagger:model Discount
type Discount struct {
	BaseModel
	Title         string       `gorm:"size:255;not null" json:"title"`
	Description   string       `gorm:"type:text" json:"description"`
	DiscountType  DiscountType `gorm:"size:20;not null" json:"discountType"`
	DiscountValue int          `gorm:"not null" json:"discountValue"`
	Company       string       `gorm:"size:255;not null" json:"company"`
	ContactNumber string       `gorm:"size:20" json:"contactNumber"`
	ImageURL      string       `gorm:"type:text" json:"imageUrl"`
	IsActive      bool         `gorm:"default:true" json:"isActive"`
	CreatedBy     uint         `gorm:"index" json:"createdBy"`
}

func (Discount) TableName() string {
	return "discounts"
}
