package model

// swagger:model Lesson
type Lesson struct {
	BaseModel
	SubjectID uint   `gorm:"index;not null" json:"subjectId"`
	Title     string `gorm:"size:255;not null" json:"title"`
	Content   string `gorm:"type:text;not null" json:"content"`
	DayNumber int    `gorm:"not null" json:"dayNumber"`
	Order     int    `gorm:"default:1" json:"order"`
	CreatedBy uint   `gorm:"index" json:"createdBy"`
}

func (Lesson) TableName() string {
	return "lessons"
}
