package model

type NotificationType string

const (
	NotifyLesson   NotificationType = "lesson"
	NotifyQuiz     NotificationType = "quiz"
	NotifyDiscount NotificationType = "discount"
	NotifyGrade    NotificationType = "grade"
	NotifyGeneral  NotificationType = "general"
)

// swagger:model Notification
type Notification struct {
	BaseModel
	UserID  uint             `gorm:"index;not null" json:"userId"`
	Title   string           `gorm:"size:255;not null" json:"title"`
	Message string           `gorm:"type:text;not null" json:"message"`
	Type    NotificationType `gorm:"size:20;not null" json:"type"`
	// 指向相关实体（课程/测验/折扣）的 ID，可为空
	RelatedID *uint `json:"relatedId,omitempty"`
	IsRead    bool  `gorm:"default:false" json:"isRead"`
}

func (Notification) TableName() string {
	return "notifications"
}
