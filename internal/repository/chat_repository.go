package repository

import (
	"khattha_backend/internal/model"

	"gorm.io/gorm"
)

type ChatRepository struct {
	DB *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{DB: db}
}

func (r *ChatRepository) Create(entry *model.ChatHistory) error {
	return r.DB.Create(entry).Error
}

func (r *ChatRepository) ListByStudentAndSubject(studentID, subjectID uint, limit int) ([]model.ChatHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	var history []model.ChatHistory
	err := r.DB.Where("student_id = ? AND subject_id = ?", studentID, subjectID).
		Order("created_at desc").Limit(limit).Find(&history).Error
	return history, err
}
