package repository

import (
	"khattha_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Upsert 以 (student_id, lesson_id) 为键更新完成状态
func (r *ProgressRepository) Upsert(progress *model.StudentProgress) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_completed", "completed_at", "updated_at",
		}),
	}).Create(progress).Error
}

func (r *ProgressRepository) ListByStudentAndSubject(studentID, subjectID uint) ([]model.StudentProgress, error) {
	var progress []model.StudentProgress
	err := r.DB.Where("student_id = ? AND subject_id = ?", studentID, subjectID).
		Find(&progress).Error
	return progress, err
}

func (r *ProgressRepository) CountCompleted(studentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.StudentProgress{}).
		Where("student_id = ? AND is_completed = ?", studentID, true).
		Count(&count).Error
	return count, err
}
