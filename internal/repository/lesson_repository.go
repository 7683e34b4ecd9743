package repository

import (
	"khattha_backend/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) Create(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *LessonRepository) FindByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, id).Error
	return &lesson, err
}

func (r *LessonRepository) ListBySubject(subjectID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("subject_id = ?", subjectID).
		Order("day_number asc, `order` asc").Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) CountBySubjects(subjectIDs []uint) (int64, error) {
	if len(subjectIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.DB.Model(&model.Lesson{}).Where("subject_id IN ?", subjectIDs).Count(&count).Error
	return count, err
}

func (r *LessonRepository) Update(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}

func (r *LessonRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Lesson{}, id).Error
}
