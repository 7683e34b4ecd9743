package repository

import (
	"khattha_backend/internal/model"

	"gorm.io/gorm"
)

type SubjectRepository struct {
	DB *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) *SubjectRepository {
	return &SubjectRepository{DB: db}
}

func (r *SubjectRepository) Create(subject *model.Subject) error {
	return r.DB.Create(subject).Error
}

func (r *SubjectRepository) FindByID(id uint) (*model.Subject, error) {
	var subject model.Subject
	err := r.DB.First(&subject, id).Error
	return &subject, err
}

func (r *SubjectRepository) ListAll() ([]model.Subject, error) {
	var subjects []model.Subject
	err := r.DB.Order("name asc").Find(&subjects).Error
	return subjects, err
}

// ListByStudent 只返回学生持有有效订阅的科目
func (r *SubjectRepository) ListByStudent(studentID uint) ([]model.Subject, error) {
	var subjects []model.Subject
	err := r.DB.
		Joins("JOIN access_permissions ap ON ap.subject_id = subjects.id").
		Where("ap.student_id = ? AND ap.has_access = ? AND ap.deleted_at IS NULL", studentID, true).
		Order("subjects.name asc").
		Find(&subjects).Error
	return subjects, err
}

func (r *SubjectRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Subject{}).Count(&count).Error
	return count, err
}

func (r *SubjectRepository) Update(subject *model.Subject) error {
	return r.DB.Save(subject).Error
}

// Delete 级联删除科目下的课程、测验（含题目/选项/作答）、授权、进度与聊天记录
func (r *SubjectRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var quizIDs []uint
		if err := tx.Model(&model.Quiz{}).Where("subject_id = ?", id).Pluck("id", &quizIDs).Error; err != nil {
			return err
		}
		for _, quizID := range quizIDs {
			if err := deleteQuizCascade(tx, quizID); err != nil {
				return err
			}
		}
		if err := tx.Where("subject_id = ?", id).Delete(&model.Lesson{}).Error; err != nil {
			return err
		}
		if err := tx.Where("subject_id = ?", id).Delete(&model.AccessPermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("subject_id = ?", id).Delete(&model.StudentProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("subject_id = ?", id).Delete(&model.ChatHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Subject{}, id).Error
	})
}
