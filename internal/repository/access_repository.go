package repository

import (
	"khattha_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccessRepository struct {
	DB *gorm.DB
}

func NewAccessRepository(db *gorm.DB) *AccessRepository {
	return &AccessRepository{DB: db}
}

func (r *AccessRepository) FindByStudentAndSubject(studentID, subjectID uint) (*model.AccessPermission, error) {
	var permission model.AccessPermission
	err := r.DB.Where("student_id = ? AND subject_id = ?", studentID, subjectID).
		First(&permission).Error
	return &permission, err
}

// Grant 重复授权更新现有行而不是插入重复记录
func (r *AccessRepository) Grant(permission *model.AccessPermission) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "subject_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"has_access", "start_date", "end_date", "updated_at",
		}),
	}).Create(permission).Error
}

func (r *AccessRepository) Revoke(studentID, subjectID uint) error {
	return r.DB.Where("student_id = ? AND subject_id = ?", studentID, subjectID).
		Delete(&model.AccessPermission{}).Error
}

// PermissionRow 管理端授权列表，带学生与科目名称
type PermissionRow struct {
	ID          uint   `json:"id"`
	StudentID   uint   `json:"studentId"`
	StudentName string `json:"studentName"`
	SubjectID   uint   `json:"subjectId"`
	SubjectName string `json:"subjectName"`
	HasAccess   bool   `json:"hasAccess"`
}

func (r *AccessRepository) ListWithNames() ([]PermissionRow, error) {
	var rows []PermissionRow
	err := r.DB.Table("access_permissions ap").
		Select("ap.id, ap.student_id, u.name as student_name, ap.subject_id, s.name as subject_name, ap.has_access").
		Joins("LEFT JOIN users u ON u.id = ap.student_id").
		Joins("LEFT JOIN subjects s ON s.id = ap.subject_id").
		Where("ap.deleted_at IS NULL").
		Scan(&rows).Error
	return rows, err
}
