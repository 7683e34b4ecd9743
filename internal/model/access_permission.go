package model

import "time"

// AccessPermission 学生对科目的订阅授权。没有记录或 HasAccess=false
// 一律视为无权访问（fail closed）。
type AccessPermission struct {
	BaseModel
	StudentID uint `gorm:"index;uniqueIndex:uq_student_subject,priority:1;not null" json:"studentId"`
	SubjectID uint `gorm:"index;uniqueIndex:uq_student_subject,priority:2;not null" json:"subjectId"`
	HasAccess bool `gorm:"default:true" json:"hasAccess"`
	// 可选的有效期窗口
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	CreatedBy uint       `gorm:"index" json:"createdBy"`
}

func (AccessPermission) TableName() string {
	return "access_permissions"
}
