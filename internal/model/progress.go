package model

import "time"

// StudentProgress 按 (student, lesson) 记录课程完成状态
type StudentProgress struct {
	BaseModel
	StudentID   uint       `gorm:"index;uniqueIndex:uq_student_lesson,priority:1;not null" json:"studentId"`
	SubjectID   uint       `gorm:"index;not null" json:"subjectId"`
	LessonID    uint       `gorm:"uniqueIndex:uq_student_lesson,priority:2;not null" json:"lessonId"`
	IsCompleted bool       `gorm:"default:false" json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (StudentProgress) TableName() string {
	return "student_progress"
}
