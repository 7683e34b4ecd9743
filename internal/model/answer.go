package model

import "time"

// StudentAnswer 一条作答记录，天然键为 (student, quiz, question)。
// 提交使用 upsert，重复提交不会产生重复行。
type StudentAnswer struct {
	BaseModel
	StudentID  uint `gorm:"index;uniqueIndex:uq_student_quiz_question,priority:1;not null" json:"studentId"`
	QuizID     uint `gorm:"index;uniqueIndex:uq_student_quiz_question,priority:2;not null" json:"quizId"`
	QuestionID uint `gorm:"uniqueIndex:uq_student_quiz_question,priority:3;not null" json:"questionId"`

	// 三种作答形态按题型互斥：选择题只有 SelectedOptionID，
	// 简答/论述题只有 TextAnswer 和/或 ImageURL
	SelectedOptionID *uint  `json:"selectedOptionId,omitempty"`
	TextAnswer       string `gorm:"type:text" json:"textAnswer"`
	ImageURL         string `gorm:"type:text" json:"imageUrl"`

	// Score 为空表示待批改；GradedAt 为空等价于未批改
	Score       *int       `json:"score,omitempty"`
	Feedback    string     `gorm:"type:text" json:"feedback"`
	SubmittedAt time.Time  `json:"submittedAt"`
	GradedAt    *time.Time `json:"gradedAt,omitempty"`
	GradedBy    *uint      `json:"gradedBy,omitempty"`
}

func (StudentAnswer) TableName() string {
	return "student_answers"
}
