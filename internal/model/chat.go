package model

// ChatHistory 学生与智能助教的问答记录，按科目归档
type ChatHistory struct {
	BaseModel
	StudentID uint   `gorm:"index;not null" json:"studentId"`
	SubjectID uint   `gorm:"index;not null" json:"subjectId"`
	Question  string `gorm:"type:text;not null" json:"question"`
	Answer    string `gorm:"type:text;not null" json:"answer"`
}

func (ChatHistory) TableName() string {
	return "chat_history"
}
