package model

// swagger:model Subject
type Subject struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	// 学习天数，日测验的 dayNumber 取值范围为 1..NumberOfDays
	NumberOfDays  int    `gorm:"default:30" json:"numberOfDays"`
	Curriculum    string `gorm:"type:text" json:"curriculum"`
	CurriculumURL string `gorm:"type:text" json:"curriculumUrl"`
	CreatedBy     uint   `gorm:"index" json:"createdBy"`
}

func (Subject) TableName() string {
	return "subjects"
}

// HasCurriculum 助教功能要求科目已上传课程大纲（文本或附件二选一）
func (s *Subject) HasCurriculum() bool {
	return s.Curriculum != "" || s.CurriculumURL != ""
}
