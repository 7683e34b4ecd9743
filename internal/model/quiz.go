package model

type QuizType string

const (
	QuizDaily    QuizType = "daily"
	QuizMonthly  QuizType = "monthly"
	QuizSemester QuizType = "semester"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	ShortAnswer    QuestionType = "short_answer"
	Essay          QuestionType = "essay"
)

// swagger:model Quiz
type Quiz struct {
	BaseModel
	SubjectID   uint     `gorm:"index;not null" json:"subjectId"`
	Title       string   `gorm:"size:255;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Type        QuizType `gorm:"size:20;not null" json:"type"`
	// 仅 daily 测验有意义，对应课程的学习日
	DayNumber *int `gorm:"index" json:"dayNumber,omitempty"`
	// 非 daily 测验的成绩发布闸门，daily 测验提交即可见
	ResultsPublished    bool   `gorm:"default:false" json:"resultsPublished"`
	ModelAnswerText     string `gorm:"type:text" json:"modelAnswerText"`
	ModelAnswerImageURL string `gorm:"type:text" json:"modelAnswerImageUrl"`
	CreatedBy           uint   `gorm:"index" json:"createdBy"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// swagger:model QuizQuestion
type QuizQuestion struct {
	BaseModel
	QuizID       uint         `gorm:"index;not null" json:"quizId"`
	Question     string       `gorm:"type:text;not null" json:"question"`
	QuestionType QuestionType `gorm:"size:30;not null" json:"questionType"`
	// 参考答案，仅用于人工批改时对照，不参与自动评分
	CorrectAnswerText     string `gorm:"type:text" json:"correctAnswerText"`
	CorrectAnswerImageURL string `gorm:"type:text" json:"correctAnswerImageUrl"`
	Order                 int    `gorm:"not null" json:"order"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// swagger:model QuizOption
type QuizOption struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	Order      int    `gorm:"not null" json:"order"`
}

func (QuizOption) TableName() string {
	return "quiz_options"
}
