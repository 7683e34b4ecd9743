package repository

import (
	"time"

	"khattha_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// UpsertBatch 以 (student_id, quiz_id, question_id) 为冲突键整批写入。
// 单事务保证提交对调用方是全有或全无的；重复提交覆盖旧行而不是追加。
func (r *AnswerRepository) UpsertBatch(answers []model.StudentAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "student_id"}, {Name: "quiz_id"}, {Name: "question_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"selected_option_id", "text_answer", "image_url",
				"score", "feedback", "submitted_at", "graded_at", "graded_by",
				"updated_at",
			}),
		}).Create(&answers).Error
	})
}

// HasSubmission 判断学生对该测验是否已有作答记录，用于服务端判定首次作答
func (r *AnswerRepository) HasSubmission(studentID, quizID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.StudentAnswer{}).
		Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		Count(&count).Error
	return count > 0, err
}

func (r *AnswerRepository) FindByID(id uint) (*model.StudentAnswer, error) {
	var answer model.StudentAnswer
	err := r.DB.First(&answer, id).Error
	return &answer, err
}

func (r *AnswerRepository) Update(answer *model.StudentAnswer) error {
	return r.DB.Save(answer).Error
}

// SubmissionRow 按测验维度聚合时用到的裸行
type SubmissionRow struct {
	StudentID   uint
	StudentName string
	Score       *int
	SubmittedAt time.Time
	GradedAt    *time.Time
}

// ListByQuiz 连接 users 取学生姓名，供批改端聚合
func (r *AnswerRepository) ListByQuiz(quizID uint) ([]SubmissionRow, error) {
	var rows []SubmissionRow
	err := r.DB.Table("student_answers sa").
		Select("sa.student_id, u.name as student_name, sa.score, sa.submitted_at, sa.graded_at").
		Joins("JOIN users u ON u.id = sa.student_id").
		Where("sa.quiz_id = ? AND sa.deleted_at IS NULL", quizID).
		Scan(&rows).Error
	return rows, err
}

// AnswerDetailRow 单个学生的作答明细，连接题目文本与题型
type AnswerDetailRow struct {
	AnswerID              uint               `json:"answerId"`
	QuestionID            uint               `json:"questionId"`
	Question              string             `json:"question"`
	QuestionType          model.QuestionType `json:"questionType"`
	SelectedOptionID      *uint              `json:"selectedOptionId,omitempty"`
	TextAnswer            string             `json:"textAnswer"`
	ImageURL              string             `json:"imageUrl"`
	Score                 *int               `json:"score,omitempty"`
	Feedback              string             `json:"feedback"`
	SubmittedAt           time.Time          `json:"submittedAt"`
	GradedAt              *time.Time         `json:"gradedAt,omitempty"`
	CorrectAnswerText     string             `json:"correctAnswerText"`
	CorrectAnswerImageURL string             `json:"correctAnswerImageUrl"`
	Options               []model.QuizOption `json:"options,omitempty" gorm:"-"`
}

func (r *AnswerRepository) ListDetailByStudentAndQuiz(studentID, quizID uint) ([]AnswerDetailRow, error) {
	var rows []AnswerDetailRow
	err := r.DB.Table("student_answers sa").
		Select("sa.id as answer_id, sa.question_id, q.question, q.question_type, " +
			"sa.selected_option_id, sa.text_answer, sa.image_url, sa.score, sa.feedback, " +
			"sa.submitted_at, sa.graded_at, q.correct_answer_text, q.correct_answer_image_url").
		Joins("JOIN quiz_questions q ON q.id = sa.question_id").
		Where("sa.student_id = ? AND sa.quiz_id = ? AND sa.deleted_at IS NULL", studentID, quizID).
		Order("q.`order` asc").
		Scan(&rows).Error
	return rows, err
}

// StudentAnswerStats 学生端仪表盘的作答统计
type StudentAnswerStats struct {
	QuizzesTaken int64
	ScoreSum     int64
	ScoredCount  int64
}

func (r *AnswerRepository) StatsByStudent(studentID uint) (StudentAnswerStats, error) {
	var stats StudentAnswerStats
	err := r.DB.Model(&model.StudentAnswer{}).
		Select("COUNT(DISTINCT quiz_id) as quizzes_taken, COALESCE(SUM(score), 0) as score_sum, COUNT(score) as scored_count").
		Where("student_id = ?", studentID).
		Scan(&stats).Error
	return stats, err
}

// CountUngraded 待批改的作答行数，管理端仪表盘用
func (r *AnswerRepository) CountUngraded() (int64, error) {
	var count int64
	err := r.DB.Model(&model.StudentAnswer{}).
		Where("graded_at IS NULL").
		Count(&count).Error
	return count, err
}

// AttemptRow 考试列表状态查询用的裸行
type AttemptRow struct {
	QuizID      uint
	Score       *int
	SubmittedAt time.Time
	GradedAt    *time.Time
}

func (r *AnswerRepository) ListAttempts(studentID uint, quizIDs []uint) ([]AttemptRow, error) {
	if len(quizIDs) == 0 {
		return []AttemptRow{}, nil
	}
	var rows []AttemptRow
	err := r.DB.Model(&model.StudentAnswer{}).
		Select("quiz_id, score, submitted_at, graded_at").
		Where("student_id = ? AND quiz_id IN ?", studentID, quizIDs).
		Scan(&rows).Error
	return rows, err
}
