package repository

import (
	"khattha_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

// FullQuiz 测验连同其题目和选项
type FullQuiz struct {
	model.Quiz
	Questions []FullQuestion `json:"questions"`
}

type FullQuestion struct {
	model.QuizQuestion
	Options []model.QuizOption `json:"options"`
}

// CreateWithQuestions 在一个事务里写入测验、题目与选项
func (r *QuizRepository) CreateWithQuestions(quiz *model.Quiz, questions []model.QuizQuestion, options [][]model.QuizOption) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quiz).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].QuizID = quiz.ID
			questions[i].Order = i + 1
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
			for j := range options[i] {
				options[i][j].QuestionID = questions[i].ID
				options[i][j].Order = j + 1
				if err := tx.Create(&options[i][j]).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.First(&quiz, id).Error
	return &quiz, err
}

func (r *QuizRepository) GetFullQuiz(id uint) (*FullQuiz, error) {
	quiz, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}

	var questions []model.QuizQuestion
	if err := r.DB.Where("quiz_id = ?", id).Order("`order` asc").Find(&questions).Error; err != nil {
		return nil, err
	}

	full := &FullQuiz{Quiz: *quiz, Questions: make([]FullQuestion, len(questions))}
	for i, q := range questions {
		var opts []model.QuizOption
		if err := r.DB.Where("question_id = ?", q.ID).Order("`order` asc").Find(&opts).Error; err != nil {
			return nil, err
		}
		full.Questions[i] = FullQuestion{QuizQuestion: q, Options: opts}
	}
	return full, nil
}

func (r *QuizRepository) ListBySubject(subjectID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Where("subject_id = ?", subjectID).Order("created_at desc").Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) ListBySubjectAndType(subjectID uint, quizType model.QuizType) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Where("subject_id = ? AND type = ?", subjectID, quizType).
		Order("created_at desc").Find(&quizzes).Error
	return quizzes, err
}

// ListExamsForSubjects 非 daily 的测验（月考/期末），用于考试列表
func (r *QuizRepository) ListExamsForSubjects(subjectIDs []uint) ([]model.Quiz, error) {
	if len(subjectIDs) == 0 {
		return []model.Quiz{}, nil
	}
	var quizzes []model.Quiz
	err := r.DB.Where("subject_id IN ? AND type <> ?", subjectIDs, model.QuizDaily).
		Order("created_at desc").Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) FindDailyByLesson(subjectID uint, dayNumber int) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Where("subject_id = ? AND type = ? AND day_number = ?",
		subjectID, model.QuizDaily, dayNumber).First(&quiz).Error
	return &quiz, err
}

func (r *QuizRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Quiz{}).Count(&count).Error
	return count, err
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

// MarkPublished 幂等：已发布的测验再次发布不产生额外写入
func (r *QuizRepository) MarkPublished(id uint) error {
	return r.DB.Model(&model.Quiz{}).Where("id = ? AND results_published = ?", id, false).
		Update("results_published", true).Error
}

func (r *QuizRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return deleteQuizCascade(tx, id)
	})
}

// deleteQuizCascade 删除测验及其题目、选项和全部学生作答，
// 科目级联删除也复用此路径
func deleteQuizCascade(tx *gorm.DB, quizID uint) error {
	var questionIDs []uint
	if err := tx.Model(&model.QuizQuestion{}).Where("quiz_id = ?", quizID).Pluck("id", &questionIDs).Error; err != nil {
		return err
	}
	if len(questionIDs) > 0 {
		if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.QuizOption{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("quiz_id = ?", quizID).Delete(&model.QuizQuestion{}).Error; err != nil {
		return err
	}
	if err := tx.Where("quiz_id = ?", quizID).Delete(&model.StudentAnswer{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Quiz{}, quizID).Error
}
