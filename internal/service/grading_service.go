package service

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"khattha_backend/internal/model"
	"khattha_backend/internal/repository"
	"khattha_backend/internal/util"
	"khattha_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GradingService struct {
	QuizRepo   *repository.QuizRepository
	AnswerRepo *repository.AnswerRepository
	Clock      Clock
	Notifier   *NotificationService
}

func NewGradingService(quizRepo *repository.QuizRepository, answerRepo *repository.AnswerRepository,
	clock Clock, notifier *NotificationService) *GradingService {
	return &GradingService{QuizRepo: quizRepo, AnswerRepo: answerRepo, Clock: clock, Notifier: notifier}
}

// GradeAnswer 人工批改一条作答。重复批改直接覆盖（last write wins），
// 因此批改操作可以无条件重试。
func (s *GradingService) GradeAnswer(graderID, answerID uint, score int, feedback string) (*model.StudentAnswer, error) {
	answer, err := s.AnswerRepo.FindByID(answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAnswerNotFound
		}
		return nil, err
	}

	gradedAt := s.Clock.Now()
	answer.Score = &score
	answer.Feedback = feedback
	answer.GradedAt = &gradedAt
	answer.GradedBy = &graderID

	if err := s.AnswerRepo.Update(answer); err != nil {
		return nil, err
	}
	return answer, nil
}

// PublishResults 打开非 daily 测验的成绩发布闸门。
// 单调幂等：已发布再调用是 no-op，不报错也不会撤销发布。
func (s *GradingService) PublishResults(quizID uint) error {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuizNotFound
		}
		return err
	}
	if quiz.Type == model.QuizDaily {
		return util.ErrDailyQuizNotPublishable
	}
	if quiz.ResultsPublished {
		return nil
	}
	if err := s.QuizRepo.MarkPublished(quizID); err != nil {
		return err
	}
	s.notifyPublished(quiz)
	return nil
}

// notifyPublished 给交过卷的学生发成绩发布通知。通知失败不影响发布。
func (s *GradingService) notifyPublished(quiz *model.Quiz) {
	if s.Notifier == nil {
		return
	}
	rows, err := s.AnswerRepo.ListByQuiz(quiz.ID)
	if err != nil {
		logger.Log.Warn("failed to list submitters for publish notification",
			zap.Uint("quizId", quiz.ID), zap.Error(err))
		return
	}

	seen := make(map[uint]bool, len(rows))
	for _, row := range rows {
		if seen[row.StudentID] {
			continue
		}
		seen[row.StudentID] = true
		studentID := row.StudentID
		if _, err := s.Notifier.Send(NotificationReq{
			Title:     "成绩已发布",
			Message:   fmt.Sprintf("《%s》的成绩已经发布", quiz.Title),
			Type:      model.NotifyGrade,
			RelatedID: &quiz.ID,
			UserID:    &studentID,
		}); err != nil {
			logger.Log.Warn("failed to send publish notification",
				zap.Uint("studentId", studentID), zap.Error(err))
		}
	}
}

// SubmissionSummary 批改端的每学生聚合视图
type SubmissionSummary struct {
	StudentID   uint      `json:"studentId"`
	StudentName string    `json:"studentName"`
	Percentage  int       `json:"percentage"`
	IsGraded    bool      `json:"isGraded"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// ListSubmissions 按学生聚合测验的全部作答。
// 百分比只在已评分子集上计算；没有任何已评分行时约定为 0。
// IsGraded 要求该学生的每一行都已评分。
func (s *GradingService) ListSubmissions(quizID uint) ([]SubmissionSummary, error) {
	if _, err := s.QuizRepo.FindByID(quizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	rows, err := s.AnswerRepo.ListByQuiz(quizID)
	if err != nil {
		return nil, err
	}
	return buildSubmissionSummaries(rows), nil
}

func buildSubmissionSummaries(rows []repository.SubmissionRow) []SubmissionSummary {
	type agg struct {
		name        string
		total       int
		graded      int
		scoreSum    int
		scored      int
		submittedAt time.Time
	}

	perStudent := make(map[uint]*agg)
	order := make([]uint, 0)
	for _, row := range rows {
		a := perStudent[row.StudentID]
		if a == nil {
			a = &agg{name: row.StudentName, submittedAt: row.SubmittedAt}
			perStudent[row.StudentID] = a
			order = append(order, row.StudentID)
		}
		a.total++
		if row.SubmittedAt.Before(a.submittedAt) {
			a.submittedAt = row.SubmittedAt
		}
		if row.GradedAt != nil {
			a.graded++
		}
		if row.Score != nil {
			a.scoreSum += *row.Score
			a.scored++
		}
	}

	summaries := make([]SubmissionSummary, 0, len(perStudent))
	for _, studentID := range order {
		a := perStudent[studentID]
		summaries = append(summaries, SubmissionSummary{
			StudentID:   studentID,
			StudentName: a.name,
			Percentage:  percentage(a.scoreSum, a.scored),
			IsGraded:    a.total > 0 && a.graded == a.total,
			SubmittedAt: a.submittedAt,
		})
	}

	// 百分比降序，平分时先交卷的在前
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Percentage != summaries[j].Percentage {
			return summaries[i].Percentage > summaries[j].Percentage
		}
		return summaries[i].SubmittedAt.Before(summaries[j].SubmittedAt)
	})
	return summaries
}

// percentage 已评分行的得分率；分母为空约定为 0
func percentage(scoreSum, scoredCount int) int {
	if scoredCount == 0 {
		return 0
	}
	return int(math.Round(float64(scoreSum) / float64(scoredCount) * 100))
}

// GetSubmissionDetail 单个学生的逐题作答，选择题附完整选项集
// 以便批改界面展示所选项与正确项
func (s *GradingService) GetSubmissionDetail(studentID, quizID uint) ([]repository.AnswerDetailRow, error) {
	if _, err := s.QuizRepo.FindByID(quizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	rows, err := s.AnswerRepo.ListDetailByStudentAndQuiz(studentID, quizID)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		if rows[i].QuestionType != model.MultipleChoice {
			continue
		}
		var options []model.QuizOption
		if err := s.AnswerRepo.DB.Where("question_id = ?", rows[i].QuestionID).
			Order("`order` asc").Find(&options).Error; err != nil {
			return nil, err
		}
		rows[i].Options = options
	}
	return rows, nil
}
