package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"khattha_backend/internal/model"
	"khattha_backend/internal/repository"
	"khattha_backend/internal/util"
	"khattha_backend/pkg/logger"
	"khattha_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuizService struct {
	QuizRepo   *repository.QuizRepository
	AnswerRepo *repository.AnswerRepository
	Clock      Clock
}

func NewQuizService(quizRepo *repository.QuizRepository, answerRepo *repository.AnswerRepository, clock Clock) *QuizService {
	return &QuizService{QuizRepo: quizRepo, AnswerRepo: answerRepo, Clock: clock}
}

type QuizOptionReq struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuizQuestionReq struct {
	Question     string             `json:"question" binding:"required"`
	QuestionType model.QuestionType `json:"questionType" binding:"required"`
	Options      []QuizOptionReq    `json:"options"`
}

type CreateQuizReq struct {
	SubjectID   uint              `json:"subjectId" binding:"required"`
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	Type        model.QuizType    `json:"type" binding:"required"`
	DayNumber   *int              `json:"dayNumber"`
	Questions   []QuizQuestionReq `json:"questions" binding:"required"`
}

// CreateQuiz 校验全部通过后才落库，校验失败不产生任何写入
func (s *QuizService) CreateQuiz(creatorID uint, req CreateQuizReq) (*model.Quiz, error) {
	if err := validateCreateQuiz(req); err != nil {
		return nil, err
	}

	quiz := &model.Quiz{
		SubjectID:   req.SubjectID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		DayNumber:   req.DayNumber,
		CreatedBy:   creatorID,
	}

	questions := make([]model.QuizQuestion, len(req.Questions))
	options := make([][]model.QuizOption, len(req.Questions))
	for i, q := range req.Questions {
		questions[i] = model.QuizQuestion{
			Question:     q.Question,
			QuestionType: q.QuestionType,
		}
		opts := make([]model.QuizOption, len(q.Options))
		for j, o := range q.Options {
			opts[j] = model.QuizOption{Text: o.Text, IsCorrect: o.IsCorrect}
		}
		options[i] = opts
	}

	if err := s.QuizRepo.CreateWithQuestions(quiz, questions, options); err != nil {
		return nil, err
	}
	return quiz, nil
}

func validateCreateQuiz(req CreateQuizReq) error {
	switch req.Type {
	case model.QuizDaily:
		if req.DayNumber == nil || *req.DayNumber < 1 {
			return fmt.Errorf("%w: daily quiz requires a positive dayNumber", util.ErrValidation)
		}
	case model.QuizMonthly, model.QuizSemester:
		// 非 daily 测验不按学习日定位
	default:
		return fmt.Errorf("%w: unknown quiz type %q", util.ErrValidation, req.Type)
	}

	if len(req.Questions) == 0 {
		return fmt.Errorf("%w: quiz requires at least one question", util.ErrValidation)
	}

	for i, q := range req.Questions {
		switch q.QuestionType {
		case model.MultipleChoice:
			if len(q.Options) < 2 {
				return fmt.Errorf("%w: question %d needs at least two options", util.ErrValidation, i+1)
			}
			hasCorrect := false
			for _, o := range q.Options {
				if o.IsCorrect {
					hasCorrect = true
					break
				}
			}
			if !hasCorrect {
				return fmt.Errorf("%w: question %d has no option marked correct", util.ErrValidation, i+1)
			}
		case model.ShortAnswer, model.Essay:
			if len(q.Options) > 0 {
				return fmt.Errorf("%w: question %d is not multiple choice and cannot own options", util.ErrValidation, i+1)
			}
		default:
			return fmt.Errorf("%w: question %d has unknown type %q", util.ErrValidation, i+1, q.QuestionType)
		}
	}
	return nil
}

// AttachModelAnswer 测验创建后由管理员补充范例答案
func (s *QuizService) AttachModelAnswer(quizID uint, text, imageURL string) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	quiz.ModelAnswerText = text
	quiz.ModelAnswerImageURL = imageURL
	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) GetFullQuiz(quizID uint) (*repository.FullQuiz, error) {
	full, err := s.QuizRepo.GetFullQuiz(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return full, nil
}

// StudentQuestion 学生答题视图，不暴露选项正误和参考答案
type StudentQuestion struct {
	ID           uint               `json:"id"`
	Question     string             `json:"question"`
	QuestionType model.QuestionType `json:"questionType"`
	Order        int                `json:"order"`
	Options      []StudentOption    `json:"options,omitempty"`
}

type StudentOption struct {
	ID    uint   `json:"id"`
	Text  string `json:"text"`
	Order int    `json:"order"`
}

type StudentQuiz struct {
	ID          uint              `json:"id"`
	SubjectID   uint              `json:"subjectId"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Type        model.QuizType    `json:"type"`
	DayNumber   *int              `json:"dayNumber,omitempty"`
	Questions   []StudentQuestion `json:"questions"`
}

// GetQuizForStudent 返回答题用的试卷；正确答案留在服务端
func (s *QuizService) GetQuizForStudent(quizID uint) (*StudentQuiz, error) {
	full, err := s.GetFullQuiz(quizID)
	if err != nil {
		return nil, err
	}

	questions := make([]StudentQuestion, len(full.Questions))
	for i, q := range full.Questions {
		sq := StudentQuestion{
			ID:           q.ID,
			Question:     q.Question,
			QuestionType: q.QuestionType,
			Order:        q.Order,
		}
		for _, o := range q.Options {
			sq.Options = append(sq.Options, StudentOption{ID: o.ID, Text: o.Text, Order: o.Order})
		}
		questions[i] = sq
	}

	return &StudentQuiz{
		ID:          full.ID,
		SubjectID:   full.SubjectID,
		Title:       full.Title,
		Description: full.Description,
		Type:        full.Type,
		DayNumber:   full.DayNumber,
		Questions:   questions,
	}, nil
}

type RawAnswer struct {
	QuestionID       uint   `json:"questionId" binding:"required"`
	SelectedOptionID *uint  `json:"selectedOptionId"`
	TextAnswer       string `json:"textAnswer"`
	ImageURL         string `json:"imageUrl"`
}

type SubmitQuizReq struct {
	Answers []RawAnswer `json:"answers" binding:"required"`
	// 客户端的首次作答标记仅作提示，实际判定以服务端已有记录为准
	IsFirstAttempt bool `json:"isFirstAttempt"`
}

// SubmissionResult 服务端权威的正确数/总题数，避免客户端自行聚合产生分歧
type SubmissionResult struct {
	CorrectCount   int  `json:"correctCount"`
	TotalQuestions int  `json:"totalQuestions"`
	FirstAttempt   bool `json:"firstAttempt"`
	ScoreStored    bool `json:"scoreStored"`
}

// Submit 记录一次作答并对选择题自动评分。
// 整批作答在一个事务内 upsert，重复提交不会累积重复行；
// daily 测验只有首次作答会持久化分数，但返回值始终给出本次的对错统计。
func (s *QuizService) Submit(studentID, quizID uint, req SubmitQuizReq) (*SubmissionResult, error) {
	full, err := s.QuizRepo.GetFullQuiz(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if len(full.Questions) == 0 {
		return nil, util.ErrQuizNotFound
	}

	questionByID := make(map[uint]*repository.FullQuestion, len(full.Questions))
	for i := range full.Questions {
		questionByID[full.Questions[i].ID] = &full.Questions[i]
	}

	if err := validateAnswers(req.Answers, questionByID); err != nil {
		return nil, err
	}

	hasPrior, err := s.AnswerRepo.HasSubmission(studentID, quizID)
	if err != nil {
		return nil, err
	}
	firstAttempt := !hasPrior
	if firstAttempt != req.IsFirstAttempt {
		logger.Log.Debug("client first-attempt hint disagrees with server state",
			zap.Uint("studentId", studentID), zap.Uint("quizId", quizID),
			zap.Bool("clientHint", req.IsFirstAttempt), zap.Bool("derived", firstAttempt))
	}

	storeScore := full.Type != model.QuizDaily || firstAttempt
	now := s.Clock.Now()

	correctCount := 0
	rows := make([]model.StudentAnswer, 0, len(req.Answers))
	for _, answer := range req.Answers {
		question := questionByID[answer.QuestionID]
		row := model.StudentAnswer{
			StudentID:   studentID,
			QuizID:      quizID,
			QuestionID:  answer.QuestionID,
			TextAnswer:  answer.TextAnswer,
			ImageURL:    answer.ImageURL,
			SubmittedAt: now,
		}

		if question.QuestionType == model.MultipleChoice && answer.SelectedOptionID != nil {
			row.SelectedOptionID = answer.SelectedOptionID
			score := scoreChoice(question, *answer.SelectedOptionID)
			if score == 1 {
				correctCount++
			}
			if storeScore {
				gradedAt := now
				row.Score = &score
				row.GradedAt = &gradedAt
			}
		}
		// 非选择题或未选选项：score/gradedAt 保持为空，等待人工批改

		rows = append(rows, row)
	}

	// daily 重考不落库，首考记录保持权威；其余情况整批 upsert
	if storeScore {
		if err := s.AnswerRepo.UpsertBatch(rows); err != nil {
			return nil, err
		}
	}

	monitoring.QuizSubmissions.WithLabelValues(string(full.Type), strconv.FormatBool(firstAttempt)).Inc()

	return &SubmissionResult{
		CorrectCount:   correctCount,
		TotalQuestions: len(full.Questions),
		FirstAttempt:   firstAttempt,
		ScoreStored:    storeScore,
	}, nil
}

// validateAnswers 按题型校验作答形态，任何一条不合法则整批拒绝
func validateAnswers(answers []RawAnswer, questionByID map[uint]*repository.FullQuestion) error {
	for _, answer := range answers {
		question, ok := questionByID[answer.QuestionID]
		if !ok {
			return fmt.Errorf("%w: question %d does not belong to this quiz", util.ErrValidation, answer.QuestionID)
		}

		if question.QuestionType == model.MultipleChoice {
			if answer.TextAnswer != "" || answer.ImageURL != "" {
				return fmt.Errorf("%w: question %d is multiple choice and only accepts a selected option", util.ErrValidation, answer.QuestionID)
			}
			if answer.SelectedOptionID != nil && !optionBelongs(question, *answer.SelectedOptionID) {
				return fmt.Errorf("%w: option %d does not belong to question %d", util.ErrValidation, *answer.SelectedOptionID, answer.QuestionID)
			}
		} else if answer.SelectedOptionID != nil {
			return fmt.Errorf("%w: question %d is not multiple choice and cannot take a selected option", util.ErrValidation, answer.QuestionID)
		}
	}
	return nil
}

func optionBelongs(question *repository.FullQuestion, optionID uint) bool {
	for _, o := range question.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// scoreChoice 选择题二元计分
func scoreChoice(question *repository.FullQuestion, selectedOptionID uint) int {
	for _, o := range question.Options {
		if o.ID == selectedOptionID && o.IsCorrect {
			return 1
		}
	}
	return 0
}

func (s *QuizService) ListBySubject(subjectID uint) ([]model.Quiz, error) {
	return s.QuizRepo.ListBySubject(subjectID)
}

func (s *QuizService) ListBySubjectAndType(subjectID uint, quizType model.QuizType) ([]model.Quiz, error) {
	return s.QuizRepo.ListBySubjectAndType(subjectID, quizType)
}

func (s *QuizService) ListExamsForSubjects(subjectIDs []uint) ([]model.Quiz, error) {
	return s.QuizRepo.ListExamsForSubjects(subjectIDs)
}

// GetDailyQuiz 按 (科目, 学习日) 定位当天的小测
func (s *QuizService) GetDailyQuiz(subjectID uint, dayNumber int) (*StudentQuiz, error) {
	quiz, err := s.QuizRepo.FindDailyByLesson(subjectID, dayNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return s.GetQuizForStudent(quiz.ID)
}

func (s *QuizService) DeleteQuiz(quizID uint) error {
	if _, err := s.QuizRepo.FindByID(quizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuizNotFound
		}
		return err
	}
	return s.QuizRepo.Delete(quizID)
}

// AttemptStatus 考试列表里每张试卷的作答状态。
// 非 daily 测验在成绩发布前 Percentage 为空（daily 测验提交即可见）。
type AttemptStatus struct {
	HasAttempted bool       `json:"hasAttempted"`
	IsGraded     bool       `json:"isGraded"`
	Percentage   *int       `json:"percentage"`
	SubmittedAt  *time.Time `json:"submittedAt"`
}

func (s *QuizService) GetAttemptStatus(studentID uint, quizIDs []uint) (map[uint]AttemptStatus, error) {
	statuses := make(map[uint]AttemptStatus, len(quizIDs))
	for _, id := range quizIDs {
		statuses[id] = AttemptStatus{}
	}

	rows, err := s.AnswerRepo.ListAttempts(studentID, quizIDs)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return statuses, nil
	}

	type agg struct {
		total       int
		graded      int
		scoreSum    int
		scored      int
		submittedAt time.Time
	}
	perQuiz := make(map[uint]*agg)
	for _, row := range rows {
		a := perQuiz[row.QuizID]
		if a == nil {
			a = &agg{submittedAt: row.SubmittedAt}
			perQuiz[row.QuizID] = a
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

	published := make(map[uint]bool, len(quizIDs))
	daily := make(map[uint]bool, len(quizIDs))
	for _, id := range quizIDs {
		if _, ok := perQuiz[id]; !ok {
			continue
		}
		quiz, err := s.QuizRepo.FindByID(id)
		if err != nil {
			return nil, err
		}
		published[id] = quiz.ResultsPublished
		daily[id] = quiz.Type == model.QuizDaily
	}

	for id, a := range perQuiz {
		submittedAt := a.submittedAt
		status := AttemptStatus{
			HasAttempted: true,
			IsGraded:     a.graded == a.total,
			SubmittedAt:  &submittedAt,
		}
		// 成绩可见性：daily 即时可见，其余要等发布
		if daily[id] || published[id] {
			pct := percentage(a.scoreSum, a.scored)
			status.Percentage = &pct
		}
		statuses[id] = status
	}
	return statuses, nil
}
