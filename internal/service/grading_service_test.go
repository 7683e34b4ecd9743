package service

import (
	"testing"
	"time"

	"khattha_backend/internal/model"
	"khattha_backend/internal/repository"
	"khattha_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newGradingService(t *testing.T) (*GradingService, *QuizService, *fakeClock, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	clock := newFakeClock()
	quizRepo := repository.NewQuizRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	notifier := NewNotificationService(repository.NewNotificationRepository(db), repository.NewUserRepository(db))
	return NewGradingService(quizRepo, answerRepo, clock, notifier),
		NewQuizService(quizRepo, answerRepo, clock),
		clock, db
}

func TestGradeAnswerOverwrites(t *testing.T) {
	grading, quizSvc, clock, db := newGradingService(t)
	createStudent(t, db, "小明", "ming@example.com")

	full := seedQuiz(t, quizSvc, 1, model.QuizSemester, nil, essayQuestion("论述"))
	_, err := quizSvc.Submit(1, full.ID, SubmitQuizReq{
		Answers: []RawAnswer{{QuestionID: full.Questions[0].ID, TextAnswer: "作答"}},
	})
	require.NoError(t, err)

	var row model.StudentAnswer
	require.NoError(t, db.Where("quiz_id = ?", full.ID).First(&row).Error)
	require.Nil(t, row.Score)

	clock.Advance(time.Hour)
	graded, err := grading.GradeAnswer(99, row.ID, 1, "写得好")
	require.NoError(t, err)
	assert.Equal(t, 1, *graded.Score)
	assert.Equal(t, "写得好", graded.Feedback)
	assert.EqualValues(t, 99, *graded.GradedBy)
	require.NotNil(t, graded.GradedAt)
	assert.True(t, graded.GradedAt.Equal(clock.Now()))
	assert.True(t, graded.GradedAt.After(graded.SubmittedAt))

	// 重复批改直接覆盖
	regraded, err := grading.GradeAnswer(99, row.ID, 0, "重新审阅后扣分")
	require.NoError(t, err)
	assert.Equal(t, 0, *regraded.Score)
	assert.Equal(t, "重新审阅后扣分", regraded.Feedback)
}

func TestGradeAnswerMissing(t *testing.T) {
	grading, _, _, _ := newGradingService(t)
	_, err := grading.GradeAnswer(99, 404, 1, "")
	assert.ErrorIs(t, err, util.ErrAnswerNotFound)
}

func TestPublishResultsRejectsDaily(t *testing.T) {
	grading, quizSvc, _, _ := newGradingService(t)
	full := seedQuiz(t, quizSvc, 1, model.QuizDaily, intPtr(1),
		choiceQuestion("q", []string{"a", "b"}, 0),
	)

	err := grading.PublishResults(full.ID)
	assert.ErrorIs(t, err, util.ErrDailyQuizNotPublishable)

	quiz, findErr := grading.QuizRepo.FindByID(full.ID)
	require.NoError(t, findErr)
	assert.False(t, quiz.ResultsPublished)
}

func TestPublishResultsIdempotent(t *testing.T) {
	grading, quizSvc, _, _ := newGradingService(t)
	full := seedQuiz(t, quizSvc, 1, model.QuizMonthly, nil,
		choiceQuestion("q", []string{"a", "b"}, 0),
	)

	require.NoError(t, grading.PublishResults(full.ID))
	// 再次发布是 no-op，不报错也不撤销
	require.NoError(t, grading.PublishResults(full.ID))

	quiz, err := grading.QuizRepo.FindByID(full.ID)
	require.NoError(t, err)
	assert.True(t, quiz.ResultsPublished)
}

func TestPublishResultsMissingQuiz(t *testing.T) {
	grading, _, _, _ := newGradingService(t)
	assert.ErrorIs(t, grading.PublishResults(404), util.ErrQuizNotFound)
}

func TestGetSubmissionDetailMissingQuiz(t *testing.T) {
	grading, _, _, _ := newGradingService(t)
	_, err := grading.GetSubmissionDetail(1, 404)
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestBuildSubmissionSummaries(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	graded := base.Add(time.Hour)

	rows := []repository.SubmissionRow{
		// 学生 1：两行全评分，2/2 正确，晚交
		{StudentID: 1, StudentName: "甲", Score: intPtr(1), SubmittedAt: base.Add(10 * time.Minute), GradedAt: &graded},
		{StudentID: 1, StudentName: "甲", Score: intPtr(1), SubmittedAt: base.Add(10 * time.Minute), GradedAt: &graded},
		// 学生 2：两行全评分，2/2 正确，早交（平分时应排前）
		{StudentID: 2, StudentName: "乙", Score: intPtr(1), SubmittedAt: base, GradedAt: &graded},
		{StudentID: 2, StudentName: "乙", Score: intPtr(1), SubmittedAt: base, GradedAt: &graded},
		// 学生 3：一行已评分得 1 分，一行未评分；百分比只看已评分子集
		{StudentID: 3, StudentName: "丙", Score: intPtr(1), SubmittedAt: base, GradedAt: &graded},
		{StudentID: 3, StudentName: "丙", Score: nil, SubmittedAt: base, GradedAt: nil},
		// 学生 4：全未评分
		{StudentID: 4, StudentName: "丁", Score: nil, SubmittedAt: base, GradedAt: nil},
	}

	summaries := buildSubmissionSummaries(rows)
	require.Len(t, summaries, 4)

	// 百分比降序，平分时先交卷的在前
	assert.EqualValues(t, 2, summaries[0].StudentID)
	assert.EqualValues(t, 1, summaries[1].StudentID)
	assert.EqualValues(t, 3, summaries[2].StudentID)
	assert.EqualValues(t, 4, summaries[3].StudentID)

	assert.Equal(t, 100, summaries[0].Percentage)
	assert.True(t, summaries[0].IsGraded)

	// 未评分行不进分母，也压住 IsGraded
	assert.Equal(t, 100, summaries[2].Percentage)
	assert.False(t, summaries[2].IsGraded)

	// 没有任何已评分行约定为 0
	assert.Equal(t, 0, summaries[3].Percentage)
	assert.False(t, summaries[3].IsGraded)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, percentage(0, 0))
	assert.Equal(t, 0, percentage(0, 4))
	assert.Equal(t, 33, percentage(1, 3))
	assert.Equal(t, 67, percentage(2, 3))
	assert.Equal(t, 100, percentage(3, 3))
}

func TestGradeThenPublishFlow(t *testing.T) {
	grading, quizSvc, _, db := newGradingService(t)
	student := createStudent(t, db, "小红", "hong@example.com")

	full := seedQuiz(t, quizSvc, 1, model.QuizSemester, nil,
		choiceQuestion("选择", []string{"a", "b"}, 0),
		essayQuestion("论述"),
	)

	_, err := quizSvc.Submit(student.ID, full.ID, SubmitQuizReq{
		Answers: []RawAnswer{
			{QuestionID: full.Questions[0].ID, SelectedOptionID: uintPtr(correctOption(t, full.Questions[0]))},
			{QuestionID: full.Questions[1].ID, TextAnswer: "详细论述"},
		},
	})
	require.NoError(t, err)

	// 论述题未批改：选择题的 1 分独自撑起百分比，但 IsGraded 为假
	summaries, err := grading.ListSubmissions(full.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "小红", summaries[0].StudentName)
	assert.Equal(t, 100, summaries[0].Percentage)
	assert.False(t, summaries[0].IsGraded)

	detail, err := grading.GetSubmissionDetail(student.ID, full.ID)
	require.NoError(t, err)
	require.Len(t, detail, 2)
	assert.Equal(t, model.MultipleChoice, detail[0].QuestionType)
	assert.Len(t, detail[0].Options, 2)
	assert.Empty(t, detail[1].Options)

	essayRow := detail[1]
	_, err = grading.GradeAnswer(99, essayRow.AnswerID, 1, "满分")
	require.NoError(t, err)

	summaries, err = grading.ListSubmissions(full.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, summaries[0].Percentage)
	assert.True(t, summaries[0].IsGraded)

	require.NoError(t, grading.PublishResults(full.ID))

	// 发布时给交过卷的学生发成绩通知；重复发布不重复通知
	require.NoError(t, grading.PublishResults(full.ID))
	var notifications []model.Notification
	require.NoError(t, db.Where("user_id = ?", student.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotifyGrade, notifications[0].Type)
	require.NotNil(t, notifications[0].RelatedID)
	assert.Equal(t, full.ID, *notifications[0].RelatedID)

	statuses, err := quizSvc.GetAttemptStatus(student.ID, []uint{full.ID})
	require.NoError(t, err)
	require.NotNil(t, statuses[full.ID].Percentage)
	assert.Equal(t, 100, *statuses[full.ID].Percentage)
	assert.True(t, statuses[full.ID].IsGraded)
}
