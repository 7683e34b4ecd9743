package service

import (
	"os"
	"testing"
	"time"

	"khattha_backend/internal/model"
	"khattha_backend/internal/repository"
	"khattha_backend/pkg/database"
	"khattha_backend/pkg/logger"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// fakeClock 固定时间源，测试里通过 Advance 推进
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// 内存库每个连接各自独立，收紧连接池避免看到空库
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func createStudent(t *testing.T, db *gorm.DB, name, email string) *model.User {
	t.Helper()
	user := &model.User{Name: name, Email: email, Password: "hashed", Role: model.Student}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createSubject(t *testing.T, db *gorm.DB, name, curriculum string) *model.Subject {
	t.Helper()
	subject := &model.Subject{Name: name, NumberOfDays: 30, Curriculum: curriculum}
	require.NoError(t, db.Create(subject).Error)
	return subject
}

func grantAccess(t *testing.T, db *gorm.DB, studentID, subjectID uint) {
	t.Helper()
	require.NoError(t, db.Create(&model.AccessPermission{
		StudentID: studentID,
		SubjectID: subjectID,
		HasAccess: true,
	}).Error)
}

// choiceQuestion 一道选择题，correct 指定正确选项下标
func choiceQuestion(text string, optionTexts []string, correct int) QuizQuestionReq {
	opts := make([]QuizOptionReq, len(optionTexts))
	for i, o := range optionTexts {
		opts[i] = QuizOptionReq{Text: o, IsCorrect: i == correct}
	}
	return QuizQuestionReq{Question: text, QuestionType: model.MultipleChoice, Options: opts}
}

func essayQuestion(text string) QuizQuestionReq {
	return QuizQuestionReq{Question: text, QuestionType: model.Essay}
}

// seedQuiz 建卷并返回带题目与选项的完整视图
func seedQuiz(t *testing.T, svc *QuizService, subjectID uint, quizType model.QuizType, dayNumber *int, questions ...QuizQuestionReq) *repository.FullQuiz {
	t.Helper()
	quiz, err := svc.CreateQuiz(1, CreateQuizReq{
		SubjectID: subjectID,
		Title:     "测验",
		Type:      quizType,
		DayNumber: dayNumber,
		Questions: questions,
	})
	require.NoError(t, err)

	full, err := svc.GetFullQuiz(quiz.ID)
	require.NoError(t, err)
	return full
}

// correctOption / wrongOption 从完整题目里取选项 ID
func correctOption(t *testing.T, q repository.FullQuestion) uint {
	t.Helper()
	for _, o := range q.Options {
		if o.IsCorrect {
			return o.ID
		}
	}
	t.Fatalf("question %d has no correct option", q.ID)
	return 0
}

func wrongOption(t *testing.T, q repository.FullQuestion) uint {
	t.Helper()
	for _, o := range q.Options {
		if !o.IsCorrect {
			return o.ID
		}
	}
	t.Fatalf("question %d has no wrong option", q.ID)
	return 0
}

func intPtr(v int) *int { return &v }

func uintPtr(v uint) *uint { return &v }
