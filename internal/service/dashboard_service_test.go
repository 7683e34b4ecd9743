package service

import (
	"testing"

	"khattha_backend/internal/model"
	"khattha_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	db := newTestDB(t)
	clock := newFakeClock()

	quizRepo := repository.NewQuizRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	quizSvc := NewQuizService(quizRepo, answerRepo, clock)
	dashboard := NewDashboardService(
		repository.NewUserRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewLessonRepository(db),
		quizRepo,
		answerRepo,
		repository.NewProgressRepository(db),
	)

	student := createStudent(t, db, "小明", "ming@example.com")
	admin := &model.User{Name: "管理员", Email: "admin@example.com", Password: "hashed", Role: model.Admin}
	require.NoError(t, db.Create(admin).Error)

	subject := createSubject(t, db, "数学", "")
	grantAccess(t, db, student.ID, subject.ID)

	lessons := []model.Lesson{
		{SubjectID: subject.ID, Title: "第一课", Content: "内容", DayNumber: 1, Order: 1},
		{SubjectID: subject.ID, Title: "第二课", Content: "内容", DayNumber: 2, Order: 1},
	}
	for i := range lessons {
		require.NoError(t, db.Create(&lessons[i]).Error)
	}
	progress := NewProgressService(repository.NewProgressRepository(db), repository.NewLessonRepository(db), clock)
	_, err := progress.MarkLesson(student.ID, lessons[0].ID, true)
	require.NoError(t, err)

	full := seedQuiz(t, quizSvc, subject.ID, model.QuizSemester, nil,
		choiceQuestion("选择", []string{"a", "b"}, 0),
		essayQuestion("论述"),
	)
	_, err = quizSvc.Submit(student.ID, full.ID, SubmitQuizReq{
		Answers: []RawAnswer{
			{QuestionID: full.Questions[0].ID, SelectedOptionID: uintPtr(correctOption(t, full.Questions[0]))},
			{QuestionID: full.Questions[1].ID, TextAnswer: "论述内容"},
		},
	})
	require.NoError(t, err)

	stats, err := dashboard.GetStudentStats(student.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SubjectsEnrolled)
	assert.Equal(t, 2, stats.TotalLessons)
	assert.Equal(t, 1, stats.LessonsCompleted)
	assert.Equal(t, 1, stats.QuizzesTaken)
	// 未批改的论述不进分母，平均分只看已评分的选择题
	assert.Equal(t, 100, stats.AverageScore)

	adminStats, err := dashboard.GetAdminStats()
	require.NoError(t, err)
	assert.Equal(t, 1, adminStats.TotalStudents)
	assert.Equal(t, 1, adminStats.TotalSubjects)
	assert.Equal(t, 1, adminStats.TotalQuizzes)
	assert.Equal(t, 1, adminStats.PendingGradings)
}
