package service

import (
	"testing"

	"khattha_backend/internal/model"
	"khattha_backend/internal/repository"
	"khattha_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuizService(t *testing.T) (*QuizService, *fakeClock, *repository.AnswerRepository) {
	t.Helper()
	db := newTestDB(t)
	clock := newFakeClock()
	answerRepo := repository.NewAnswerRepository(db)
	svc := NewQuizService(repository.NewQuizRepository(db), answerRepo, clock)
	return svc, clock, answerRepo
}

func TestCreateQuizValidation(t *testing.T) {
	svc, _, _ := newQuizService(t)

	cases := []struct {
		name string
		req  CreateQuizReq
	}{
		{
			name: "daily without dayNumber",
			req: CreateQuizReq{
				SubjectID: 1, Title: "t", Type: model.QuizDaily,
				Questions: []QuizQuestionReq{choiceQuestion("q", []string{"a", "b"}, 0)},
			},
		},
		{
			name: "unknown quiz type",
			req: CreateQuizReq{
				SubjectID: 1, Title: "t", Type: "weekly",
				Questions: []QuizQuestionReq{choiceQuestion("q", []string{"a", "b"}, 0)},
			},
		},
		{
			name: "no questions",
			req:  CreateQuizReq{SubjectID: 1, Title: "t", Type: model.QuizSemester},
		},
		{
			name: "choice with single option",
			req: CreateQuizReq{
				SubjectID: 1, Title: "t", Type: model.QuizSemester,
				Questions: []QuizQuestionReq{choiceQuestion("q", []string{"a"}, 0)},
			},
		},
		{
			name: "choice without correct option",
			req: CreateQuizReq{
				SubjectID: 1, Title: "t", Type: model.QuizSemester,
				Questions: []QuizQuestionReq{{
					Question:     "q",
					QuestionType: model.MultipleChoice,
					Options:      []QuizOptionReq{{Text: "a"}, {Text: "b"}},
				}},
			},
		},
		{
			name: "essay with options",
			req: CreateQuizReq{
				SubjectID: 1, Title: "t", Type: model.QuizSemester,
				Questions: []QuizQuestionReq{{
					Question:     "q",
					QuestionType: model.Essay,
					Options:      []QuizOptionReq{{Text: "a", IsCorrect: true}, {Text: "b"}},
				}},
			},
		},
		{
			name: "unknown question type",
			req: CreateQuizReq{
				SubjectID: 1, Title: "t", Type: model.QuizSemester,
				Questions: []QuizQuestionReq{{Question: "q", QuestionType: "true_false"}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateQuiz(1, tc.req)
			assert.ErrorIs(t, err, util.ErrValidation)
		})
	}
}

func TestCreateQuizPersistsQuestionsInOrder(t *testing.T) {
	svc, _, _ := newQuizService(t)

	full := seedQuiz(t, svc, 1, model.QuizDaily, intPtr(3),
		choiceQuestion("第一题", []string{"a", "b", "c"}, 1),
		essayQuestion("第二题"),
	)

	require.Len(t, full.Questions, 2)
	assert.Equal(t, "第一题", full.Questions[0].Question)
	assert.Equal(t, 1, full.Questions[0].Order)
	assert.Equal(t, "第二题", full.Questions[1].Question)
	assert.Equal(t, 2, full.Questions[1].Order)
	assert.Len(t, full.Questions[0].Options, 3)
	assert.True(t, full.Questions[0].Options[1].IsCorrect)
	assert.Equal(t, 3, *full.DayNumber)
}

func TestSubmitScoresChoiceQuestions(t *testing.T) {
	svc, clock, answerRepo := newQuizService(t)

	full := seedQuiz(t, svc, 1, model.QuizSemester, nil,
		choiceQuestion("q1", []string{"a", "b"}, 0),
		choiceQuestion("q2", []string{"a", "b"}, 1),
		essayQuestion("q3"),
	)

	result, err := svc.Submit(10, full.ID, SubmitQuizReq{
		Answers: []RawAnswer{
			{QuestionID: full.Questions[0].ID, SelectedOptionID: uintPtr(correctOption(t, full.Questions[0]))},
			{QuestionID: full.Questions[1].ID, SelectedOptionID: uintPtr(wrongOption(t, full.Questions[1]))},
			{QuestionID: full.Questions[2].ID, TextAnswer: "我的论述"},
		},
		IsFirstAttempt: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 3, result.TotalQuestions)
	assert.True(t, result.FirstAttempt)
	assert.True(t, result.ScoreStored)

	var rows []model.StudentAnswer
	require.NoError(t, answerRepo.DB.Where("student_id = ? AND quiz_id = ?", 10, full.ID).
		Order("question_id asc").Find(&rows).Error)
	require.Len(t, rows, 3)

	// 选择题自动评分，提交即视为已批改
	require.NotNil(t, rows[0].Score)
	assert.Equal(t, 1, *rows[0].Score)
	require.NotNil(t, rows[0].GradedAt)
	assert.True(t, rows[0].GradedAt.Equal(clock.Now()))
	require.NotNil(t, rows[1].Score)
	assert.Equal(t, 0, *rows[1].Score)

	// 论述题等待人工批改
	assert.Nil(t, rows[2].Score)
	assert.Nil(t, rows[2].GradedAt)
	assert.Equal(t, "我的论述", rows[2].TextAnswer)
}

func TestSubmitOmittedChoiceLeavesUngraded(t *testing.T) {
	svc, _, answerRepo := newQuizService(t)

	full := seedQuiz(t, svc, 1, model.QuizSemester, nil,
		choiceQuestion("q1", []string{"a", "b"}, 0),
	)

	// 选择题不选任何选项：不计对错，留待人工处理
	result, err := svc.Submit(10, full.ID, SubmitQuizReq{
		Answers: []RawAnswer{{QuestionID: full.Questions[0].ID}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.CorrectCount)

	var row model.StudentAnswer
	require.NoError(t, answerRepo.DB.Where("quiz_id = ?", full.ID).First(&row).Error)
	assert.Nil(t, row.SelectedOptionID)
	assert.Nil(t, row.Score)
	assert.Nil(t, row.GradedAt)
}

func TestSubmitPartialAnswerSet(t *testing.T) {
	svc, _, answerRepo := newQuizService(t)

	full := seedQuiz(t, svc, 1, model.QuizSemester, nil,
		choiceQuestion("q1", []string{"a", "b"}, 0),
		choiceQuestion("q2", []string{"a", "b"}, 1),
	)

	// 只答两题中的一题也是合法提交，总题数仍按整卷计
	result, err := svc.Submit(10, full.ID, SubmitQuizReq{
		Answers: []RawAnswer{
			{QuestionID: full.Questions[0].ID, SelectedOptionID: uintPtr(correctOption(t, full.Questions[0]))},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 2, result.TotalQuestions)

	var rows []model.StudentAnswer
	require.NoError(t, answerRepo.DB.Where("student_id = ? AND quiz_id = ?", 10, full.ID).
		Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, full.Questions[0].ID, rows[0].QuestionID)
}

func TestSubmitDerivesFirstAttemptFromServer(t *testing.T) {
	svc, _, _ := newQuizService(t)

	full := seedQuiz(t, svc, 1, model.QuizSemester, nil,
		choiceQuestion("q1", []string{"a", "b"}, 0),
	)
	answers := []RawAnswer{
		{QuestionID: full.Questions[0].ID, SelectedOptionID: uintPtr(correctOption(t, full.Questions[0]))},
	}

	// 客户端谎称非首次，服务端仍按无记录判定为首次
	result, err := svc.Submit(10, full.ID, SubmitQuizReq{Answers: answers, IsFirstAttempt: false})
	require.NoError(t, err)
	assert.True(t, result.FirstAttempt)

	// 反向：已有记录时客户端标记首次也不采信
	result, err = svc.Submit(10, full.ID, SubmitQuizReq{Answers: answers, IsFirstAttempt: true})
	require.NoError(t, err)
	assert.False(t, result.FirstAttempt)
}

func TestSubmitUpsertDoesNotDuplicateRows(t *testing.T) {
	svc, _, answerRepo := newQuizService(t)

	full := seedQuiz(t, svc, 1, model.QuizSemester, nil,
		choiceQuestion("q1", []string{"a", "b"}, 0),
		choiceQuestion("q2", []string{"a", "b"}, 0),
	)

	submit := func(optionOf func(repository.FullQuestion) uint) {
		answers := make([]RawAnswer, len(full.Questions))
		for i, q := range full.Questions {
			answers[i] = RawAnswer{QuestionID: q.ID, SelectedOptionID: uintPtr(optionOf(q))}
		}
		_, err := svc.Submit(10, full.ID, SubmitQuizReq{Answers: answers})
		require.NoError(t, err)
	}

	submit(func(q repository.FullQuestion) uint { return wrongOption(t, q) })
	submit(func(q repository.FullQuestion) uint { return correctOption(t, q) })

	var count int64
	require.NoError(t, answerRepo.DB.Model(&model.StudentAnswer{}).
		Where("student_id = ? AND quiz_id = ?", 10, full.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	// 非 daily 测验重复提交覆盖旧行，分数取最新一次
	var rows []model.StudentAnswer
	require.NoError(t, answerRepo.DB.Where("student_id = ? AND quiz_id = ?", 10, full.ID).Find(&rows).Error)
	for _, row := range rows {
		require.NotNil(t, row.Score)
		assert.Equal(t, 1, *row.Score)
	}
}

func TestSubmitDailyRetakeKeepsFirstScore(t *testing.T) {
	svc, _, answerRepo := newQuizService(t)

	full := seedQuiz(t, svc, 1, model.QuizDaily, intPtr(1),
		choiceQuestion("q1", []string{"a", "b"}, 0),
	)
	question := full.Questions[0]
	wrong := wrongOption(t, question)

	first, err := svc.Submit(10, full.ID, SubmitQuizReq{
		Answers: []RawAnswer{{QuestionID: question.ID, SelectedOptionID: &wrong}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, first.CorrectCount)
	assert.True(t, first.ScoreStored)

	// 重考答对：返回本次对错统计，但首考成绩保持不变
	retake, err := svc.Submit(10, full.ID, SubmitQuizReq{
		Answers: []RawAnswer{{QuestionID: question.ID, SelectedOptionID: uintPtr(correctOption(t, question))}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, retake.CorrectCount)
	assert.False(t, retake.FirstAttempt)
	assert.False(t, retake.ScoreStored)

	var row model.StudentAnswer
	require.NoError(t, answerRepo.DB.Where("student_id = ? AND quiz_id = ?", 10, full.ID).First(&row).Error)
	require.NotNil(t, row.Score)
	assert.Equal(t, 0, *row.Score)
	assert.Equal(t, wrong, *row.SelectedOptionID)
}

func TestSubmitRejectsMalformedAnswers(t *testing.T) {
	svc, _, answerRepo := newQuizService(t)

	full := seedQuiz(t, svc, 1, model.QuizSemester, nil,
		choiceQuestion("q1", []string{"a", "b"}, 0),
		essayQuestion("q2"),
	)
	choice := full.Questions[0]
	essay := full.Questions[1]

	cases := []struct {
		name    string
		answers []RawAnswer
	}{
		{
			name:    "question from another quiz",
			answers: []RawAnswer{{QuestionID: 9999, TextAnswer: "x"}},
		},
		{
			name:    "text answer on multiple choice",
			answers: []RawAnswer{{QuestionID: choice.ID, TextAnswer: "x"}},
		},
		{
			name:    "foreign option id",
			answers: []RawAnswer{{QuestionID: choice.ID, SelectedOptionID: uintPtr(9999)}},
		},
		{
			name:    "selected option on essay",
			answers: []RawAnswer{{QuestionID: essay.ID, SelectedOptionID: uintPtr(correctOption(t, choice))}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(10, full.ID, SubmitQuizReq{Answers: tc.answers})
			assert.ErrorIs(t, err, util.ErrValidation)
		})
	}

	// 整批拒绝，不落任何行
	var count int64
	require.NoError(t, answerRepo.DB.Model(&model.StudentAnswer{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitUnknownQuiz(t *testing.T) {
	svc, _, _ := newQuizService(t)
	_, err := svc.Submit(10, 404, SubmitQuizReq{Answers: []RawAnswer{{QuestionID: 1}}})
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestGetQuizForStudentHidesAnswerKey(t *testing.T) {
	svc, _, _ := newQuizService(t)

	full := seedQuiz(t, svc, 1, model.QuizDaily, intPtr(5),
		choiceQuestion("q1", []string{"a", "b", "c"}, 2),
	)
	_, err := svc.AttachModelAnswer(full.ID, "范例答案", "")
	require.NoError(t, err)

	student, err := svc.GetQuizForStudent(full.ID)
	require.NoError(t, err)

	assert.Equal(t, full.ID, student.ID)
	assert.Equal(t, 5, *student.DayNumber)
	require.Len(t, student.Questions, 1)
	require.Len(t, student.Questions[0].Options, 3)
	for i, opt := range student.Questions[0].Options {
		assert.NotZero(t, opt.ID)
		assert.Equal(t, i+1, opt.Order)
	}
}

func TestGetDailyQuizBySubjectAndDay(t *testing.T) {
	svc, _, _ := newQuizService(t)

	seedQuiz(t, svc, 1, model.QuizDaily, intPtr(1), choiceQuestion("day1", []string{"a", "b"}, 0))
	day2 := seedQuiz(t, svc, 1, model.QuizDaily, intPtr(2), choiceQuestion("day2", []string{"a", "b"}, 0))

	quiz, err := svc.GetDailyQuiz(1, 2)
	require.NoError(t, err)
	assert.Equal(t, day2.ID, quiz.ID)

	_, err = svc.GetDailyQuiz(1, 3)
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestGetAttemptStatusVisibility(t *testing.T) {
	svc, _, _ := newQuizService(t)

	daily := seedQuiz(t, svc, 1, model.QuizDaily, intPtr(1),
		choiceQuestion("q", []string{"a", "b"}, 0),
	)
	semester := seedQuiz(t, svc, 1, model.QuizSemester, nil,
		choiceQuestion("q", []string{"a", "b"}, 0),
	)
	untouched := seedQuiz(t, svc, 1, model.QuizMonthly, nil,
		choiceQuestion("q", []string{"a", "b"}, 0),
	)

	for _, full := range []*repository.FullQuiz{daily, semester} {
		q := full.Questions[0]
		_, err := svc.Submit(10, full.ID, SubmitQuizReq{
			Answers: []RawAnswer{{QuestionID: q.ID, SelectedOptionID: uintPtr(correctOption(t, q))}},
		})
		require.NoError(t, err)
	}

	ids := []uint{daily.ID, semester.ID, untouched.ID}
	statuses, err := svc.GetAttemptStatus(10, ids)
	require.NoError(t, err)

	// daily 成绩提交即可见
	require.NotNil(t, statuses[daily.ID].Percentage)
	assert.Equal(t, 100, *statuses[daily.ID].Percentage)
	assert.True(t, statuses[daily.ID].IsGraded)

	// 非 daily 在发布前不可见
	assert.True(t, statuses[semester.ID].HasAttempted)
	assert.Nil(t, statuses[semester.ID].Percentage)

	assert.False(t, statuses[untouched.ID].HasAttempted)

	// 发布后可见
	require.NoError(t, svc.QuizRepo.MarkPublished(semester.ID))
	statuses, err = svc.GetAttemptStatus(10, ids)
	require.NoError(t, err)
	require.NotNil(t, statuses[semester.ID].Percentage)
	assert.Equal(t, 100, *statuses[semester.ID].Percentage)
}
