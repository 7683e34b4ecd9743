package service

import (
	"testing"

	"khattha_backend/internal/model"
	"khattha_backend/internal/repository"
	"khattha_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLessonService(t *testing.T) (*LessonService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewLessonService(repository.NewLessonRepository(db), repository.NewSubjectRepository(db)), db
}

func strPtr(v string) *string { return &v }

func TestLessonCreateValidation(t *testing.T) {
	svc, db := newLessonService(t)
	subject := createSubject(t, db, "数学", "")

	cases := []struct {
		name string
		req  LessonReq
		want error
	}{
		{
			name: "missing title",
			req:  LessonReq{SubjectID: subject.ID, Content: strPtr("内容"), DayNumber: intPtr(1)},
			want: util.ErrValidation,
		},
		{
			name: "missing content",
			req:  LessonReq{SubjectID: subject.ID, Title: strPtr("标题"), DayNumber: intPtr(1)},
			want: util.ErrValidation,
		},
		{
			name: "missing dayNumber",
			req:  LessonReq{SubjectID: subject.ID, Title: strPtr("标题"), Content: strPtr("内容")},
			want: util.ErrValidation,
		},
		{
			name: "dayNumber beyond subject length",
			req:  LessonReq{SubjectID: subject.ID, Title: strPtr("标题"), Content: strPtr("内容"), DayNumber: intPtr(31)},
			want: util.ErrValidation,
		},
		{
			name: "dayNumber below one",
			req:  LessonReq{SubjectID: subject.ID, Title: strPtr("标题"), Content: strPtr("内容"), DayNumber: intPtr(0)},
			want: util.ErrValidation,
		},
		{
			name: "unknown subject",
			req:  LessonReq{SubjectID: 404, Title: strPtr("标题"), Content: strPtr("内容"), DayNumber: intPtr(1)},
			want: util.ErrSubjectNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(1, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLessonCreateAndUpdate(t *testing.T) {
	svc, db := newLessonService(t)
	subject := createSubject(t, db, "数学", "")

	lesson, err := svc.Create(1, LessonReq{
		SubjectID: subject.ID,
		Title:     strPtr("第一课"),
		Content:   strPtr("内容"),
		DayNumber: intPtr(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, lesson.Order)

	updated, err := svc.Update(lesson.ID, LessonReq{Title: strPtr("改名"), Order: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, "改名", updated.Title)
	assert.Equal(t, "内容", updated.Content)
	assert.Equal(t, 3, updated.Order)

	_, err = svc.Update(404, LessonReq{Title: strPtr("x")})
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestProgressMarkLessonIdempotent(t *testing.T) {
	db := newTestDB(t)
	clock := newFakeClock()
	lessonRepo := repository.NewLessonRepository(db)
	svc := NewProgressService(repository.NewProgressRepository(db), lessonRepo, clock)

	lesson := &model.Lesson{SubjectID: 1, Title: "课", Content: "内容", DayNumber: 1, Order: 1}
	require.NoError(t, db.Create(lesson).Error)

	progress, err := svc.MarkLesson(10, lesson.ID, true)
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted)
	require.NotNil(t, progress.CompletedAt)
	assert.True(t, progress.CompletedAt.Equal(clock.Now()))

	// 重复标记覆盖同一行
	_, err = svc.MarkLesson(10, lesson.ID, true)
	require.NoError(t, err)
	_, err = svc.MarkLesson(10, lesson.ID, false)
	require.NoError(t, err)

	rows, err := svc.ListBySubject(10, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].IsCompleted)

	_, err = svc.MarkLesson(10, 404, true)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}
