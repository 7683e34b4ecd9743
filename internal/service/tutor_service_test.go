package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"khattha_backend/internal/model"
	"khattha_backend/internal/repository"
	"khattha_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubGenerator 记录调用情况的假大模型
type stubGenerator struct {
	answer      string
	chunks      []string
	err         error
	calls       int
	lastPrompt  string
	lastHistory []AIChatMessage
}

func (s *stubGenerator) Chat(prompt, curriculum string, history []AIChatMessage) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	s.lastHistory = history
	return s.answer, s.err
}

func (s *stubGenerator) ChatStream(prompt, curriculum string, history []AIChatMessage) (<-chan string, <-chan error) {
	s.calls++
	s.lastPrompt = prompt
	s.lastHistory = history

	out := make(chan string)
	errChan := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errChan)
		if s.err != nil {
			errChan <- s.err
			return
		}
		for _, chunk := range s.chunks {
			out <- chunk
		}
	}()
	return out, errChan
}

func newTutorService(t *testing.T) (*TutorService, *stubGenerator, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	clock := newFakeClock()
	stub := &stubGenerator{answer: "助教回答"}
	svc := NewTutorService(
		NewAccessService(repository.NewAccessRepository(db), clock),
		repository.NewSubjectRepository(db),
		repository.NewChatRepository(db),
		stub,
		nil, // 无 Redis 时不限额
		30,
		clock,
	)
	return svc, stub, db
}

func TestAskRequiresQuestion(t *testing.T) {
	svc, stub, _ := newTutorService(t)
	_, err := svc.Ask(context.Background(), 1, 1, "")
	assert.ErrorIs(t, err, util.ErrValidation)
	assert.Zero(t, stub.calls)
}

func TestAskDeniedWithoutSubscription(t *testing.T) {
	svc, stub, db := newTutorService(t)
	subject := createSubject(t, db, "数学", "课程大纲")

	_, err := svc.Ask(context.Background(), 1, subject.ID, "什么是导数")
	assert.ErrorIs(t, err, util.ErrNoSubscription)

	// 闸门不放行时绝不触达大模型，也不留聊天记录
	assert.Zero(t, stub.calls)
	var count int64
	require.NoError(t, db.Model(&model.ChatHistory{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAskDeniedWhenExpired(t *testing.T) {
	svc, stub, db := newTutorService(t)
	subject := createSubject(t, db, "数学", "课程大纲")

	expired := newFakeClock().Now().Add(-time.Hour)
	require.NoError(t, db.Create(&model.AccessPermission{
		StudentID: 1, SubjectID: subject.ID, HasAccess: true, EndDate: &expired,
	}).Error)

	_, err := svc.Ask(context.Background(), 1, subject.ID, "什么是导数")
	assert.ErrorIs(t, err, util.ErrAccessExpired)
	assert.Zero(t, stub.calls)
}

func TestAskFailsClosedOnStoreError(t *testing.T) {
	svc, stub, db := newTutorService(t)
	subject := createSubject(t, db, "数学", "课程大纲")
	require.NoError(t, db.Migrator().DropTable(&model.AccessPermission{}))

	_, err := svc.Ask(context.Background(), 1, subject.ID, "什么是导数")
	assert.ErrorIs(t, err, util.ErrAccessCheckFailed)
	assert.Zero(t, stub.calls)
}

func TestAskRequiresCurriculum(t *testing.T) {
	svc, stub, db := newTutorService(t)
	subject := createSubject(t, db, "数学", "")
	grantAccess(t, db, 1, subject.ID)

	_, err := svc.Ask(context.Background(), 1, subject.ID, "什么是导数")
	assert.ErrorIs(t, err, util.ErrNoCurriculum)
	assert.Zero(t, stub.calls)
}

func TestAskStoresChatHistory(t *testing.T) {
	svc, stub, db := newTutorService(t)
	subject := createSubject(t, db, "数学", "课程大纲")
	grantAccess(t, db, 1, subject.ID)

	entry, err := svc.Ask(context.Background(), 1, subject.ID, "什么是导数")
	require.NoError(t, err)
	assert.Equal(t, "什么是导数", entry.Question)
	assert.Equal(t, "助教回答", entry.Answer)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "什么是导数", stub.lastPrompt)
	assert.Empty(t, stub.lastHistory)

	history, err := svc.History(1, subject.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "助教回答", history[0].Answer)
}

func TestAskPassesRecentHistoryInOrder(t *testing.T) {
	svc, stub, db := newTutorService(t)
	subject := createSubject(t, db, "数学", "课程大纲")
	grantAccess(t, db, 1, subject.ID)

	// 预置两轮历史，时间正序
	base := newFakeClock().Now()
	first := &model.ChatHistory{
		StudentID: 1, SubjectID: subject.ID, Question: "第一问", Answer: "第一答",
	}
	first.CreatedAt = base.Add(-2 * time.Minute)
	second := &model.ChatHistory{
		StudentID: 1, SubjectID: subject.ID, Question: "第二问", Answer: "第二答",
	}
	second.CreatedAt = base.Add(-time.Minute)
	require.NoError(t, db.Create(first).Error)
	require.NoError(t, db.Create(second).Error)

	_, err := svc.Ask(context.Background(), 1, subject.ID, "第三问")
	require.NoError(t, err)

	require.Len(t, stub.lastHistory, 4)
	assert.Equal(t, "user", stub.lastHistory[0].Role)
	assert.Equal(t, "第一问", stub.lastHistory[0].Content)
	assert.Equal(t, "assistant", stub.lastHistory[1].Role)
	assert.Equal(t, "第一答", stub.lastHistory[1].Content)
	assert.Equal(t, "第二问", stub.lastHistory[2].Content)
	assert.Equal(t, "第二答", stub.lastHistory[3].Content)
}

func TestAskStreamDeniedWithoutSubscription(t *testing.T) {
	svc, stub, db := newTutorService(t)
	subject := createSubject(t, db, "数学", "课程大纲")

	_, _, err := svc.AskStream(context.Background(), 1, subject.ID, "什么是导数")
	assert.ErrorIs(t, err, util.ErrNoSubscription)
	assert.Zero(t, stub.calls)
}

func TestAskStreamPersistsAfterCompletion(t *testing.T) {
	svc, stub, db := newTutorService(t)
	subject := createSubject(t, db, "数学", "课程大纲")
	grantAccess(t, db, 1, subject.ID)
	stub.chunks = []string{"导数是", "瞬时变化率"}

	stream, errChan, err := svc.AskStream(context.Background(), 1, subject.ID, "什么是导数")
	require.NoError(t, err)

	var received []string
	for chunk := range stream {
		received = append(received, chunk)
	}
	require.NoError(t, <-errChan)

	assert.Equal(t, []string{"导数是", "瞬时变化率"}, received)
	assert.Equal(t, "什么是导数", stub.lastPrompt)

	// errChan 关闭后聊天记录已落库，答案是全部分段的拼接
	history, err := svc.History(1, subject.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "什么是导数", history[0].Question)
	assert.Equal(t, "导数是瞬时变化率", history[0].Answer)
}

func TestAskStreamFailureLeavesNoRecord(t *testing.T) {
	svc, stub, db := newTutorService(t)
	subject := createSubject(t, db, "数学", "课程大纲")
	grantAccess(t, db, 1, subject.ID)
	stub.err = assert.AnError

	stream, errChan, err := svc.AskStream(context.Background(), 1, subject.ID, "什么是导数")
	require.NoError(t, err)

	for range stream {
	}
	assert.ErrorIs(t, <-errChan, assert.AnError)

	var count int64
	require.NoError(t, db.Model(&model.ChatHistory{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDailyLimitHotReload(t *testing.T) {
	svc, _, _ := newTutorService(t)
	assert.Equal(t, 30, svc.DailyLimit())

	// 热更新回调和请求协程并发读写限额
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			svc.SetDailyLimit(n)
		}(i + 1)
		go func() {
			defer wg.Done()
			_ = svc.DailyLimit()
		}()
	}
	wg.Wait()

	svc.SetDailyLimit(5)
	assert.Equal(t, 5, svc.DailyLimit())
}

func TestAskGeneratorFailureLeavesNoRecord(t *testing.T) {
	svc, stub, db := newTutorService(t)
	subject := createSubject(t, db, "数学", "课程大纲")
	grantAccess(t, db, 1, subject.ID)
	stub.err = assert.AnError

	_, err := svc.Ask(context.Background(), 1, subject.ID, "什么是导数")
	assert.ErrorIs(t, err, assert.AnError)

	var count int64
	require.NoError(t, db.Model(&model.ChatHistory{}).Count(&count).Error)
	assert.Zero(t, count)
}
