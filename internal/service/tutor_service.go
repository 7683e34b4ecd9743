package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"khattha_backend/internal/model"
	"khattha_backend/internal/repository"
	"khattha_backend/internal/util"
	"khattha_backend/pkg/logger"
	"khattha_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AnswerGenerator 大模型补全的最小接口，*AIService 是生产实现
type AnswerGenerator interface {
	Chat(prompt string, curriculum string, history []AIChatMessage) (string, error)
	ChatStream(prompt string, curriculum string, history []AIChatMessage) (<-chan string, <-chan error)
}

type TutorService struct {
	Access      *AccessService
	SubjectRepo *repository.SubjectRepository
	ChatRepo    *repository.ChatRepository
	AI          AnswerGenerator
	Redis       *redis.Client
	Clock       Clock

	// dailyLimit 支持配置热更新，写端是 fsnotify 回调，读端是请求协程
	dailyLimit atomic.Int64
}

func NewTutorService(access *AccessService, subjectRepo *repository.SubjectRepository,
	chatRepo *repository.ChatRepository, ai AnswerGenerator, rdb *redis.Client, dailyLimit int, clock Clock) *TutorService {
	s := &TutorService{
		Access:      access,
		SubjectRepo: subjectRepo,
		ChatRepo:    chatRepo,
		AI:          ai,
		Redis:       rdb,
		Clock:       clock,
	}
	s.dailyLimit.Store(int64(dailyLimit))
	return s
}

// SetDailyLimit 热更新每日提问上限，可与正在处理的请求并发调用
func (s *TutorService) SetDailyLimit(limit int) {
	s.dailyLimit.Store(int64(limit))
}

func (s *TutorService) DailyLimit() int {
	return int(s.dailyLimit.Load())
}

// prepareAsk 提问前的固定校验顺序：先过访问闸门，再查大纲，再扣限额。
// 任何一步不通过都不会触达大模型。
func (s *TutorService) prepareAsk(ctx context.Context, studentID, subjectID uint, question string) (string, []AIChatMessage, error) {
	if question == "" {
		return "", nil, fmt.Errorf("%w: question is required", util.ErrValidation)
	}

	decision := s.Access.CheckAccess(studentID, subjectID)
	if !decision.Allowed {
		switch decision.Reason {
		case DenyExpired:
			return "", nil, util.ErrAccessExpired
		case DenySystemError:
			return "", nil, util.ErrAccessCheckFailed
		default:
			return "", nil, util.ErrNoSubscription
		}
	}

	subject, err := s.SubjectRepo.FindByID(subjectID)
	if err != nil {
		return "", nil, util.ErrSubjectNotFound
	}
	if !subject.HasCurriculum() {
		return "", nil, util.ErrNoCurriculum
	}

	if err := s.consumeQuota(ctx, studentID); err != nil {
		return "", nil, err
	}

	history, err := s.recentMessages(studentID, subjectID)
	if err != nil {
		logger.Log.Warn("failed to load chat history, continuing without it",
			zap.Uint("studentId", studentID), zap.Error(err))
		history = nil
	}

	curriculum := subject.Curriculum
	if curriculum == "" {
		curriculum = subject.CurriculumURL
	}
	return curriculum, history, nil
}

// Ask 向助教提问。闸门不放行时绝不调用大模型。
func (s *TutorService) Ask(ctx context.Context, studentID, subjectID uint, question string) (*model.ChatHistory, error) {
	curriculum, history, err := s.prepareAsk(ctx, studentID, subjectID, question)
	if err != nil {
		return nil, err
	}

	answer, err := s.AI.Chat(question, curriculum, history)
	if err != nil {
		logger.Log.Error("AI tutor request failed", zap.Uint("studentId", studentID), zap.Error(err))
		return nil, err
	}

	entry := &model.ChatHistory{
		StudentID: studentID,
		SubjectID: subjectID,
		Question:  question,
		Answer:    answer,
	}
	if err := s.ChatRepo.Create(entry); err != nil {
		return nil, err
	}

	monitoring.TutorQuestions.Inc()
	return entry, nil
}

// AskStream 流式提问，校验顺序与 Ask 完全一致。
// 流正常走完才落聊天记录，中途出错不留记录。
func (s *TutorService) AskStream(ctx context.Context, studentID, subjectID uint, question string) (<-chan string, <-chan error, error) {
	curriculum, history, err := s.prepareAsk(ctx, studentID, subjectID, question)
	if err != nil {
		return nil, nil, err
	}

	upstream, upstreamErr := s.AI.ChatStream(question, curriculum, history)
	out := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errChan)

		var answer strings.Builder
		for chunk := range upstream {
			answer.WriteString(chunk)
			out <- chunk
		}
		if err := <-upstreamErr; err != nil {
			logger.Log.Error("AI tutor stream failed", zap.Uint("studentId", studentID), zap.Error(err))
			errChan <- err
			return
		}

		entry := &model.ChatHistory{
			StudentID: studentID,
			SubjectID: subjectID,
			Question:  question,
			Answer:    answer.String(),
		}
		if err := s.ChatRepo.Create(entry); err != nil {
			errChan <- err
			return
		}
		monitoring.TutorQuestions.Inc()
	}()

	return out, errChan, nil
}

func (s *TutorService) History(studentID, subjectID uint, limit int) ([]model.ChatHistory, error) {
	return s.ChatRepo.ListByStudentAndSubject(studentID, subjectID, limit)
}

// consumeQuota 每学生每日提问计数，Redis INCR 实现。
// Redis 未配置时不限额。
func (s *TutorService) consumeQuota(ctx context.Context, studentID uint) error {
	limit := s.dailyLimit.Load()
	if s.Redis == nil || limit <= 0 {
		return nil
	}

	key := fmt.Sprintf("tutor:quota:%d:%s", studentID, s.Clock.Now().Format("2006-01-02"))
	count, err := s.Redis.Incr(ctx, key).Result()
	if err != nil {
		logger.Log.Warn("tutor quota counter unavailable", zap.Error(err))
		return nil
	}
	if count == 1 {
		s.Redis.Expire(ctx, key, 24*time.Hour)
	}
	if count > limit {
		return util.ErrTutorDailyLimit
	}
	return nil
}

// recentMessages 取最近若干轮问答，转成时间正序的对话上下文
func (s *TutorService) recentMessages(studentID, subjectID uint) ([]AIChatMessage, error) {
	entries, err := s.ChatRepo.ListByStudentAndSubject(studentID, subjectID, 10)
	if err != nil {
		return nil, err
	}

	messages := make([]AIChatMessage, 0, len(entries)*2)
	for i := len(entries) - 1; i >= 0; i-- {
		messages = append(messages, AIChatMessage{Role: "user", Content: entries[i].Question})
		messages = append(messages, AIChatMessage{Role: "assistant", Content: entries[i].Answer})
	}
	return messages, nil
}
