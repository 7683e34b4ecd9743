package util

import "errors"

// ErrValidation 作为校验类错误的哨兵，具体信息通过 %w 包装
var ErrValidation = errors.New("validation failed")

var (
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrSubjectNotFound = errors.New("subject not found")
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrAnswerNotFound  = errors.New("answer not found")

	// 访问闸门的拒绝原因，必须可区分，前端据此提示用户
	ErrNoSubscription    = errors.New("no active subscription for this subject")
	ErrAccessExpired     = errors.New("subject access expired")
	ErrAccessCheckFailed = errors.New("access check failed")
	ErrNoCurriculum      = errors.New("no curriculum uploaded for this subject")

	ErrDailyQuizNotPublishable = errors.New("daily quiz results are visible on submit and have no publish gate")
	ErrTutorDailyLimit         = errors.New("daily tutor question limit reached")
)
