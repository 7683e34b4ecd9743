package controller

import (
	"errors"
	"net/http"

	"khattha_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 把服务层的哨兵错误映射到统一的 HTTP 响应
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrValidation):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrSubjectNotFound),
		errors.Is(err, util.ErrLessonNotFound),
		errors.Is(err, util.ErrQuizNotFound),
		errors.Is(err, util.ErrAnswerNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrNoSubscription),
		errors.Is(err, util.ErrAccessExpired):
		util.Forbidden(ctx, err.Error())
	case errors.Is(err, util.ErrNoCurriculum),
		errors.Is(err, util.ErrDailyQuizNotPublishable):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrTutorDailyLimit):
		util.Error(ctx, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, util.ErrAccessCheckFailed):
		util.Error(ctx, http.StatusServiceUnavailable, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
