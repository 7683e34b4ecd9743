package controller

import (
	"khattha_backend/internal/service"
	"khattha_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

type markLessonRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// MarkLesson godoc
// @Summary 标记课程完成状态
// @Description 按 (学生, 课程) 幂等覆盖
// @Tags 学习进度
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "课程 ID"
// @Param   body body markLessonRequest true "完成状态"
// @Success 200 {object} util.Response{data=model.StudentProgress}
// @Router /api/lessons/{id}/progress [post]
func (c *ProgressController) MarkLesson(ctx *gin.Context) {
	var req markLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	progress, err := c.ProgressService.MarkLesson(claims.UserID,
		util.ParseUintOrZero(ctx.Param("id")), *req.Completed)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// ListBySubject godoc
// @Summary 科目下的学习进度
// @Tags 学习进度
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "科目 ID"
// @Success 200 {object} util.Response{data=[]model.StudentProgress}
// @Router /api/subjects/{id}/progress [get]
func (c *ProgressController) ListBySubject(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	progress, err := c.ProgressService.ListBySubject(claims.UserID,
		util.ParseUintOrZero(ctx.Param("id")))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
