package controller

import (
	"khattha_backend/internal/service"
	"khattha_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradingController struct {
	GradingService *service.GradingService
}

func NewGradingController(gradingService *service.GradingService) *GradingController {
	return &GradingController{GradingService: gradingService}
}

// ListSubmissions godoc
// @Summary 测验提交列表
// @Description 按学生聚合，百分比降序、平分先交卷在前
// @Tags 批改
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验 ID"
// @Success 200 {object} util.Response{data=[]service.SubmissionSummary}
// @Router /api/admin/quizzes/{id}/submissions [get]
func (c *GradingController) ListSubmissions(ctx *gin.Context) {
	summaries, err := c.GradingService.ListSubmissions(util.ParseUintOrZero(ctx.Param("id")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, summaries)
}

// GetSubmissionDetail godoc
// @Summary 单个学生的作答明细
// @Tags 批改
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验 ID"
// @Param   studentId path int true "学生 ID"
// @Success 200 {object} util.Response{data=[]repository.AnswerDetailRow}
// @Router /api/admin/quizzes/{id}/submissions/{studentId} [get]
func (c *GradingController) GetSubmissionDetail(ctx *gin.Context) {
	rows, err := c.GradingService.GetSubmissionDetail(
		util.ParseUintOrZero(ctx.Param("studentId")),
		util.ParseUintOrZero(ctx.Param("id")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

type gradeRequest struct {
	Score    *int   `json:"score" binding:"required"`
	Feedback string `json:"feedback"`
}

// GradeAnswer godoc
// @Summary 批改一条作答
// @Description 重复批改覆盖旧评分
// @Tags 批改
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   answerId path int true "作答 ID"
// @Param   body body gradeRequest true "评分与评语"
// @Success 200 {object} util.Response{data=model.StudentAnswer}
// @Router /api/admin/answers/{answerId}/grade [post]
func (c *GradingController) GradeAnswer(ctx *gin.Context) {
	var req gradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if *req.Score < 0 || *req.Score > 1 {
		util.BadRequest(ctx, "score must be 0 or 1")
		return
	}

	claims := util.GetUserFromContext(ctx)
	answer, err := c.GradingService.GradeAnswer(claims.UserID,
		util.ParseUintOrZero(ctx.Param("answerId")), *req.Score, req.Feedback)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, answer)
}

// PublishResults godoc
// @Summary 发布成绩
// @Description 仅月考与期末可发布；重复发布是 no-op
// @Tags 批改
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验 ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "daily 测验不可发布"
// @Router /api/admin/quizzes/{id}/publish [post]
func (c *GradingController) PublishResults(ctx *gin.Context) {
	if err := c.GradingService.PublishResults(util.ParseUintOrZero(ctx.Param("id"))); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
