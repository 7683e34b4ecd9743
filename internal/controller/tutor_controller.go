package controller

import (
	"khattha_backend/internal/service"
	"khattha_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TutorController struct {
	TutorService *service.TutorService
}

func NewTutorController(tutorService *service.TutorService) *TutorController {
	return &TutorController{TutorService: tutorService}
}

type askRequest struct {
	SubjectID uint   `json:"subjectId" binding:"required"`
	Question  string `json:"question" binding:"required"`
}

// Ask godoc
// @Summary 向智能助教提问
// @Description 先过订阅闸门再查大纲，闸门不放行时不会触达大模型
// @Tags 助教
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body askRequest true "问题"
// @Success 200 {object} util.Response{data=model.ChatHistory}
// @Failure 403 {object} util.Response "无有效订阅或已过期"
// @Failure 409 {object} util.Response "科目未上传大纲"
// @Failure 429 {object} util.Response "当日提问次数已用完"
// @Router /api/tutor/ask [post]
func (c *TutorController) Ask(ctx *gin.Context) {
	var req askRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	entry, err := c.TutorService.Ask(ctx.Request.Context(), claims.UserID, req.SubjectID, req.Question)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, entry)
}

// AskStream godoc
// @Summary 向智能助教提问（SSE 流式返回）
// @Description 校验顺序与 /tutor/ask 一致，回答以 SSE message 事件逐段推送，结束时发送 end 事件
// @Tags 助教
// @Accept  json
// @Security BearerAuth
// @Param   body body askRequest true "问题"
// @Failure 403 {object} util.Response "无有效订阅或已过期"
// @Failure 409 {object} util.Response "科目未上传大纲"
// @Failure 429 {object} util.Response "当日提问次数已用完"
// @Router /api/tutor/ask-stream [post]
func (c *TutorController) AskStream(ctx *gin.Context) {
	var req askRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	stream, errChan, err := c.TutorService.AskStream(ctx.Request.Context(), claims.UserID, req.SubjectID, req.Question)
	if err != nil {
		// 前置校验失败时还未开始推流，走普通的错误响应
		respondError(ctx, err)
		return
	}

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("Transfer-Encoding", "chunked")

	for content := range stream {
		ctx.SSEvent("message", content)
		ctx.Writer.Flush()
	}

	if err := <-errChan; err != nil {
		ctx.SSEvent("error", err.Error())
		ctx.Writer.Flush()
	}

	ctx.SSEvent("end", "done")
	ctx.Writer.Flush()
}

// History godoc
// @Summary 助教问答历史
// @Tags 助教
// @Produce  json
// @Security BearerAuth
// @Param   subjectId query int true "科目 ID"
// @Param   limit query int false "条数上限，默认 50"
// @Success 200 {object} util.Response{data=[]model.ChatHistory}
// @Router /api/tutor/history [get]
func (c *TutorController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	subjectID := util.ParseUintOrZero(ctx.Query("subjectId"))
	if subjectID == 0 {
		util.BadRequest(ctx, "subjectId is required")
		return
	}

	limit := int(util.ParseUintOrZero(ctx.Query("limit")))
	history, err := c.TutorService.History(claims.UserID, subjectID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, history)
}
