package controller

import (
	"khattha_backend/internal/model"
	"khattha_backend/internal/service"
	"khattha_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService *service.LessonService
	AccessService *service.AccessService
}

func NewLessonController(lessonService *service.LessonService, accessService *service.AccessService) *LessonController {
	return &LessonController{LessonService: lessonService, AccessService: accessService}
}

// Create godoc
// @Summary 创建课程
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.LessonReq true "课程信息"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Router /api/admin/lessons [post]
func (c *LessonController) Create(ctx *gin.Context) {
	var req service.LessonReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	lesson, err := c.LessonService.Create(claims.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// Update godoc
// @Summary 更新课程
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "课程 ID"
// @Param   body body service.LessonReq true "更新字段"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Router /api/admin/lessons/{id} [put]
func (c *LessonController) Update(ctx *gin.Context) {
	var req service.LessonReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.LessonService.Update(util.ParseUintOrZero(ctx.Param("id")), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// Delete godoc
// @Summary 删除课程
// @Tags 课程管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "课程 ID"
// @Success 200 {object} util.Response
// @Router /api/admin/lessons/{id} [delete]
func (c *LessonController) Delete(ctx *gin.Context) {
	if err := c.LessonService.Delete(util.ParseUintOrZero(ctx.Param("id"))); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListBySubject godoc
// @Summary 科目下的课程列表
// @Description 学生访问前先过订阅闸门
// @Tags 课程
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "科目 ID"
// @Success 200 {object} util.Response{data=[]model.Lesson}
// @Failure 403 {object} util.Response "无有效订阅"
// @Router /api/subjects/{id}/lessons [get]
func (c *LessonController) ListBySubject(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	subjectID := util.ParseUintOrZero(ctx.Param("id"))

	if claims.Role != model.Admin {
		decision := c.AccessService.CheckAccess(claims.UserID, subjectID)
		if !decision.Allowed {
			util.Forbidden(ctx, decision.Reason)
			return
		}
	}

	lessons, err := c.LessonService.ListBySubject(subjectID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, lessons)
}

// Get godoc
// @Summary 课程详情
// @Tags 课程
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "课程 ID"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Router /api/lessons/{id} [get]
func (c *LessonController) Get(ctx *gin.Context) {
	lesson, err := c.LessonService.GetByID(util.ParseUintOrZero(ctx.Param("id")))
	if err != nil {
		respondError(ctx, err)
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims.Role != model.Admin {
		decision := c.AccessService.CheckAccess(claims.UserID, lesson.SubjectID)
		if !decision.Allowed {
			util.Forbidden(ctx, decision.Reason)
			return
		}
	}
	util.Success(ctx, lesson)
}
