package controller

import (
	"khattha_backend/internal/service"
	"khattha_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	NotificationService *service.NotificationService
}

func NewNotificationController(notificationService *service.NotificationService) *NotificationController {
	return &NotificationController{NotificationService: notificationService}
}

// Send godoc
// @Summary 发送站内通知
// @Description userId 留空时广播给全部学生
// @Tags 通知管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.NotificationReq true "通知内容"
// @Success 201 {object} util.Response{data=object}
// @Router /api/admin/notifications [post]
func (c *NotificationController) Send(ctx *gin.Context) {
	var req service.NotificationReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sent, err := c.NotificationService.Send(req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"sent": sent})
}

// ListMine godoc
// @Summary 我的通知
// @Tags 通知
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Notification}
// @Router /api/notifications [get]
func (c *NotificationController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	notifications, err := c.NotificationService.ListMine(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, notifications)
}

// MarkRead godoc
// @Summary 标记通知已读
// @Tags 通知
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "通知 ID"
// @Success 200 {object} util.Response
// @Router /api/notifications/{id}/read [post]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.NotificationService.MarkRead(util.ParseUintOrZero(ctx.Param("id")), claims.UserID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
