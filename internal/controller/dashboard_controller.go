package controller

import (
	"khattha_backend/internal/service"
	"khattha_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// StudentStats godoc
// @Summary 学生仪表盘统计
// @Tags 仪表盘
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.StudentStats}
// @Router /api/dashboard [get]
func (c *DashboardController) StudentStats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	stats, err := c.DashboardService.GetStudentStats(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// AdminStats godoc
// @Summary 管理端仪表盘统计
// @Tags 仪表盘
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.AdminStats}
// @Router /api/admin/dashboard [get]
func (c *DashboardController) AdminStats(ctx *gin.Context) {
	stats, err := c.DashboardService.GetAdminStats()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
