package controller

import (
	"khattha_backend/internal/service"
	"khattha_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DiscountController struct {
	DiscountService *service.DiscountService
}

func NewDiscountController(discountService *service.DiscountService) *DiscountController {
	return &DiscountController{DiscountService: discountService}
}

// Create godoc
// @Summary 创建合作商家折扣
// @Tags 折扣管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.DiscountReq true "折扣信息"
// @Success 201 {object} util.Response{data=model.Discount}
// @Router /api/admin/discounts [post]
func (c *DiscountController) Create(ctx *gin.Context) {
	var req service.DiscountReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	discount, err := c.DiscountService.Create(claims.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, discount)
}

// Update godoc
// @Summary 更新折扣
// @Tags 折扣管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "折扣 ID"
// @Param   body body service.DiscountReq true "更新字段"
// @Success 200 {object} util.Response{data=model.Discount}
// @Router /api/admin/discounts/{id} [put]
func (c *DiscountController) Update(ctx *gin.Context) {
	var req service.DiscountReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	discount, err := c.DiscountService.Update(util.ParseUintOrZero(ctx.Param("id")), req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, discount)
}

// ListActive godoc
// @Summary 学生可见的折扣列表
// @Tags 折扣
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Discount}
// @Router /api/discounts [get]
func (c *DiscountController) ListActive(ctx *gin.Context) {
	discounts, err := c.DiscountService.ListActive(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, discounts)
}

// ListAll godoc
// @Summary 全部折扣（含停用）
// @Tags 折扣管理
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Discount}
// @Router /api/admin/discounts [get]
func (c *DiscountController) ListAll(ctx *gin.Context) {
	discounts, err := c.DiscountService.ListAll()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, discounts)
}

// Delete godoc
// @Summary 删除折扣
// @Tags 折扣管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "折扣 ID"
// @Success 200 {object} util.Response
// @Router /api/admin/discounts/{id} [delete]
func (c *DiscountController) Delete(ctx *gin.Context) {
	if err := c.DiscountService.Delete(util.ParseUintOrZero(ctx.Param("id"))); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
