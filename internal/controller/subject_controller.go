package controller

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"khattha_backend/internal/model"
	"khattha_backend/internal/service"
	"khattha_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SubjectController struct {
	SubjectService *service.SubjectService
	AccessService  *service.AccessService
	StorageService *service.StorageService
}

func NewSubjectController(subjectService *service.SubjectService, accessService *service.AccessService, storageService *service.StorageService) *SubjectController {
	return &SubjectController{
		SubjectService: subjectService,
		AccessService:  accessService,
		StorageService: storageService,
	}
}

// Create godoc
// @Summary 创建科目
// @Tags 科目管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.SubjectReq true "科目信息"
// @Success 201 {object} util.Response{data=model.Subject}
// @Router /api/admin/subjects [post]
func (c *SubjectController) Create(ctx *gin.Context) {
	var req service.SubjectReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	subject, err := c.SubjectService.Create(claims.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, subject)
}

// Update godoc
// @Summary 更新科目
// @Tags 科目管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "科目 ID"
// @Param   body body service.SubjectReq true "更新字段"
// @Success 200 {object} util.Response{data=model.Subject}
// @Router /api/admin/subjects/{id} [put]
func (c *SubjectController) Update(ctx *gin.Context) {
	var req service.SubjectReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	subject, err := c.SubjectService.Update(util.ParseUintOrZero(ctx.Param("id")), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, subject)
}

// Delete godoc
// @Summary 删除科目
// @Description 级联删除科目下的课程、测验与授权
// @Tags 科目管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "科目 ID"
// @Success 200 {object} util.Response
// @Router /api/admin/subjects/{id} [delete]
func (c *SubjectController) Delete(ctx *gin.Context) {
	if err := c.SubjectService.Delete(util.ParseUintOrZero(ctx.Param("id"))); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListAll godoc
// @Summary 全部科目
// @Tags 科目管理
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Subject}
// @Router /api/admin/subjects [get]
func (c *SubjectController) ListAll(ctx *gin.Context) {
	subjects, err := c.SubjectService.ListAll()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, subjects)
}

// ListMine godoc
// @Summary 我的科目
// @Description 只返回当前学生持有有效订阅的科目
// @Tags 科目
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Subject}
// @Router /api/subjects [get]
func (c *SubjectController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	subjects, err := c.SubjectService.ListMine(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, subjects)
}

// Get godoc
// @Summary 科目详情
// @Description 学生访问前先过订阅闸门
// @Tags 科目
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "科目 ID"
// @Success 200 {object} util.Response{data=model.Subject}
// @Failure 403 {object} util.Response "无有效订阅"
// @Router /api/subjects/{id} [get]
func (c *SubjectController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	subjectID := util.ParseUintOrZero(ctx.Param("id"))

	if claims.Role != model.Admin {
		decision := c.AccessService.CheckAccess(claims.UserID, subjectID)
		if !decision.Allowed {
			util.Forbidden(ctx, decision.Reason)
			return
		}
	}

	subject, err := c.SubjectService.GetByID(subjectID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, subject)
}

// CheckAccess godoc
// @Summary 订阅状态查询
// @Description 返回访问判定与拒绝原因编码
// @Tags 科目
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "科目 ID"
// @Success 200 {object} util.Response{data=service.AccessDecision}
// @Router /api/subjects/{id}/access [get]
func (c *SubjectController) CheckAccess(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	decision := c.AccessService.CheckAccess(claims.UserID, util.ParseUintOrZero(ctx.Param("id")))
	util.Success(ctx, decision)
}

// UploadCurriculum godoc
// @Summary 上传科目大纲文件
// @Tags 科目管理
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "科目 ID"
// @Param   file formData file true "大纲文件"
// @Success 200 {object} util.Response{data=model.Subject}
// @Router /api/admin/subjects/{id}/curriculum [post]
func (c *SubjectController) UploadCurriculum(ctx *gin.Context) {
	subjectID := util.ParseUintOrZero(ctx.Param("id"))
	if _, err := c.SubjectService.GetByID(subjectID); err != nil {
		respondError(ctx, err)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	filename := fmt.Sprintf("curriculum/%d/%s%s", subjectID, uuid.NewString(), ext)
	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, file, fileHeader.Size,
		fileHeader.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	subject, err := c.SubjectService.Update(subjectID, service.SubjectReq{CurriculumURL: &url})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, subject)
}

type grantAccessRequest struct {
	StudentID uint   `json:"studentId" binding:"required"`
	SubjectID uint   `json:"subjectId" binding:"required"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// GrantAccess godoc
// @Summary 授予学生科目访问权
// @Description 日期为 RFC3339 格式，留空表示不限
// @Tags 授权管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body grantAccessRequest true "授权信息"
// @Success 201 {object} util.Response
// @Router /api/admin/permissions [post]
func (c *SubjectController) GrantAccess(ctx *gin.Context) {
	var req grantAccessRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	permission := &model.AccessPermission{
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
	}
	if req.StartDate != "" {
		start, err := time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			util.BadRequest(ctx, "invalid startDate")
			return
		}
		permission.StartDate = &start
	}
	if req.EndDate != "" {
		end, err := time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			util.BadRequest(ctx, "invalid endDate")
			return
		}
		permission.EndDate = &end
	}

	claims := util.GetUserFromContext(ctx)
	if err := c.SubjectService.GrantAccess(claims.UserID, permission); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, permission)
}

// RevokeAccess godoc
// @Summary 撤销学生科目访问权
// @Tags 授权管理
// @Produce  json
// @Security BearerAuth
// @Param   studentId query int true "学生 ID"
// @Param   subjectId query int true "科目 ID"
// @Success 200 {object} util.Response
// @Router /api/admin/permissions [delete]
func (c *SubjectController) RevokeAccess(ctx *gin.Context) {
	studentID := util.ParseUintOrZero(ctx.Query("studentId"))
	subjectID := util.ParseUintOrZero(ctx.Query("subjectId"))
	if studentID == 0 || subjectID == 0 {
		util.BadRequest(ctx, "studentId and subjectId are required")
		return
	}

	if err := c.SubjectService.RevokeAccess(studentID, subjectID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListPermissions godoc
// @Summary 授权列表
// @Tags 授权管理
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]repository.PermissionRow}
// @Router /api/admin/permissions [get]
func (c *SubjectController) ListPermissions(ctx *gin.Context) {
	rows, err := c.SubjectService.ListPermissions()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}
