package controller

import (
	"fmt"
	"path/filepath"
	"strings"

	"khattha_backend/internal/service"
	"khattha_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UploadController struct {
	StorageService *service.StorageService
}

func NewUploadController(storageService *service.StorageService) *UploadController {
	return &UploadController{StorageService: storageService}
}

// 作答图片大小上限 10MB
const maxAnswerImageSize = 10 << 20

// UploadAnswerImage godoc
// @Summary 上传作答图片
// @Description 论述题支持拍照作答，先上传图片再把返回的 URL 放进提交体
// @Tags 上传
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   file formData file true "图片文件"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "文件类型或大小不合法"
// @Router /api/uploads/answer-image [post]
func (c *UploadController) UploadAnswerImage(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	if fileHeader.Size > maxAnswerImageSize {
		util.BadRequest(ctx, "file exceeds 10MB limit")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	allowed := false
	for _, e := range util.AllowedImageExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		util.BadRequest(ctx, "unsupported image type")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	claims := util.GetUserFromContext(ctx)
	filename := fmt.Sprintf("answers/%d/%s%s", claims.UserID, uuid.NewString(), ext)
	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, file, fileHeader.Size,
		fileHeader.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}
