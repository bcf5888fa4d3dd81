package controller

import (
	"cbda_exam_backend/internal/service"
	"cbda_exam_backend/internal/util"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	AuthService    *service.AuthService
	ResultService  *service.ResultService
	StorageService *service.StorageService
}

func NewAdminController(authService *service.AuthService, resultService *service.ResultService, storageService *service.StorageService) *AdminController {
	return &AdminController{
		AuthService:    authService,
		ResultService:  resultService,
		StorageService: storageService,
	}
}

// Users godoc
// @Summary 用户列表
// @Description 返回全部用户，密码哈希已剥离
// @Tags 管理
// @Produce  json
// @Success 200 {object} map[string]interface{} "成功"
// @Router /admin/users [get]
func (c *AdminController) Users(ctx *gin.Context) {
	users, err := c.AuthService.ListUsers()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"users": users,
		"count": len(users),
	})
}

// Stats godoc
// @Summary 仪表盘统计
// @Description 总数、独立用户数、平均分、通过率，外加按类型细分
// @Tags 管理
// @Produce  json
// @Success 200 {object} map[string]interface{} "成功"
// @Router /admin/stats [get]
func (c *AdminController) Stats(ctx *gin.Context) {
	results, err := c.ResultService.All()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"stats":     service.ComputeStats(results),
		"breakdown": service.ComputeTypeBreakdown(results),
	})
}

// UploadLogo godoc
// @Summary 上传站点logo
// @Description 接收图片文件，内容嗅探校验MIME后存入uploads目录
// @Tags 管理
// @Accept  multipart/form-data
// @Produce  json
// @Param   file formData file true "图片文件"
// @Success 200 {object} map[string]interface{} "成功"
// @Failure 400 {object} map[string]interface{} "不是图片文件"
// @Router /admin/upload-logo [post]
func (c *AdminController) UploadLogo(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "missing file")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{"image/"})
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	// MIME嗅探消耗了前512字节，重新打开再上传
	src2, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src2.Close()

	filename := "logo" + filepath.Ext(file.Filename)
	if _, err := c.StorageService.Upload(ctx.Request.Context(), filename, src2, file.Size, mimeType); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "logo uploaded"})
}
