package controller

import (
	"cbda_exam_backend/internal/service"
	"cbda_exam_backend/internal/util"
	"cbda_exam_backend/pkg/logger"
	"cbda_exam_backend/pkg/monitoring"
	"errors"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ResultController struct {
	ResultService  *service.ResultService
	StorageService *service.StorageService
}

func NewResultController(resultService *service.ResultService, storageService *service.StorageService) *ResultController {
	return &ResultController{
		ResultService:  resultService,
		StorageService: storageService,
	}
}

// swagger:model SubmitResultRequest
type SubmitResultRequest struct {
	UserID         string   `json:"userId"`
	UserName       string   `json:"userName" binding:"required"`
	UserEmail      string   `json:"userEmail"`
	TestName       string   `json:"testName" binding:"required"`
	TestType       string   `json:"testType"`
	Score          *float64 `json:"score" binding:"required"`
	Date           string   `json:"date"`
	TimeTaken      string   `json:"timeTaken"`
	TotalQuestions int      `json:"totalQuestions"`
	CorrectAnswers int      `json:"correctAnswers"`
}

// Submit godoc
// @Summary 提交考试成绩
// @Description 追加一条带服务端ID和时间戳的成绩记录
// @Tags 成绩
// @Accept  json
// @Produce  json
// @Param   body body SubmitResultRequest true "成绩内容"
// @Success 200 {object} map[string]interface{} "成功，返回resultId"
// @Failure 400 {object} map[string]interface{} "缺少必填字段"
// @Failure 500 {object} map[string]interface{} "服务器内部错误"
// @Router /results [post]
func (c *ResultController) Submit(ctx *gin.Context) {
	var req SubmitResultRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ResultService.Submit(service.SubmitInput{
		UserID:         req.UserID,
		UserName:       req.UserName,
		UserEmail:      req.UserEmail,
		TestName:       req.TestName,
		TestType:       req.TestType,
		Score:          *req.Score,
		Date:           req.Date,
		TimeTaken:      req.TimeTaken,
		TotalQuestions: req.TotalQuestions,
		CorrectAnswers: req.CorrectAnswers,
	})
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	monitoring.ResultSubmissions.WithLabelValues(result.TestType).Inc()
	util.Success(ctx, gin.H{"resultId": result.ID})
}

// ByUser godoc
// @Summary 获取用户成绩
// @Description 按提交时间倒序返回该用户的全部成绩
// @Tags 成绩
// @Produce  json
// @Param   userId path string true "用户ID"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /results/user/{userId} [get]
func (c *ResultController) ByUser(ctx *gin.Context) {
	results, err := c.ResultService.ByUser(ctx.Param("userId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"results": results,
		"count":   len(results),
	})
}

// AdminAll godoc
// @Summary 管理端全部成绩
// @Description 返回全部成绩以及聚合统计
// @Tags 成绩
// @Produce  json
// @Success 200 {object} map[string]interface{} "成功"
// @Router /results/admin/all [get]
func (c *ResultController) AdminAll(ctx *gin.Context) {
	results, err := c.ResultService.All()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"results": results,
		"count":   len(results),
		"stats":   service.ComputeStats(results),
	})
}

// ExportCSV godoc
// @Summary 导出CSV
// @Description 把全部成绩导出为CSV附件
// @Tags 成绩
// @Produce  text/csv
// @Success 200 {string} string "CSV内容"
// @Router /results/export/csv [get]
func (c *ResultController) ExportCSV(ctx *gin.Context) {
	filename, content, err := c.ResultService.ExportCSV()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(200, "text/csv", []byte(content))
}

// ExportCSVCloud godoc
// @Summary 导出CSV并镜像到云端
// @Description 上传CSV到对象存储并返回URL；上传失败时降级为直接返回CSV
// @Tags 成绩
// @Produce  json
// @Success 200 {object} map[string]interface{} "成功，返回url和filename"
// @Router /results/export/csv-cloud [get]
func (c *ResultController) ExportCSVCloud(ctx *gin.Context) {
	filename, content, err := c.ResultService.ExportCSV()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	url, err := c.StorageService.Upload(ctx.Request.Context(), filename,
		strings.NewReader(content), int64(len(content)), "text/csv")
	if err != nil {
		// 云端镜像是尽力而为：失败记日志后退回普通CSV下载
		monitoring.CSVMirrorFailures.Inc()
		logger.Log.Warn("cloud CSV mirror failed, serving CSV directly",
			zap.String("filename", filename), zap.Error(err))
		ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		ctx.Data(200, "text/csv", []byte(content))
		return
	}

	util.Success(ctx, gin.H{
		"url":      url,
		"filename": filename,
	})
}

// ListCloudCSVs godoc
// @Summary 列出云端CSV文件
// @Tags 成绩
// @Produce  json
// @Success 200 {object} map[string]interface{} "成功"
// @Router /results/csv-files [get]
func (c *ResultController) ListCloudCSVs(ctx *gin.Context) {
	files, err := c.StorageService.ListCSVFiles(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"files": files})
}

// DeleteCloudCSV godoc
// @Summary 删除云端CSV文件
// @Tags 成绩
// @Produce  json
// @Param   filename path string true "文件名"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /results/csv-cloud/{filename} [delete]
func (c *ResultController) DeleteCloudCSV(ctx *gin.Context) {
	// 只允许纯文件名，拒绝带路径的key
	filename := filepath.Base(ctx.Param("filename"))

	if err := c.StorageService.Delete(ctx.Request.Context(), filename); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "file deleted"})
}

// Delete godoc
// @Summary 删除成绩
// @Description 按ID删除一条成绩记录
// @Tags 成绩
// @Produce  json
// @Param   resultId path string true "成绩ID"
// @Success 200 {object} map[string]interface{} "成功"
// @Failure 404 {object} map[string]interface{} "成绩不存在"
// @Router /results/{resultId} [delete]
func (c *ResultController) Delete(ctx *gin.Context) {
	if err := c.ResultService.Delete(ctx.Param("resultId")); err != nil {
		if errors.Is(err, util.ErrResultNotFound) {
			util.NotFound(ctx, "result not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"message": "result deleted"})
}
