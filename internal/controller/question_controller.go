package controller

import (
	"cbda_exam_backend/internal/service"
	"cbda_exam_backend/internal/util"
	"cbda_exam_backend/pkg/logger"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type QuestionController struct {
	QuestionService *service.QuestionService
	UploadsPath     string
}

func NewQuestionController(questionService *service.QuestionService, uploadsPath string) *QuestionController {
	return &QuestionController{
		QuestionService: questionService,
		UploadsPath:     uploadsPath,
	}
}

// Upload godoc
// @Summary 上传题库
// @Description 上传一个JSON数组文件，覆盖该 (testType, testId) 的题库
// @Tags 题库
// @Accept  multipart/form-data
// @Produce  json
// @Param   testType path string true "测试类型"
// @Param   testId path string true "测试ID"
// @Param   file formData file true "JSON数组格式的题目文件"
// @Success 200 {object} map[string]interface{} "成功，返回题目数量"
// @Failure 400 {object} map[string]interface{} "文件格式错误"
// @Failure 500 {object} map[string]interface{} "服务器内部错误"
// @Router /questions/upload/{testType}/{testId} [post]
func (c *QuestionController) Upload(ctx *gin.Context) {
	testType := ctx.Param("testType")
	testID := ctx.Param("testId")

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "missing file")
		return
	}

	// 多部分内容先落到 uploads 暂存区，任何出口都要删掉
	tmpPath := filepath.Join(c.UploadsPath, uuid.NewString()+".upload")
	if err := ctx.SaveUploadedFile(file, tmpPath); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			logger.Log.Warn("failed to remove upload artifact",
				zap.String("path", tmpPath), zap.Error(err))
		}
	}()

	raw, err := os.ReadFile(tmpPath)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	count, err := c.QuestionService.Upload(testType, testID, raw)
	if err != nil {
		if errors.Is(err, util.ErrInvalidQuestionFile) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"count": count})
}

// Fetch godoc
// @Summary 获取一套题目
// @Description 返回该套题的全部题目，每次请求乱序
// @Tags 题库
// @Produce  json
// @Param   testType path string true "测试类型"
// @Param   testId path string true "测试ID"
// @Success 200 {object} map[string]interface{} "成功"
// @Failure 404 {object} map[string]interface{} "题库不存在"
// @Router /questions/{testType}/{testId} [get]
func (c *QuestionController) Fetch(ctx *gin.Context) {
	testType := ctx.Param("testType")
	testID := ctx.Param("testId")

	questions, err := c.QuestionService.Fetch(testType, testID, time.Now().UnixNano())
	if err != nil {
		if errors.Is(err, util.ErrQuestionSetNotFound) {
			util.NotFound(ctx, "question set not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{
		"questions": questions,
		"count":     len(questions),
	})
}

// Available godoc
// @Summary 列出可用套题
// @Description 扫描题库目录，返回每套题的类型、ID、题目数和文件名
// @Tags 题库
// @Produce  json
// @Success 200 {object} map[string]interface{} "成功"
// @Router /questions/available [get]
func (c *QuestionController) Available(ctx *gin.Context) {
	sets, err := c.QuestionService.Available()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"tests": sets})
}
