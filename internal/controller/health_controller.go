package controller

import (
	"cbda_exam_backend/internal/util"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	DataPath string
}

func NewHealthController(dataPath string) *HealthController {
	return &HealthController{DataPath: dataPath}
}

// @Summary 健康检查
// @Description 检查服务状态和数据目录可写性
// @Tags 系统
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 数据目录必须可写，否则所有写路由都会失败
	probe := filepath.Join(c.DataPath, ".health")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "data directory not writable")
		return
	}
	os.Remove(probe)

	util.Success(ctx, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
