// @title CBDA 考试模拟器 API
// @version 1.0
// @description CBDA考试模拟应用的后端服务器。

// @host localhost:8080
// @BasePath /
package main

import (
	"cbda_exam_backend/internal/app"
	"cbda_exam_backend/internal/config"
	"cbda_exam_backend/pkg/configwatcher"
	"cbda_exam_backend/pkg/logger"
	"flag"
	"log"
	"path/filepath"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	go configwatcher.WatchConfig(filepath.Join(*configDir, "config.yaml"), application.OnConfigChange)

	application.Run()
}
