// @title CourseMart 后端 API
// @version 1.0
// @description 在线课程商城的后端服务：课程目录、报名学习、线下支付审核、评价与折扣。

// @contact.name API支持

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api

package main

import (
	"coursemart_backend/internal/app"
	"coursemart_backend/internal/config"
	"coursemart_backend/pkg/logger"
	"flag"
	"log"

	"go.uber.org/zap"
)

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	// 命令行参数
	configPath := flag.String("config", "configs", "配置文件目录")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application, err := app.NewApp(cfg, *configPath)
	if err != nil {
		logger.Log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		logger.Log.Info("数据库迁移完成，退出程序")
		return
	}

	application.Run()
}
