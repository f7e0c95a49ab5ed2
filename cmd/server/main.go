// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"momcare-go/internal/config"
	"momcare-go/internal/handler"
	"momcare-go/internal/middleware"
	"momcare-go/internal/model"
	"momcare-go/internal/pipeline"
	"momcare-go/internal/repository"
	"momcare-go/internal/service"
	"momcare-go/pkg/database"
	"momcare-go/pkg/es"
	"momcare-go/pkg/imagegen"
	"momcare-go/pkg/kafka"
	"momcare-go/pkg/log"
	"momcare-go/pkg/musicgen"
	"momcare-go/pkg/storage"
	"momcare-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis、对象存储、搜索与消息队列
	database.InitPostgres(cfg.Database.Postgres.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	kafka.InitProducer(cfg.Kafka)

	// 3.1 自动迁移数据表
	if err := database.DB.AutoMigrate(
		&model.User{},
		&model.Hospital{},
		&model.Mission{},
		&model.MissionFolder{},
		&model.Category{},
		&model.SubMission{},
		&model.Submission{},
		&model.ActionType{},
		&model.Generation{},
	); err != nil {
		log.Fatalf("数据表迁移失败: %v", err)
	}

	// 4. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	hospitalRepo := repository.NewHospitalRepository(database.DB)
	missionRepo := repository.NewMissionRepository(database.DB)
	folderRepo := repository.NewFolderRepository(database.DB)
	categoryRepo := repository.NewCategoryRepository(database.DB)
	subMissionRepo := repository.NewSubMissionRepository(database.DB)
	submissionRepo := repository.NewSubmissionRepository(database.DB)
	actionTypeRepo := repository.NewActionTypeRepository(database.DB)
	generationRepo := repository.NewGenerationRepository(database.DB)
	reviewCacheRepo := repository.NewReviewCacheRepository(database.RDB)

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	userService := service.NewUserService(userRepo, hospitalRepo, jwtManager)
	searchService := service.NewSearchService(cfg.Elasticsearch.IndexName)
	missionService := service.NewMissionService(missionRepo, folderRepo, subMissionRepo, categoryRepo, hospitalRepo, searchService)
	submissionService := service.NewSubmissionService(submissionRepo, subMissionRepo, missionRepo, reviewCacheRepo)
	reviewService := service.NewReviewService(missionRepo, subMissionRepo, submissionRepo, reviewCacheRepo,
		time.Duration(cfg.Review.StatsCacheTTLSec)*time.Second)
	actionTypeService := service.NewActionTypeService(actionTypeRepo)
	generationService := service.NewGenerationService(generationRepo, kafka.ProduceGenerationTask)

	// 5.1 种子化系统内置行为类型
	if err := actionTypeService.Seed(); err != nil {
		log.Fatalf("行为类型种子化失败: %v", err)
	}

	// 6. 初始化生成任务处理管道 (Processor)
	processor := pipeline.NewProcessor(
		imagegen.NewClient(cfg.ImageGen),
		musicgen.NewClient(cfg.MusicGen),
		cfg.MinIO,
		generationRepo,
	)

	// 7. 启动后台 Kafka 消费者
	go kafka.StartConsumer(cfg.Kafka, processor)

	// 8. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	userHandler := handler.NewUserHandler(userService)
	missionHandler := handler.NewMissionHandler(missionService)
	submissionHandler := handler.NewSubmissionHandler(submissionService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	actionTypeHandler := handler.NewActionTypeHandler(actionTypeService)
	generationHandler := handler.NewGenerationHandler(generationService, jwtManager)
	searchHandler := handler.NewSearchHandler(searchService)

	// 9. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		// Auth 路由组
		auth := apiV1.Group("/auth")
		{
			auth.POST("/refreshToken", userHandler.RefreshToken)
		}

		users := apiV1.Group("/users")
		{
			// 无需认证的路由 (公开访问)
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)

			// 需要认证的路由 (仅限登录用户访问)
			authed := users.Group("/")
			authed.Use(middleware.AuthMiddleware(jwtManager, userService))
			{
				authed.GET("/me", userHandler.GetProfile)
			}
		}

		// Hospital 路由，公开供注册界面选择
		apiV1.GET("/hospitals", userHandler.ListHospitals)

		// Submission 路由组，需要认证
		submissions := apiV1.Group("/submissions")
		submissions.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			submissions.POST("", submissionHandler.CreateSubmission)
			submissions.GET("/mine", submissionHandler.ListMySubmissions)
		}

		// Generation 路由组，需要认证
		generations := apiV1.Group("/generations")
		generations.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			generations.POST("/image", generationHandler.GenerateImage)
			generations.POST("/music", generationHandler.GenerateMusic)
			generations.GET("/mine", generationHandler.ListMyGenerations)
			generations.GET("/:id", generationHandler.GetGeneration)
		}
		// Generation 进度推送 (WebSocket)，token 置于路径参数
		r.GET("/generations/progress/:token/:id", generationHandler.Progress)

		admin := apiV1.Group("/admin")
		// 管理员路由组，需要同时通过认证和管理员授权两个中间件
		admin.Use(middleware.AuthMiddleware(jwtManager, userService), middleware.AdminAuthMiddleware())
		{
			// 任务与文件夹管理
			missions := admin.Group("/missions")
			{
				missions.GET("", missionHandler.ListMissions)
				missions.POST("", missionHandler.CreateMission)
				missions.PUT("/reorder", missionHandler.ReorderMissions)
				missions.GET("/:missionId", missionHandler.GetMission)
				missions.PUT("/:missionId", missionHandler.UpdateMission)
				missions.DELETE("/:missionId", missionHandler.DeleteMission)
			}

			folders := admin.Group("/folders")
			{
				folders.GET("", missionHandler.ListFolders)
				folders.POST("", missionHandler.CreateFolder)
				folders.PUT("/reorder", missionHandler.ReorderFolders)
				folders.PUT("/:id", missionHandler.UpdateFolder)
				folders.DELETE("/:id", missionHandler.DeleteFolder)
			}

			categories := admin.Group("/categories")
			{
				categories.GET("", missionHandler.ListCategories)
				categories.POST("", missionHandler.CreateCategory)
				categories.PUT("/:id", missionHandler.UpdateCategory)
				categories.DELETE("/:id", missionHandler.DeleteCategory)
			}

			// 子任务管理，挂在所属任务之下
			subMissions := admin.Group("/missions/:missionId/sub-missions")
			{
				subMissions.GET("", missionHandler.ListSubMissions)
				subMissions.POST("", missionHandler.CreateSubMission)
				subMissions.PUT("/reorder", missionHandler.ReorderSubMissions)
				subMissions.PUT("/:id", missionHandler.UpdateSubMission)
				subMissions.DELETE("/:id", missionHandler.DeleteSubMission)
				subMissions.PUT("/:id/toggle-active", missionHandler.ToggleSubMissionActive)
			}

			// 审核看板与审核动作
			review := admin.Group("/review")
			{
				review.GET("/stats", reviewHandler.Stats)
				review.GET("/themes/:missionId", reviewHandler.ThemeMissions)
				review.GET("/sub-missions/:subMissionId/submissions", reviewHandler.Submissions)
				review.PUT("/submissions/:id/approve", submissionHandler.ApproveSubmission)
				review.PUT("/submissions/:id/reject", submissionHandler.RejectSubmission)
			}

			// 行为类型注册表
			actionTypes := admin.Group("/action-types")
			{
				actionTypes.GET("", actionTypeHandler.ListActionTypes)
				actionTypes.POST("", actionTypeHandler.CreateActionType)
				actionTypes.PUT("/:id", actionTypeHandler.UpdateActionType)
				actionTypes.DELETE("/:id", actionTypeHandler.DeleteActionType)
			}

			// 任务全文检索
			admin.GET("/search", searchHandler.Search)
		}
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	// Kafka 消费循环随进程退出自然结束，无需单独关闭。
	log.Info("服务已优雅关闭")
}
