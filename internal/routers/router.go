package routers

import (
	"time"

	"github.com/Evraldi/realtime-texteditor-sub000/internal/app"
	"github.com/Evraldi/realtime-texteditor-sub000/internal/middleware"
	"github.com/Evraldi/realtime-texteditor-sub000/internal/routers/api_router"
	"github.com/Evraldi/realtime-texteditor-sub000/internal/routers/websocket_router"
	pkgapp "github.com/Evraldi/realtime-texteditor-sub000/pkg/app"
	"github.com/Evraldi/realtime-texteditor-sub000/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/lxzan/gws"
)

var methodLimiters = limiter.NewMethodLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/user",
		FillInterval: time.Second,
		Capacity:     10,
		Quantum:      10,
	},
)

// NewRouter 组装 HTTP 路由与 WebSocket 服务
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	var wss = pkgapp.NewWebsocketServer(pkgapp.WebsocketServerConfig{
		GWSOption: gws.ServerOption{
			CheckUtf8Enabled:    true,
			ParallelEnabled:     true,                                 // 开启并行消息处理
			Recovery:            gws.Recovery,                         // 开启异常恢复
			PermessageDeflate:   gws.PermessageDeflate{Enabled: true}, // 开启压缩
			ParallelGolimit:     8,
			ReadMaxPayloadSize:  1024 * 1024 * 16, // 设置最大读取缓冲区大小 16MB
			WriteMaxPayloadSize: 1024 * 1024 * 16, // 设置最大写入缓冲区大小 16MB
		},
		PingInterval:    time.Duration(cfg.App.WebsocketPingInterval),
		PingWait:        time.Duration(cfg.App.WebsocketPingWait),
		IsReturnSuccess: cfg.App.IsReturnSuccess,
		TokenManager:    appContainer.TokenManager,
	})

	// 创建 WebSocket Handler（注入 App Container）
	documentWSHandler := websocket_router.NewDocumentWSHandler(appContainer)

	// 加入 / 离开房间
	wss.Use(websocket_router.ActionDocumentJoin, documentWSHandler.DocumentJoin)
	wss.Use(websocket_router.ActionDocumentLeave, documentWSHandler.DocumentLeave)
	// 光标同步
	wss.Use(websocket_router.ActionCursorMove, documentWSHandler.CursorMove)
	// 内容广播
	wss.Use(websocket_router.ActionDocumentUpdate, documentWSHandler.DocumentUpdate)
	// 内容持久化
	wss.Use(websocket_router.ActionDocumentSave, documentWSHandler.DocumentSave)

	wss.UserDataSelectUse(documentWSHandler.UserData)
	// 连接断开时清理房间成员
	wss.CloseUse(documentWSHandler.ClientClose)

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfoWithConfig(app.Name, appContainer.Version().Version))
		api.Use(gin.Logger())
		api.Use(middleware.TraceMiddlewareWithConfig(cfg.Tracer.Enabled, cfg.Tracer.Header)) // Trace ID 中间件
		api.Use(middleware.RateLimiter(methodLimiters))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.Cors())
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		userHandler := api_router.NewUserHandler(appContainer)
		documentHandler := api_router.NewDocumentHandler(appContainer, wss)
		versionHandler := api_router.NewVersionHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)

		api.POST("/user/register", userHandler.Register)
		api.POST("/user/login", userHandler.Login)

		// WebSocket 协作入口
		api.GET("/document/sync", wss.Run())

		// 服务端版本号与健康检查接口（无需认证）
		api.GET("/version", healthHandler.ServerVersion)
		api.GET("/health", healthHandler.Check)

		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).POST("/user/change_password", userHandler.UserChangePassword)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/user/info", userHandler.UserInfo)

		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).POST("/document", documentHandler.Create)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/document", documentHandler.Get)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/documents", documentHandler.List)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).PUT("/document", documentHandler.Rename)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).DELETE("/document", documentHandler.Delete)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).POST("/document/save", documentHandler.Save)

		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/document/versions", versionHandler.List)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/document/version", versionHandler.Get)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).POST("/document/version", versionHandler.Create)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).PUT("/document/version/restore", versionHandler.Restore)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).GET("/document/version/compare", versionHandler.Compare)
		api.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey)).POST("/document/version/tag", versionHandler.Tag)
	}

	r.Use(middleware.Cors())
	r.NoRoute(middleware.NoFound())

	return r
}
