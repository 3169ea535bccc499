package router

import (
	"context"

	"profile-optimizer-go/internal/api/handler"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, profileHandler *handler.ProfileHandler) {
	// 根路径用作存活探针
	h.GET("/", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"service": "profile-optimizer", "status": "ok"})
	})

	api := h.Group("/api/v1")

	api.POST("/profile/upload", profileHandler.UploadProfile)
	api.GET("/submissions", profileHandler.ListSubmissions)

	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}
