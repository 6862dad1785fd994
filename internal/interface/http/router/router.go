// Package router 注册HTTP路由
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/bookworld/internal/infrastructure/config"
	"github.com/xiebiao/bookworld/internal/interface/http/handler"
	"github.com/xiebiao/bookworld/internal/interface/http/middleware"
)

// Handlers 所有HTTP处理器
type Handlers struct {
	Book    *handler.BookHandler
	Order   *handler.OrderHandler
	User    *handler.UserHandler
	Cart    *handler.CartHandler
	Courier *handler.CourierHandler
	Upload  *handler.UploadHandler
	Site    *handler.SiteHandler
}

// New 创建Gin引擎并注册全部路由
//
//	/api/v1          公开接口
//	/api/v1 (auth)   需要登录
//	/api/v1/admin    需要员工角色，用户管理仅限管理员
func New(cfg config.ServerConfig, auth *middleware.AuthMiddleware, h Handlers) *gin.Engine {
	switch cfg.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSOrigins),
	)

	r.GET("/", handler.Health)
	r.GET("/ping", handler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")

	// 公开接口
	{
		authGroup := v1.Group("/auth")
		authGroup.POST("/register", h.User.Register)
		authGroup.POST("/login", h.User.Login)
		authGroup.POST("/refresh", h.User.RefreshToken)

		v1.GET("/books", h.Book.ListBooks)
		v1.GET("/books/:id", h.Book.GetBook)

		v1.GET("/site/settings", h.Site.GetSettings)
		v1.GET("/site/team", h.Site.ListTeam)
	}

	// 需要登录
	authed := v1.Group("", auth.RequireAuth())
	{
		authed.POST("/auth/logout", h.User.Logout)
		authed.GET("/users/me", h.User.Me)

		authed.POST("/orders", h.Order.PlaceOrder)
		authed.GET("/orders", h.Order.ListMyOrders)
		authed.GET("/orders/:id", h.Order.GetOrder)

		cart := authed.Group("/cart")
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.GET("/quote", h.Cart.Quote)
		cart.POST("/merge", h.Cart.MergeCart)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:book_id", h.Cart.SetQuantity)
		cart.DELETE("/items/:book_id", h.Cart.RemoveItem)
	}

	// 后台
	staff := v1.Group("", auth.RequireAuth(), middleware.RequireStaff())
	{
		staff.POST("/uploads", h.Upload.Upload)

		admin := staff.Group("/admin")
		admin.POST("/books", h.Book.PublishBook)
		admin.PUT("/books/:id", h.Book.UpdateBook)
		admin.DELETE("/books/:id", h.Book.DeleteBook)

		admin.GET("/orders", h.Order.ListAllOrders)
		admin.PUT("/orders/:id/status", h.Order.UpdateOrderStatus)
		admin.POST("/orders/:id/shipment", h.Order.CreateShipment)

		admin.GET("/courier/balance", h.Courier.Balance)
		admin.GET("/courier/status/:cid", h.Courier.Status)
		admin.POST("/courier/delivery-charge", h.Courier.DeliveryCharge)
		admin.POST("/courier/cancel/:cid", h.Courier.Cancel)

		admin.PUT("/site/settings", h.Site.UpdateSettings)
		admin.POST("/site/team", h.Site.CreateMember)
		admin.PUT("/site/team/:id", h.Site.UpdateMember)
		admin.DELETE("/site/team/:id", h.Site.DeleteMember)

		admin.GET("/users", h.User.ListUsers)
		adminOnly := admin.Group("/users", middleware.RequireAdmin())
		adminOnly.PUT("/:id/role", h.User.ChangeRole)
		adminOnly.DELETE("/:id", h.User.DeleteUser)
	}

	return r
}
