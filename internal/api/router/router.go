package router

import (
	"avdb-go/internal/api/handler"
	"avdb-go/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// Setup 注册所有业务路由
func Setup(
	r *gin.Engine,
	authHandler *handler.AuthHandler,
	productHandler *handler.ProductHandler,
	performerHandler *handler.PerformerHandler,
	saleHandler *handler.SaleHandler,
	favoriteListHandler *handler.FavoriteListHandler,
	searchHandler *handler.SearchHandler,
	cronHandler *handler.CronHandler,
) {
	v1 := r.Group("/api/v1")

	// --- 认证模块 ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		authRequired := auth.Group("", middleware.AuthRequired())
		{
			authRequired.GET("/me", authHandler.Me)
		}
	}

	// --- 商品目录（公开） ---
	products := v1.Group("/products")
	{
		products.GET("", productHandler.List)
		products.GET("/:id", productHandler.Get)
	}
	v1.GET("/tags", productHandler.ListTags)

	// --- 演员（公开） ---
	v1.GET("/actresses", performerHandler.List)
	performers := v1.Group("/performers")
	{
		performers.GET("/:id", performerHandler.Get)
		performers.GET("/:id/relations", performerHandler.Relations)
	}

	// --- 搜索（公开） ---
	v1.GET("/search", searchHandler.Search)
	v1.GET("/search/autocomplete", searchHandler.Autocomplete)

	// --- 特卖 ---
	sales := v1.Group("/sales")
	{
		sales.GET("", saleHandler.List)
		// 推荐信号由查询参数提供，带令牌时可退回收藏推导
		sales.GET("/for-you", middleware.OptionalAuth(), saleHandler.ForYou)
	}

	// --- 公开收藏列表广场 ---
	publicLists := v1.Group("/public-lists")
	{
		publicLists.GET("", favoriteListHandler.ListPublic)
		// 带令牌访问时可以看到自己的私有列表
		publicLists.GET("/:id", middleware.OptionalAuth(), favoriteListHandler.Get)
		publicLists.POST("/:id/like", favoriteListHandler.Like)
	}

	// --- 收藏列表（需要登录） ---
	lists := v1.Group("/lists", middleware.AuthRequired())
	{
		lists.POST("", favoriteListHandler.Create)
		lists.GET("", favoriteListHandler.ListMine)
		lists.GET("/:id", favoriteListHandler.Get)
		lists.PUT("/:id", favoriteListHandler.Update)
		lists.DELETE("/:id", favoriteListHandler.Delete)
		lists.POST("/:id/items", favoriteListHandler.AddItem)
		lists.DELETE("/:id/items/:productId", favoriteListHandler.RemoveItem)
	}

	// --- 定时任务（调度器专用，Bearer 密钥认证） ---
	// 外部调度器只会发 GET
	cron := r.Group("/api/cron", middleware.CronAuthRequired())
	{
		cron.GET("/fetch-products", cronHandler.FetchProducts)
		cron.GET("/process-raw-data", cronHandler.ProcessRawData)
		cron.GET("/enhance-content", cronHandler.EnhanceContent)
		cron.GET("/seo-enhance", cronHandler.SEOEnhance)
		cron.GET("/sync-search-index", cronHandler.SyncSearchIndex)
		cron.GET("/check-sales", cronHandler.CheckSales)
	}
}
