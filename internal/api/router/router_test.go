package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"avdb-go/internal/api/handler"
	"avdb-go/internal/config"
	"avdb-go/pkg/logger"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitDiscard()
	os.Exit(m.Run())
}

func setupTestRouter() *gin.Engine {
	r := gin.New()
	Setup(r,
		handler.NewAuthHandler(nil),
		handler.NewProductHandler(nil),
		handler.NewPerformerHandler(nil),
		handler.NewSaleHandler(nil),
		handler.NewFavoriteListHandler(nil),
		handler.NewSearchHandler(nil),
		handler.NewCronHandler(nil, nil, nil),
	)
	return r
}

// 外部调度器只会发 GET，定时任务端点必须注册在 GET 上。
// 未带密钥时认证中间件返回 401，说明路由存在；404 则说明没注册上。
func TestCronRoutesRegisteredAsGet(t *testing.T) {
	config.Set(&config.Config{})
	r := setupTestRouter()

	paths := []string{
		"/api/cron/fetch-products",
		"/api/cron/process-raw-data",
		"/api/cron/enhance-content",
		"/api/cron/seo-enhance",
		"/api/cron/sync-search-index",
		"/api/cron/check-sales",
	}
	for _, path := range paths {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s = %d, want 401", path, w.Code)
		}
	}
}
