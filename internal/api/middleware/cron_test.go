package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"avdb-go/internal/config"
	"avdb-go/pkg/logger"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.InitDiscard()
	os.Exit(m.Run())
}

func cronTestRouter() *gin.Engine {
	r := gin.New()
	r.GET("/cron/job", CronAuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func doCronRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/cron/job", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCronAuthRejectsWhenSecretUnset(t *testing.T) {
	config.Set(&config.Config{})
	r := cronTestRouter()

	// 密钥未配置时带什么令牌都不行
	if w := doCronRequest(r, "Bearer anything"); w.Code != http.StatusUnauthorized {
		t.Errorf("want 401, got %d", w.Code)
	}
}

func TestCronAuthRejectsMissingToken(t *testing.T) {
	config.Set(&config.Config{Cron: config.CronConfig{Secret: "s3cret"}})
	r := cronTestRouter()

	if w := doCronRequest(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("want 401, got %d", w.Code)
	}
}

func TestCronAuthRejectsWrongToken(t *testing.T) {
	config.Set(&config.Config{Cron: config.CronConfig{Secret: "s3cret"}})
	r := cronTestRouter()

	if w := doCronRequest(r, "Bearer wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("want 401, got %d", w.Code)
	}
}

func TestCronAuthAcceptsValidToken(t *testing.T) {
	config.Set(&config.Config{Cron: config.CronConfig{Secret: "s3cret"}})
	r := cronTestRouter()

	if w := doCronRequest(r, "Bearer s3cret"); w.Code != http.StatusOK {
		t.Errorf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
}
