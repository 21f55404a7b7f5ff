package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"shortly-go/internal/handler"
	"shortly-go/internal/i18n"
	"shortly-go/internal/model"
	"shortly-go/internal/repository"
	"shortly-go/internal/service"
	"shortly-go/pkg/logging"
	"shortly-go/pkg/utils"
)

// setupRouter 和 main 一致的路由 + 中间件链，数据层换成内存 SQLite
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	logging.InitTestLogger()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, repository.Migrate(db))

	repository.DB = db
	repository.RedisPool = nil

	service.InitClickRecorder(db)
	t.Cleanup(func() {
		service.Clicks.Close()
	})

	bundle, err := i18n.InitI18n([]string{
		"../../i18n/en.toml",
		"../../i18n/zh.toml",
	}, "en")
	require.NoError(t, err)

	return handler.NewRouter(bundle)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func shorten(t *testing.T, r *gin.Engine, body string) string {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/shorten", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ShortCode string `json:"shortCode"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ShortCode)
	return resp.ShortCode
}

func TestShorten_GeneratedCode(t *testing.T) {
	r := setupRouter(t)

	code := shorten(t, r, `{"originalUrl": "https://example.com/a/b/c"}`)
	assert.Len(t, code, utils.ShortCodeLength)
}

func TestShorten_CustomCode(t *testing.T) {
	r := setupRouter(t)

	code := shorten(t, r, `{"originalUrl": "https://example.com", "customCode": "promo-2025"}`)
	assert.Equal(t, "promo-2025", code)

	// 重复占用 → 409 + {"error": ...}
	rec := doJSON(t, r, http.MethodPost, "/shorten", `{"originalUrl": "https://other.com", "customCode": "promo-2025"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var errResp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Contains(t, errResp, "error")
	assert.Equal(t, "custom code already exists", errResp["error"])
}

func TestShorten_InvalidURL(t *testing.T) {
	r := setupRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/shorten", `{"originalUrl": "not-a-url"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Contains(t, errResp, "error")
}

func TestShorten_InvalidAlias(t *testing.T) {
	r := setupRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/shorten", `{"originalUrl": "https://x.com", "customCode": "a b"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Contains(t, errResp, "error")
}

func TestShorten_MalformedBody(t *testing.T) {
	r := setupRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/shorten", `{"originalUrl": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShorten_LocalizedError(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/shorten", bytes.NewBufferString(`{"originalUrl": "not-a-url"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "zh")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "originalUrl 必须是 http 或 https 绝对地址", errResp["error"])
}

func TestRedirect(t *testing.T) {
	r := setupRouter(t)

	code := shorten(t, r, `{"originalUrl": "https://example.com/a/b/c"}`)

	req := httptest.NewRequest(http.MethodGet, "/"+code, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com/a/b/c", rec.Header().Get("Location"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
}

func TestRedirect_UnknownCode(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFavicon(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/favicon.ico", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	// favicon 不能被当成短码，也不产生点击事件
	assert.Equal(t, http.StatusNoContent, rec.Code)

	service.Clicks.Flush()
	var count int64
	require.NoError(t, repository.DB.Model(&model.ClickEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAnalytics_EndToEnd(t *testing.T) {
	r := setupRouter(t)

	code := shorten(t, r, `{"originalUrl": "https://example.com/a/b/c"}`)

	// 基准时间只取一次，所有日期断言都从它推导，
	// 测试跨过 UTC 零点也不会和事件表里的日期错位
	now := time.Now().UTC()
	yesterday := now.AddDate(0, 0, -1)

	// 昨天 3 次（直接写事件表制造历史），再来 2 次真实访问
	events := []model.ClickEvent{
		{ShortCode: code, OccurredAt: yesterday},
		{ShortCode: code, OccurredAt: yesterday},
		{ShortCode: code, OccurredAt: yesterday},
	}
	require.NoError(t, repository.DB.Create(&events).Error)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/"+code, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusFound, rec.Code)
	}
	service.Clicks.Flush()

	rec := doJSON(t, r, http.MethodGet, "/analytics/"+code, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		TotalClicks int64 `json:"totalClicks"`
		ClicksByDay []struct {
			Date   string `json:"date"`
			Clicks int64  `json:"clicks"`
		} `json:"clicksByDay"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.EqualValues(t, 5, resp.TotalClicks)

	// 真实访问的时间戳在服务端取，不能假定它和基准时间同一天；
	// 只断言昨天的桶和窗口合计，升序保证昨天排第一
	require.NotEmpty(t, resp.ClicksByDay)
	assert.Equal(t, yesterday.Format("2006-01-02"), resp.ClicksByDay[0].Date)
	assert.EqualValues(t, 3, resp.ClicksByDay[0].Clicks)

	var windowSum int64
	for _, day := range resp.ClicksByDay {
		windowSum += day.Clicks
	}
	assert.EqualValues(t, 5, windowSum)
}

func TestAnalytics_NeverVisited(t *testing.T) {
	r := setupRouter(t)

	code := shorten(t, r, `{"originalUrl": "https://example.com"}`)

	rec := doJSON(t, r, http.MethodGet, "/analytics/"+code, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalClicks": 0, "clicksByDay": []}`, rec.Body.String())
}

func TestAnalytics_UnknownCode(t *testing.T) {
	r := setupRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/analytics/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var errResp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "short code not found", errResp["error"])
}

func TestListLinks(t *testing.T) {
	r := setupRouter(t)

	shorten(t, r, `{"originalUrl": "https://example.com/1"}`)
	shorten(t, r, `{"originalUrl": "https://example.com/2"}`)

	rec := doJSON(t, r, http.MethodGet, "/api/links?page=1&size=10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)
}
