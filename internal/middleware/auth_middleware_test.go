package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"filesafe/internal/database"
	"filesafe/internal/logger"
	"filesafe/internal/repository"
	"filesafe/internal/security"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	_ = logger.Init(&logger.Config{Level: "error", Output: "console"})
	os.Exit(m.Run())
}

// setupAuthRouter 构造受认证保护的测试路由
func setupAuthRouter(t *testing.T) (*gin.Engine, *security.TokenService, repository.UserRepository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&database.User{}, &database.File{}))

	tokens, err := security.NewTokenService("test-secret", "HS256")
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	auth := NewAuthMiddleware(tokens, users)

	router := gin.New()
	router.GET("/protected", auth.RequireAuth(), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})

	return router, tokens, users
}

// doRequest 发送带指定Authorization头的请求
func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

// TestRequireAuth 测试认证中间件
func TestRequireAuth(t *testing.T) {
	router, tokens, users := setupAuthRouter(t)

	_, err := users.Create("alice", "hash")
	require.NoError(t, err)

	validToken, err := tokens.Issue("alice", time.Minute)
	require.NoError(t, err)

	t.Run("有效令牌放行并注入当前用户", func(t *testing.T) {
		recorder := doRequest(router, "Bearer "+validToken)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "alice")
	})

	t.Run("各种认证失败统一返回401", func(t *testing.T) {
		expiredToken, err := tokens.Issue("alice", -time.Minute)
		require.NoError(t, err)

		otherTokens, err := security.NewTokenService("other-secret", "HS256")
		require.NoError(t, err)
		foreignToken, err := otherTokens.Issue("alice", time.Minute)
		require.NoError(t, err)

		ghostToken, err := tokens.Issue("ghost", time.Minute)
		require.NoError(t, err)

		cases := map[string]string{
			"缺少Authorization头": "",
			"不是Bearer格式":      "Basic dXNlcjpwdw==",
			"Bearer后为空":       "Bearer ",
			"令牌格式错误":          "Bearer not.a.token",
			"令牌已过期":           "Bearer " + expiredToken,
			"签名密钥不符":          "Bearer " + foreignToken,
			"令牌主体对应的用户不存在":    "Bearer " + ghostToken,
		}

		var messages []string
		for name, header := range cases {
			t.Run(name, func(t *testing.T) {
				recorder := doRequest(router, header)
				assert.Equal(t, http.StatusUnauthorized, recorder.Code)

				var body struct {
					Code    int    `json:"code"`
					Message string `json:"message"`
				}
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
				assert.Equal(t, http.StatusUnauthorized, body.Code)
				messages = append(messages, body.Message)
			})
		}

		// 失败响应不区分具体原因
		for i := 1; i < len(messages); i++ {
			assert.Equal(t, messages[0], messages[i])
		}
	})
}
