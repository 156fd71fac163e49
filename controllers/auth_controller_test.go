package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yunseo-dev/glowbook/config"
	"github.com/yunseo-dev/glowbook/models"
	"github.com/yunseo-dev/glowbook/utils"
)

var authTestSeq uint64

// setupAuthTest points the global DB at a fresh sqlite database and
// registers the auth routes on a bare engine.
func setupAuthTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := fmt.Sprintf("file:glowbook_auth_test_%d?mode=memory&cache=shared", atomic.AddUint64(&authTestSeq, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.MigrateModels(db))
	require.NoError(t, config.EnsureLedgerIndexes(db))

	prevDB, prevCfg := config.DB, config.AppConfig
	config.DB = db
	config.AppConfig = &config.Config{
		JWTSecret:          "test-secret",
		LockoutMaxAttempts: 5,
		LockoutWindow:      15 * time.Minute,
	}
	t.Cleanup(func() {
		config.DB, config.AppConfig = prevDB, prevCfg
		sqlDB.Close()
	})

	r := gin.New()
	r.POST("/register", Register)
	r.POST("/login", Login)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, r *gin.Engine, email, password string) {
	t.Helper()
	w := postJSON(t, r, "/register", gin.H{
		"email":    email,
		"password": password,
		"name":     "Minji",
		"role":     models.RoleCustomer,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func responseCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp utils.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Code
}

func TestLoginSuccess(t *testing.T) {
	r := setupAuthTest(t)
	registerUser(t, r, "minji@example.com", "correct-horse-1")

	w := postJSON(t, r, "/login", gin.H{"email": "minji@example.com", "password": "correct-horse-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.Token)
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	r := setupAuthTest(t)
	registerUser(t, r, "minji@example.com", "correct-horse-1")

	wrong := postJSON(t, r, "/login", gin.H{"email": "minji@example.com", "password": "nope-nope-nope"})
	unknown := postJSON(t, r, "/login", gin.H{"email": "ghost@example.com", "password": "nope-nope-nope"})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, responseCode(t, unknown), responseCode(t, wrong))
}

func TestLoginLockoutFlow(t *testing.T) {
	r := setupAuthTest(t)
	registerUser(t, r, "minji@example.com", "correct-horse-1")

	// Four wrong attempts stay plain 401s.
	for i := 0; i < 4; i++ {
		w := postJSON(t, r, "/login", gin.H{"email": "minji@example.com", "password": "wrong-password"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, utils.CodeUnauthorized, responseCode(t, w))
	}

	// The fifth locks the account.
	w := postJSON(t, r, "/login", gin.H{"email": "minji@example.com", "password": "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, utils.CodeAccountLocked, responseCode(t, w))

	// The correct password is rejected while locked and the counter stays
	// untouched.
	w = postJSON(t, r, "/login", gin.H{"email": "minji@example.com", "password": "correct-horse-1"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, utils.CodeAccountLocked, responseCode(t, w))

	var auth models.AuthLocal
	require.NoError(t, config.DB.First(&auth).Error)
	assert.Equal(t, 0, auth.FailedAttempts)
	require.NotNil(t, auth.LockedUntil)

	// Once the window passes, the correct password works again.
	past := time.Now().Add(-time.Minute)
	require.NoError(t, config.DB.Model(&models.AuthLocal{}).
		Where("user_id = ?", auth.UserID).
		Update("locked_until", past).Error)

	w = postJSON(t, r, "/login", gin.H{"email": "minji@example.com", "password": "correct-horse-1"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := setupAuthTest(t)
	registerUser(t, r, "minji@example.com", "correct-horse-1")

	w := postJSON(t, r, "/register", gin.H{
		"email":    "minji@example.com",
		"password": "another-pass-1",
		"name":     "Other",
		"role":     models.RoleCustomer,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}
