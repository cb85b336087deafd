package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Hexoro/Hexward-sub000/models"
)

func TestLoginAndMe(t *testing.T) {
	db := setupTestDB(t)
	ConfigureAuth("test-secret", 30)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		Email:        "nurse@test.local",
		FullName:     "Nurse Test",
		PasswordHash: string(hash),
		Role:         models.RoleNurse,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/auth/login", Login)
	router.GET("/api/auth/me", AuthMiddleware(), Me)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "nurse@test.local",
		"password": "password123",
	})
	requireStatus(t, rec, http.StatusOK)

	var auth AuthResponse
	decodeBody(t, rec, &auth)
	require.NotEmpty(t, auth.Token)
	assert.Equal(t, models.RoleNurse, auth.User.Role)

	// Token grants access to /me
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	meRec := httptest.NewRecorder()
	router.ServeHTTP(meRec, req)
	requireStatus(t, meRec, http.StatusOK)

	var me models.User
	decodeBody(t, meRec, &me)
	assert.Equal(t, user.ID, me.ID)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	db := setupTestDB(t)
	ConfigureAuth("test-secret", 30)

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	user := models.User{
		Email:        "x@test.local",
		PasswordHash: string(hash),
		Role:         models.RoleNurse,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/auth/login", Login)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "x@test.local",
		"password": "wrong",
	})
	requireStatus(t, rec, http.StatusUnauthorized)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	db := setupTestDB(t)
	ConfigureAuth("test-secret", 30)

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := models.User{
		Email:        "gone@test.local",
		PasswordHash: string(hash),
		Role:         models.RoleNurse,
		IsActive:     false,
	}
	require.NoError(t, db.Create(&user).Error)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/auth/login", Login)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "gone@test.local",
		"password": "password123",
	})
	requireStatus(t, rec, http.StatusUnauthorized)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	ConfigureAuth("test-secret", 30)
	admin := createTestUser(t, db, models.RoleAdmin)

	router := newTestRouter(admin)
	router.POST("/api/auth/register", Register)

	payload := map[string]string{
		"email":    "new@test.local",
		"password": "secret123",
		"fullName": "New Staff",
		"role":     "nurse",
	}
	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", payload)
	requireStatus(t, rec, http.StatusCreated)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/register", payload)
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestRegisterUnknownRole(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, models.RoleAdmin)

	router := newTestRouter(admin)
	router.POST("/api/auth/register", Register)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "bad@test.local",
		"password": "secret123",
		"fullName": "Bad Role",
		"role":     "superuser",
	})
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestLogoutWritesAuditLog(t *testing.T) {
	db := setupTestDB(t)
	nurse := createTestUser(t, db, models.RoleNurse)

	router := newTestRouter(nurse)
	router.POST("/api/auth/logout", Logout)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/logout", nil)
	requireStatus(t, rec, http.StatusOK)

	var entry models.SystemLog
	require.NoError(t, db.Where("service = ?", "auth").First(&entry).Error)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, nurse.ID, *entry.UserID)
}
