package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finnkap/org-management-api/internal/constants"
	"github.com/finnkap/org-management-api/internal/database"
	"github.com/finnkap/org-management-api/internal/middleware"
	"github.com/finnkap/org-management-api/internal/models"
	"github.com/finnkap/org-management-api/internal/repository"
	"github.com/finnkap/org-management-api/internal/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.Membership{},
		&models.Invitation{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	authService := services.NewAuthService(userRepo, orgRepo)
	authHandler := NewAuthHandler(authService)
	profileHandler := NewProfileHandler(authService)

	router := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions(constants.SessionCookieName, store))

	auth := router.Group("/api/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
	}
	user := router.Group("/api/user", middleware.RequireAuth())
	{
		user.GET("/profile", profileHandler.GetProfile)
		user.PATCH("/profile", profileHandler.UpdateProfile)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{db: db, router: router}
}

func (env authTestEnv) request(t *testing.T, method, path string, payload any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env authTestEnv) signupAndLogin(t *testing.T, email, name, password string) []*http.Cookie {
	t.Helper()

	w := env.request(t, http.MethodPost, "/api/auth/signup", gin.H{
		"email": email, "name": name, "password": password,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": email, "password": password,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestAuthHandler_Signup(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/signup", gin.H{
		"email": "alice@example.com", "name": "Alice", "password": "password123",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code)

	var user models.User
	require.NoError(t, env.db.Where("email = ?", "alice@example.com").First(&user).Error)
	require.Equal(t, "Alice", user.Name)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))

	// The hash never leaves the server.
	require.NotContains(t, w.Body.String(), user.PasswordHash)
}

func TestAuthHandler_Signup_EstablishesSession(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/signup", gin.H{
		"email": "alice@example.com", "name": "Alice", "password": "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// Signup logs the user in without a separate login call.
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = env.request(t, http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_Signup_DuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	payload := gin.H{"email": "alice@example.com", "name": "Alice", "password": "password123"}
	w := env.request(t, http.MethodPost, "/api/auth/signup", payload, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/signup", payload, nil)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Signup_ShortPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/signup", gin.H{
		"email": "alice@example.com", "name": "Alice", "password": "short",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_LoginAndMe(t *testing.T) {
	env := setupAuthTestEnv(t)

	cookies := env.signupAndLogin(t, "alice@example.com", "Alice", "password123")

	w := env.request(t, http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "alice@example.com", response.Email)
	require.Equal(t, "Alice", response.Name)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/signup", gin.H{
		"email": "alice@example.com", "name": "Alice", "password": "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": "alice@example.com", "password": "wrongpassword",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Login_ExternalIdentity(t *testing.T) {
	env := setupAuthTestEnv(t)

	// Accounts without password credentials cannot log in with a password.
	require.NoError(t, env.db.Create(&models.User{
		Email: "sso@example.com",
		Name:  "SSO User",
	}).Error)

	w := env.request(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": "sso@example.com", "password": "password123",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	env := setupAuthTestEnv(t)

	cookies := env.signupAndLogin(t, "alice@example.com", "Alice", "password123")

	w := env.request(t, http.MethodPost, "/api/auth/logout", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	cleared := w.Result().Cookies()
	w = env.request(t, http.MethodGet, "/api/auth/me", nil, cleared)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileHandler_UpdateName(t *testing.T) {
	env := setupAuthTestEnv(t)

	cookies := env.signupAndLogin(t, "alice@example.com", "Alice", "password123")

	w := env.request(t, http.MethodPatch, "/api/user/profile", gin.H{"name": "Alicia"}, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, env.db.Where("email = ?", "alice@example.com").First(&user).Error)
	require.Equal(t, "Alicia", user.Name)
}

func TestProfileHandler_UpdatePassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	cookies := env.signupAndLogin(t, "alice@example.com", "Alice", "password123")

	w := env.request(t, http.MethodPatch, "/api/user/profile", gin.H{"password": "newpassword1"}, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": "alice@example.com", "password": "newpassword1",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": "alice@example.com", "password": "password123",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileHandler_UpdateNothing(t *testing.T) {
	env := setupAuthTestEnv(t)

	cookies := env.signupAndLogin(t, "alice@example.com", "Alice", "password123")

	w := env.request(t, http.MethodPatch, "/api/user/profile", gin.H{}, cookies)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
