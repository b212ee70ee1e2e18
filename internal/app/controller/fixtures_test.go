package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/wanderwise/wanderwise-backend/internal/app/model"
	"github.com/wanderwise/wanderwise-backend/internal/app/repository"
	"github.com/wanderwise/wanderwise-backend/internal/app/service"
	"github.com/wanderwise/wanderwise-backend/internal/db"
	"github.com/wanderwise/wanderwise-backend/internal/middleware"
	"github.com/wanderwise/wanderwise-backend/pkg/util"
	"gorm.io/gorm"
)

const testSecret = "controller-test-secret"

type testServer struct {
	router  *gin.Engine
	db      *gorm.DB
	users   repository.UserRepository
	reviews repository.ReviewRepository
	audit   repository.AuditLogRepository
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	users := repository.NewUserRepository(testDB)
	reviews := repository.NewReviewRepository(testDB)
	votes := repository.NewVoteRepository(testDB)
	replies := repository.NewReplyRepository(testDB)
	audit := repository.NewAuditLogRepository(testDB)

	authService := service.NewAuthService(users, testSecret, 15*time.Minute, 24*time.Hour)
	reviewService := service.NewReviewService(reviews, votes, replies, service.NewVoteAggregator(votes))
	moderationService := service.NewModerationService(testDB, reviews, users, audit, nil)
	auditService := service.NewAuditService(audit)

	authCtrl := NewAuthController(authService)
	reviewCtrl := NewReviewController(reviewService)
	adminReviewCtrl := NewAdminReviewController(moderationService)
	adminAuditCtrl := NewAdminAuditController(auditService)
	auth := middleware.NewAuthMiddleware(testSecret)

	router := gin.New()
	api := router.Group("/api")

	api.POST("/auth/register", authCtrl.Register)
	api.POST("/auth/login", authCtrl.Login)
	api.POST("/auth/refresh", authCtrl.Refresh)
	api.POST("/auth/logout", auth.Authenticate(), authCtrl.Logout)
	api.GET("/auth/me", auth.Authenticate(), authCtrl.GetMe)

	api.GET("/reviews", auth.OptionalAuthenticate(), reviewCtrl.List)
	api.POST("/reviews", auth.Authenticate(), reviewCtrl.Create)
	api.GET("/reviews/mine", auth.Authenticate(), reviewCtrl.Mine)
	api.PUT("/reviews/:id", auth.Authenticate(), reviewCtrl.Update)
	api.POST("/reviews/:id/vote", auth.Authenticate(), reviewCtrl.Vote)
	api.GET("/reviews/:id/votes", auth.OptionalAuthenticate(), reviewCtrl.Votes)
	api.GET("/reviews/:id/replies", reviewCtrl.Replies)
	api.POST("/reviews/:id/replies", auth.Authenticate(), reviewCtrl.AddReply)
	api.GET("/activities/:id/reviews", auth.OptionalAuthenticate(), reviewCtrl.ListFor(model.ReviewableActivity))
	api.POST("/activities/:id/reviews", auth.Authenticate(), reviewCtrl.CreateFor(model.ReviewableActivity))

	admin := api.Group("/admin", auth.Authenticate(), auth.RequireRole(model.RoleAdmin), auth.RequireActiveAdmin(authService))
	admin.GET("/reviews", adminReviewCtrl.List)
	admin.POST("/reviews/bulk", adminReviewCtrl.Bulk)
	admin.POST("/reviews/:reviewId/publish", adminReviewCtrl.Publish)
	admin.POST("/reviews/:reviewId/reject", adminReviewCtrl.Reject)
	admin.GET("/audit-logs", adminAuditCtrl.List)
	admin.GET("/audit-logs/export", adminAuditCtrl.Export)
	admin.GET("/audit-logs/:id", adminAuditCtrl.Get)

	return &testServer{router: router, db: testDB, users: users, reviews: reviews, audit: audit}
}

// account creates a user and returns it with an access token.
func (s *testServer) account(t *testing.T, name string, role model.UserRole) (*model.User, string) {
	t.Helper()
	u := &model.User{
		Email:        name + "@wanderwise.test",
		PasswordHash: "unused",
		FullName:     name,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, s.users.Create(context.Background(), u))
	tokens, err := util.GenerateTokenPair(u.ID, u.Email, string(u.Role), testSecret, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return u, tokens.AccessToken
}

func (s *testServer) review(t *testing.T, author *model.User, status model.ReviewStatus) *model.Review {
	t.Helper()
	title := "Sunset kayak tour"
	r := &model.Review{
		ReviewableType: model.ReviewableActivity,
		ReviewableID:   10,
		UserID:         &author.ID,
		Rating:         5,
		Title:          &title,
		Status:         status,
	}
	require.NoError(t, s.reviews.Create(context.Background(), r))
	return r
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func path(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
