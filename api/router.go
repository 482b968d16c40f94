// Package api contains all endpoints available
package api

import (
	"fmt"
	"sync"
	"time"

	"agencydesk/creator-api/db"
	"agencydesk/creator-api/internal/service"
	"agencydesk/creator-api/middleware"
	"agencydesk/creator-api/pkg/security"
	"agencydesk/creator-api/storage"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

type API struct {
	DB         *gorm.DB
	Router     *gin.Engine
	Argon      *security.ArgonHash
	S3         *storage.S3Client
	Queue      *service.JobQueue
	Uploader   *service.Uploader
	Reconciler *service.Reconciler

	// In-flight upload batches, keyed by batch id, for the progress and
	// cancel endpoints
	batchMu sync.Mutex
	batches map[string]*service.Batch
}

func NewRouter() (*API, error) {
	a := &API{
		Queue:   service.NewJobQueue(),
		batches: map[string]*service.Batch{},
	}

	conn, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = conn

	makeLogger()

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("user_id", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	a.Router.MaxMultipartMemory = 5 << 20

	jwt := middleware.NewJWTMiddleware(conn)
	admin := middleware.RequireAdmin()
	maxUploadSize := viper.GetInt64("upload.max_size")

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates a JWT token
		main.HEAD("/validate", jwt, a.Validate)

		// GET /api/me			-> Returns the caller's profile and permissions
		main.GET("/me", jwt, a.Me)
	}

	auth := main.Group("/auth", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/auth/login 	-> Logs in a user and sets a JWT cookie
		auth.POST("/login", middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
			RequestsPerSecond: 2,
			Burst:             5,
		}), a.AuthLogin)
	}

	media := main.Group("/media", jwt)
	{
		// GET /api/media 		-> Lists media files with filters
		media.GET("", cacheFor(30), a.MediaList)

		// POST /api/media		-> Starts an upload batch
		media.POST("", middleware.BodySizeLimiter(maxUploadSize), a.MediaUpload)

		// GET /api/media/pending	-> Lists uploads that never finished
		media.GET("/pending", a.MediaPending)

		// GET /api/media/progress/:batchID		-> Batch progress
		media.GET("/progress/:batchID", a.MediaProgress)

		// DELETE /api/media/progress/:batchID/:fileID	-> Cancels one file
		media.DELETE("/progress/:batchID/:fileID", a.MediaCancel)

		// GET /api/media/:id/download	-> Returns a signed download URL
		media.GET("/:id/download", a.MediaDownload)

		// PATCH /api/media/:id 	-> Edits filename/description
		media.PATCH("/:id", a.MediaEdit)

		// DELETE /api/media/:id	-> Deletes a file and its objects
		media.DELETE("/:id", a.MediaDelete)
	}

	folders := main.Group("/folders", jwt)
	{
		folders.GET("", cacheFor(30), a.FolderList)
		folders.POST("", a.FolderCreate)
		folders.PATCH("/:id", a.FolderRename)
		folders.POST("/:id/files", a.FolderAddFiles)
		folders.DELETE("/:id/files", a.FolderRemoveFiles)
		folders.DELETE("/:id", a.FolderDelete)
	}

	categories := main.Group("/categories", jwt)
	{
		categories.GET("", cacheFor(30), a.CategoryList)
		categories.POST("", a.CategoryCreate)
		categories.PATCH("/:id", a.CategoryRename)
		categories.DELETE("/:id", a.CategoryDelete)
	}

	team := main.Group("/team", jwt, admin)
	{
		// POST /api/team		-> Provisions a staff account
		team.GET("", a.TeamList)
		team.POST("", a.TeamCreate)

		// PUT /api/team/:id/roles	-> Replaces a member's roles
		team.PUT("/:id/roles", a.TeamUpdateRoles)
	}

	creators := main.Group("/creators", jwt)
	{
		creators.GET("", cacheFor(30), a.CreatorList)
		creators.POST("", a.CreatorCreate)
		creators.PATCH("/:id", a.CreatorEdit)
		creators.GET("/:id/logins", admin, a.SocialLoginList)
		creators.POST("/:id/logins", admin, a.SocialLoginCreate)
	}

	customs := main.Group("/customs", jwt)
	{
		customs.GET("", a.CustomList)
		customs.POST("", a.CustomCreate)
		customs.PATCH("/:id", a.CustomEdit)
	}

	onboarding := main.Group("/onboarding", jwt)
	{
		onboarding.GET("", a.OnboardingList)
		onboarding.POST("", a.OnboardingCreate)
		onboarding.POST("/:id/approve", admin, a.OnboardingApprove)
	}

	a.Argon = security.New()

	s3, err := storage.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
	}
	a.S3 = s3

	a.Reconciler = service.NewReconciler(conn)
	a.Uploader = service.NewUploader(conn, s3, a.Queue, a.Reconciler)
	a.Queue.StartWorkerPool()

	return a, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}

func (a *API) trackBatch(id string, b *service.Batch) {
	a.batchMu.Lock()
	a.batches[id] = b
	a.batchMu.Unlock()

	// Keep finished batches around briefly so a final progress poll still
	// sees the terminal states
	go func() {
		b.Wait()
		time.AfterFunc(10*time.Minute, func() {
			a.batchMu.Lock()
			delete(a.batches, id)
			a.batchMu.Unlock()
		})
	}()
}

func (a *API) batch(id string) *service.Batch {
	a.batchMu.Lock()
	defer a.batchMu.Unlock()

	return a.batches[id]
}
