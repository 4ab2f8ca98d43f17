package http

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/auth"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/config"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/http/handlers"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/http/middlewares"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/observability"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/redisclient"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/repo/postgres"
	"github.com/StudentTahseenraza/CRUD-API-implementation/web"
)

func NewRouter(cfg config.Config, pool *pgxpool.Pool, rdb *redisclient.Client, prom *observability.Prom) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(otelgin.Middleware("taskmaster-api"))
	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))

	// rate limiting: redis-backed windows when redis is configured so the
	// counters survive restarts and hold across replicas, in-memory otherwise
	var store middlewares.WindowStore
	if rdb != nil {
		store = middlewares.NewRedisWindowStore(rdb.Raw(), "ratelimit")
	} else {
		store = middlewares.NewMemoryWindowStore()
	}

	window := cfg.RateLimitWindow()
	apiLimiter := middlewares.NewRateLimiter(store, cfg.RateLimitMax, window)
	authLimiter := middlewares.NewRateLimiter(store, cfg.AuthRateLimitMax, window)
	adminLimiter := middlewares.NewRateLimiter(store, cfg.AdminRateLimitMax, window)

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(cfg.Env, ping)
	r.GET("/health", h.Health)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool)
	tasksRepo := postgres.NewTasksRepo(pool)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())
	authMw := middlewares.NewAuthMiddleware(jwtManager)

	authHandler := handlers.NewAuthHandler(usersRepo, jwtManager)
	tasksHandler := handlers.NewTasksHandler(tasksRepo)
	adminHandler := handlers.NewAdminHandler(usersRepo, tasksRepo)

	api := r.Group("/api/v1")
	api.Use(middlewares.MaxBodyBytes(10 << 10))
	api.Use(middlewares.RequireJSON())
	// this runs before authentication, so identity is never on the
	// context here; key by IP. The admin group keys per user below.
	api.Use(apiLimiter.RateLimiterMiddleware(middlewares.KeyByIP))

	// auth routes; the public pair gets the tighter per-IP limiter
	authGroup := api.Group("/auth")
	authGroup.POST("/register", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Register)
	authGroup.POST("/login", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)

	authed := authGroup.Group("")
	authed.Use(authMw.RequireAuth())
	authed.GET("/me", authHandler.Me)
	authed.PUT("/update-profile", authHandler.UpdateProfile)
	authed.PUT("/change-password", authHandler.ChangePassword)
	authed.POST("/logout", authHandler.Logout)

	// task routes
	tasks := api.Group("/tasks")
	tasks.Use(authMw.RequireAuth())
	tasks.POST("", tasksHandler.Create)
	tasks.GET("", tasksHandler.List)
	tasks.GET("/stats", tasksHandler.Stats)
	tasks.GET("/:id", tasksHandler.Get)
	tasks.PUT("/:id", tasksHandler.Update)
	tasks.DELETE("/:id", tasksHandler.Delete)

	// admin routes
	admin := api.Group("/admin")
	admin.Use(authMw.RequireAuth(), authMw.RequireRole("admin"))
	admin.Use(adminLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/users/:id", adminHandler.GetUser)
	admin.PUT("/users/:id", adminHandler.UpdateUser)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.GET("/tasks", adminHandler.ListTasks)
	admin.GET("/stats", adminHandler.Stats)

	// embedded frontend; unknown non-API paths fall back to the SPA shell
	staticFS := web.FS()
	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path

		if strings.HasPrefix(path, "/api/") {
			handlers.RespondNotFound(ctx, "Route not found")
			return
		}

		if f, err := staticFS.Open(path); err == nil {
			f.Close()
			ctx.FileFromFS(path, staticFS)
			return
		}

		ctx.FileFromFS("/", staticFS)
	})

	return r
}
