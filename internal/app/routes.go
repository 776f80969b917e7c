package app

import (
	"todoapp/internal/auth"
	"todoapp/internal/cache"
	"todoapp/internal/config"
	"todoapp/internal/handlers"
	"todoapp/internal/repo"
	"todoapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine. The same todo handler
// backs both surfaces: /api/v1 behind the session cookie and /api/token
// behind a bearer token.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	sessionStore := auth.NewStore(rdb, cfg.Auth.SessionTTL.Duration())
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration())

	userRepo := repo.NewPGUserRepo(db)
	userSvc := service.NewUserService(userRepo)
	authHandler := handlers.NewAuthHandler(sessionStore, tokenManager, userSvc, cfg.Auth.SessionTTL.Duration())

	todoRepo := repo.NewPGTodoRepo(db)
	todoCache := cache.NewTodoCache(rdb, cfg.Redis.DefaultTTL.Duration())
	todoSvc := service.NewTodoService(todoRepo, todoCache)
	todoHandler := handlers.NewTodoHandler(todoSvc)

	// Session surface.
	api := r.Group("/api/v1")
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	registerTodoRoutes(api.Group("", auth.RequireSession(sessionStore)), todoHandler)

	// Token surface: same operations, bearer auth.
	tokenAPI := r.Group("/api/token")
	tokenAPI.POST("/auth/signup", authHandler.Signup)
	tokenAPI.POST("/auth/token", authHandler.Token)
	registerTodoRoutes(tokenAPI.Group("", auth.RequireToken(tokenManager)), todoHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Todo API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTodoRoutes(g *gin.RouterGroup, h *handlers.TodoHandler) {
	g.POST("/todos", h.Create)
	g.GET("/todos", h.Current)
	g.GET("/todos/completed", h.Completed)
	g.GET("/todos/:id", h.GetByID)
	g.PATCH("/todos/:id", h.Update)
	g.DELETE("/todos/:id", h.Delete)
	g.POST("/todos/:id/complete", h.Complete)
}
