package httpserver

import (
	"context"
	"net/http"
	"time"

	"digihub/internal/handler"
	"digihub/internal/model"
	"digihub/pkg/rbac"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Auth         *handler.AuthHandler
	Activity     *handler.ActivityHandler
	Entity       *handler.EntityHandler
	Group        *handler.GroupHandler
	Hierarchy    *handler.HierarchyHandler
	Notification *handler.NotificationHandler
	Admin        *handler.AdminHandler
}

type Options struct {
	JWTSecret string
	DevMode   bool
	DB        Pinger
	Logger    *zap.Logger
}

type Router struct {
	Engine *gin.Engine
}

func NewRouter(h Handlers, opts Options) *Router {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(
		TraceMiddleware(),
		RecoveryMiddleware(opts.Logger, opts.DevMode),
		RequestLogMiddleware(opts.Logger),
		MetricsMiddleware(),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", func(c *gin.Context) {
		if opts.DB == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := opts.DB.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	if h.Auth != nil {
		r.POST("/register", h.Auth.Register)
		r.POST("/login", h.Auth.Login)
	}

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(opts.JWTSecret))

	if h.Hierarchy != nil {
		auth.GET("/hierarchy", h.Hierarchy.Get)
	}

	if h.Group != nil {
		groups := auth.Group("/groups", RequirePermission(rbac.PermissionGroupManage))
		groups.POST("", h.Group.Create)
		groups.PUT("/:id", h.Group.Update)
		groups.PATCH("/:id", h.Group.Update)
		groups.DELETE("/:id", h.Group.Delete)
	}

	if h.Entity != nil {
		write := RequirePermission(rbac.PermissionEntityWrite)
		for _, kind := range model.EntityKinds {
			base := "/" + string(kind) + "s"
			auth.POST(base, write, h.Entity.Create(kind))
			auth.GET(base+"/:id", h.Entity.Get(kind))
			auth.PUT(base+"/:id", write, h.Entity.Update(kind))
			auth.PATCH(base+"/:id", write, h.Entity.Update(kind))
			auth.DELETE(base+"/:id", RequirePermission(rbac.PermissionEntityDelete), h.Entity.Delete(kind))
		}
		auth.PATCH("/modules/:id/move", write, h.Entity.MoveModule)
	}

	if h.Activity != nil {
		auth.GET("/activities/:entityType/:entityId", h.Activity.GetFeed)
		auth.GET("/activities/comments/:commentId/replies", h.Activity.GetReplies)
		auth.POST("/activities/comments", RequirePermission(rbac.PermissionCommentCreate), h.Activity.CreateComment)
		auth.PUT("/activities/comments/:commentId", h.Activity.UpdateComment)
		auth.DELETE("/activities/comments/:commentId", h.Activity.DeleteComment)
	}

	if h.Notification != nil {
		auth.GET("/notifications", h.Notification.List)
		auth.POST("/notifications/:id/read", h.Notification.MarkRead)
	}

	if h.Admin != nil {
		admin := auth.Group("/admin", RequirePermission(rbac.PermissionOutboxReplay))
		admin.POST("/outbox/replay", h.Admin.ReplayOutboxEvent)
		admin.POST("/outbox/replay-failed", h.Admin.ReplayFailedEvents)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(addr string) error {
	return r.Engine.Run(addr)
}
