package httpserver

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"checklist-service/internal/handler"
	"checklist-service/internal/repository"
	"checklist-service/pkg/metrics"
	"checklist-service/pkg/mq"
	"checklist-service/pkg/trace"
)

// Handlers groups the route handlers the router wires up.
type Handlers struct {
	Auth      *handler.AuthHandler
	Catalog   *handler.CatalogHandler
	Project   *handler.ProjectHandler
	Checklist *handler.ChecklistHandler
	Conflict  *handler.ConflictHandler
	Risk      *handler.RiskHandler
	Task      *handler.TaskHandler
	Admin     *handler.AdminHandler
}

func NewRouter(
	h Handlers,
	members *repository.MemberRepository,
	jwtSecret string,
	logger *zap.Logger,
	db *pgxpool.Pool,
	publisher *mq.Publisher,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Request logging plus trace propagation: incoming X-Trace-ID is reused,
	// otherwise a fresh one is generated.
	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		traceID := c.GetHeader(trace.HeaderName())
		if traceID == "" {
			traceID = trace.GenerateTraceID()
		}
		c.Request = c.Request.WithContext(trace.WithContext(c.Request.Context(), traceID))
		c.Header(trace.HeaderName(), traceID)

		c.Next()

		latency := time.Since(start)
		metrics.RecordHTTPRequestDuration(c.Request.Method, c.FullPath(), strconv.Itoa(c.Writer.Status()), latency)
		logger.Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("trace_id", traceID),
		)
	})

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		if publisher != nil && !publisher.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/auth/register", h.Auth.Register)
	r.POST("/auth/login", h.Auth.Login)

	r.GET("/catalog/phases", h.Catalog.ListPhases)
	r.GET("/catalog/site-types", h.Catalog.ListSiteTypes)
	r.GET("/catalog/templates", h.Catalog.ListTemplates)

	authed := r.Group("/", AuthMiddleware(members, jwtSecret, logger))

	authed.POST("/projects", h.Project.CreateProject)
	authed.GET("/projects", h.Project.ListProjects)
	authed.GET("/projects/:id", h.Project.GetProject)
	authed.PATCH("/projects/:id", h.Project.UpdateProject)

	authed.GET("/projects/:id/phases", h.Project.ListPhases)
	authed.PATCH("/projects/:id/phases/:phase", h.Project.RenamePhase)
	authed.PATCH("/projects/:id/phases/:phase/visibility", h.Project.HidePhase)
	authed.PUT("/projects/:id/phases/order", h.Project.ReorderPhases)

	authed.GET("/projects/:id/checklist", h.Checklist.ListItems)
	authed.POST("/projects/:id/checklist", h.Checklist.AddItem)
	authed.PUT("/projects/:id/checklist/order", h.Checklist.ReorderItems)
	authed.PATCH("/projects/:id/checklist/:itemId/status", h.Checklist.SetItemStatus)
	authed.PATCH("/projects/:id/checklist/:itemId", h.Checklist.EditItem)
	authed.DELETE("/projects/:id/checklist/:itemId", h.Checklist.DeleteItem)

	authed.GET("/projects/:id/conflicts", h.Conflict.ListConflicts)
	authed.POST("/projects/:id/conflicts", h.Conflict.OpenConflict)
	authed.POST("/projects/:id/conflicts/:conflictId/resolve", h.Conflict.ResolveConflict)

	authed.GET("/projects/:id/risk", h.Risk.GetRisk)

	authed.GET("/projects/:id/tasks", h.Task.GetBoard)
	authed.POST("/projects/:id/tasks", h.Task.CreateTask)
	authed.PUT("/projects/:id/tasks/order", h.Task.ReorderTasks)
	authed.PATCH("/projects/:id/tasks/:taskId", h.Task.UpdateTask)
	authed.PATCH("/projects/:id/tasks/:taskId/status", h.Task.MoveTask)
	authed.DELETE("/projects/:id/tasks/:taskId", h.Task.DeleteTask)
	authed.GET("/projects/:id/task-config", h.Task.GetConfiguration)
	authed.PUT("/projects/:id/task-config", h.Task.UpdateConfiguration)

	authed.POST("/admin/outbox/replay", h.Admin.ReplayFailedEvents)
	authed.POST("/admin/outbox/replay/:eventId", h.Admin.ReplayEvent)

	return r
}
