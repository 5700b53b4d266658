package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterTaskRoutes registra las rutas HTTP para el dominio de Tareas.
func RegisterTaskRoutes(r *gin.Engine, handler *TaskHandler) {
	// Agrupamos todas las rutas de tareas bajo el prefijo "/tasks"
	tasks := r.Group("/tasks")
	{
		tasks.POST("", handler.CreateTask)       // Crear una nueva tarea
		tasks.GET("", handler.ListTasks)         // Vista con búsqueda, filtro y orden
		tasks.GET("/:id", handler.GetTask)       // Obtener una tarea por su ID
		tasks.PATCH("/:id", handler.UpdateTask)  // Actualización parcial
		tasks.DELETE("/:id", handler.DeleteTask) // Eliminar una tarea (idempotente)
	}

	stats := r.Group("/stats")
	{
		stats.GET("", handler.GetStats)
		stats.GET("/trend", handler.GetTrend)
		stats.GET("/completion-time", handler.GetCompletionTime)
	}
}

// NewRouter monta el engine con recovery, log de peticiones en zap y /health.
func NewRouter(handler *TaskHandler, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))
	RegisterTaskRoutes(router, handler)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return router
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
