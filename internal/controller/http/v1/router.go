// Package v1 implements routing paths. Each services in own file.
package v1

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"audio_conversion/entity"
	"audio_conversion/internal/telemetry/metric"
	"audio_conversion/pkg/logger"
)

const traceName = "http-v1"

// RouterOptions -.
type RouterOptions struct {
	MaxUploadBytes int64
	// StaticDir enables GET / and /static/* when set.
	StaticDir   string
	StaticIndex string
}

// NewRouter -.
func NewRouter(handler *gin.Engine, l logger.Interface, cu entity.ConversionUsecase, m *metric.Metrics, opts RouterOptions) {
	// Options
	handler.Use(requestLogger(l, m))
	handler.Use(gin.Recovery())

	// Swagger
	swaggerHandler := ginSwagger.DisablingWrapHandler(swaggerFiles.Handler, "DISABLE_SWAGGER_HTTP_HANDLER")
	handler.GET("/swagger/*any", swaggerHandler)

	// K8s probe
	handler.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Prometheus metrics
	if m != nil {
		handler.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Static page
	if opts.StaticDir != "" {
		index := opts.StaticIndex
		if index == "" {
			index = "index.html"
		}
		indexPath := filepath.Join(opts.StaticDir, filepath.Base(index))
		handler.GET("/", func(c *gin.Context) { c.File(indexPath) })
		handler.Static("/static", opts.StaticDir)
	}

	// Routers
	newConversionRoutes(handler.Group(""), cu, l, opts.MaxUploadBytes)
}
