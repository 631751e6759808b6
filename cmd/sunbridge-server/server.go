package main

import (
	"errors"
	"log/slog"
	"net/http"
	"sunbridge-backend/lib/platforms/highlevel"
	"sunbridge-backend/lib/platforms/supabase"
	"sunbridge-backend/services/analyzer"
	"sunbridge-backend/services/keychain"
	"sunbridge-backend/services/provisioning"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Server struct {
	router       *gin.Engine
	crm          *highlevel.Client
	supa         *supabase.Client
	keychain     keychain.Service
	provisioning *provisioning.Service
	analyzer     *analyzer.Service
	loginUrl     string
}

type ServerOptions struct {
	Crm          *highlevel.Client
	Supabase     *supabase.Client
	Keychain     keychain.Service
	Provisioning *provisioning.Service
	Analyzer     *analyzer.Service
	// LoginUrl is the CRM's interactive login host, used by the
	// session-capture endpoint.
	LoginUrl string
}

func NewServer(opts ServerOptions) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		crm:          opts.Crm,
		supa:         opts.Supabase,
		keychain:     opts.Keychain,
		provisioning: opts.Provisioning,
		analyzer:     opts.Analyzer,
		loginUrl:     opts.LoginUrl,
	}

	router := gin.New()
	router.Use(requestId(), requestLog(), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/contacts", s.listContacts)
		api.POST("/contacts", s.createContact)
		api.POST("/appointments", s.createAppointment)
		api.POST("/provision", s.provision)
		api.POST("/analyze/company", s.analyzeCompany)
		api.POST("/analyze/solar", s.analyzeSolar)
		api.GET("/keychain/status", s.keychainStatus)
		api.POST("/keychain/capture", s.captureSession)
	}
	router.POST("/webhook/n8n-response", s.workflowResponse)

	s.router = router
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func requestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString("request_id"),
		)
	}
}

// fail maps an error onto the right status and a uniform body. Errors
// from the CRM keep their upstream status when it was a client fault.
func fail(c *gin.Context, fallback int, err error) {
	status := fallback
	var apiErr *highlevel.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		status = apiErr.Status
	}
	c.JSON(status, gin.H{
		"error":     err.Error(),
		"requestId": c.GetString("request_id"),
	})
}
