package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/vms/internal/api/handlers"
	"github.com/your-org/vms/internal/api/ws"
	"github.com/your-org/vms/internal/audit"
	"github.com/your-org/vms/internal/auth"
	"github.com/your-org/vms/internal/biometric"
	"github.com/your-org/vms/internal/capture"
	"github.com/your-org/vms/internal/config"
	"github.com/your-org/vms/internal/links"
	"github.com/your-org/vms/internal/queue"
	"github.com/your-org/vms/internal/storage"
	"github.com/your-org/vms/internal/visits"
)

type RouterConfig struct {
	APIKey   string
	DB       *storage.PostgresStore
	Photos   *storage.PhotoStore
	Producer *queue.Producer
	Hub      *ws.Hub
	Settings *config.Provider
	Emitter  audit.Emitter

	Enroller *biometric.Enroller
	Matcher  *biometric.Matcher
	Registry *links.Registry
	Manager  *visits.Manager

	// Extractor is optional; photo endpoints return 503 without it.
	Extractor capture.Extractor
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.Photos, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (with auth)
	v1 := r.Group("/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))

	// Live visit feed
	v1.GET("/ws", cfg.Hub.HandleWS)

	// Visitors & biometric enrollment
	visitorH := handlers.NewVisitorHandler(cfg.DB, cfg.Photos, cfg.Enroller)
	visitorH.Extractor = cfg.Extractor
	v1.POST("/visitors", visitorH.Create)
	v1.GET("/visitors", visitorH.List)
	v1.GET("/visitors/:id", visitorH.Get)
	v1.PATCH("/visitors/:id/status", visitorH.UpdateStatus)
	v1.PUT("/visitors/:id/profile", visitorH.Enroll)
	v1.PUT("/visitors/:id/profile/photos", visitorH.EnrollPhotos)

	// Detainees
	detaineeH := handlers.NewDetaineeHandler(cfg.DB)
	v1.POST("/detainees", detaineeH.Create)
	v1.GET("/detainees", detaineeH.List)
	v1.GET("/detainees/:id", detaineeH.Get)
	v1.PATCH("/detainees/:id/status", detaineeH.UpdateStatus)

	// Identification
	identifyH := handlers.NewIdentifyHandler(cfg.Matcher, cfg.Manager, cfg.Emitter)
	identifyH.Extractor = cfg.Extractor
	v1.POST("/identify", identifyH.Identify)
	v1.POST("/identify/photo", identifyH.IdentifyPhoto)
	v1.POST("/identify/code", identifyH.IdentifyCode)

	// Relationship links
	linkH := handlers.NewLinkHandler(cfg.Registry, cfg.DB)
	v1.POST("/links", linkH.Create)
	v1.GET("/links/:id", linkH.Get)
	v1.POST("/links/:id/approve", linkH.Approve)
	v1.POST("/links/:id/reject", linkH.Reject)
	v1.GET("/visitors/:id/links", linkH.ListForVisitor)
	v1.GET("/detainees/:id/links", linkH.ListForDetainee)

	// Visit sessions
	sessionH := handlers.NewSessionHandler(cfg.Manager)
	v1.POST("/sessions/time-in", sessionH.TimeIn)
	v1.POST("/sessions/time-out", sessionH.TimeOut)
	v1.GET("/sessions/open", sessionH.Open)
	v1.GET("/sessions/completed", sessionH.CompletedToday)

	// Settings
	settingsH := handlers.NewSettingsHandler(cfg.Settings, cfg.Emitter)
	v1.GET("/settings", settingsH.Get)
	v1.PUT("/settings", settingsH.Update)

	// Audit trail
	auditH := handlers.NewAuditHandler(cfg.DB)
	v1.GET("/audit", auditH.List)

	return r
}
