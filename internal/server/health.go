package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/statement-parser/internal/extract"
)

// HealthSource reports the readiness of the model and of text acquisition.
type HealthSource interface {
	ModelLoaded() bool
	ModelName() string
	Extraction(ctx context.Context) extract.ServiceInfo
}

// RuntimeHealth adapts the live invoker and acquirer to HealthSource.
type RuntimeHealth struct {
	Model interface {
		Loaded() bool
		ModelName() string
	}
	Acquirer  *extract.Acquirer
	Versioner interface{ TesseractVersion(context.Context) string }
}

func (h RuntimeHealth) ModelLoaded() bool { return h.Model != nil && h.Model.Loaded() }

func (h RuntimeHealth) ModelName() string {
	if h.Model == nil {
		return ""
	}
	return h.Model.ModelName()
}

func (h RuntimeHealth) Extraction(ctx context.Context) extract.ServiceInfo {
	if h.Acquirer == nil {
		return extract.ServiceInfo{PreferredMethod: "none"}
	}
	return h.Acquirer.Info(ctx, h.Versioner)
}

type healthResponse struct {
	Status      string  `json:"status"`
	ModelLoaded bool    `json:"model_loaded"`
	Version     string  `json:"version"`
	Timestamp   float64 `json:"timestamp"`
}

type detailedHealthData struct {
	APIStatus        string              `json:"api_status"`
	ModelStatus      string              `json:"model_status"`
	PDFServiceStatus string              `json:"pdf_service_status"`
	ModelName        string              `json:"model_name"`
	PDFServiceInfo   extract.ServiceInfo `json:"pdf_service_info"`
	Version          string              `json:"version"`
}

type detailedHealthResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    detailedHealthData `json:"data"`
}

func (s *Server) health(c *gin.Context) {
	loaded := s.deps.Health.ModelLoaded()
	info := s.deps.Health.Extraction(c.Request.Context())
	status := "healthy"
	if !loaded || !info.ServiceAvailable {
		status = "degraded"
	}
	c.JSON(http.StatusOK, healthResponse{
		Status:      status,
		ModelLoaded: loaded,
		Version:     s.cfg.Version,
		Timestamp:   float64(time.Now().UnixNano()) / 1e9,
	})
}

func (s *Server) detailedHealth(c *gin.Context) {
	info := s.deps.Health.Extraction(c.Request.Context())
	data := detailedHealthData{
		APIStatus:        "running",
		ModelStatus:      "not_loaded",
		PDFServiceStatus: "not_available",
		ModelName:        s.deps.Health.ModelName(),
		PDFServiceInfo:   info,
		Version:          s.cfg.Version,
	}
	if s.deps.Health.ModelLoaded() {
		data.ModelStatus = "loaded"
	}
	if info.ServiceAvailable {
		data.PDFServiceStatus = "available"
	}
	c.JSON(http.StatusOK, detailedHealthResponse{Success: true, Message: "API is running", Data: data})
}
