package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/statement-parser/internal/common"
)

func (s *Server) getJob(c *gin.Context) {
	id, ok := s.jobID(c)
	if !ok {
		return
	}
	job, err := s.deps.Jobs.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Job found", "data": job})
}

func (s *Server) exportJob(c *gin.Context) {
	if s.deps.Exporter == nil {
		respondError(c, common.KindNotFound, "exports are not enabled")
		return
	}
	id, ok := s.jobID(c)
	if !ok {
		return
	}
	format := c.DefaultQuery("format", "xlsx")
	if v := common.NewValidator().Field("format", format, common.OneOf("xlsx", "csv")); v.HasErrors() {
		respondError(c, common.KindInvalidInput, v.ErrorMessage())
		return
	}

	file, err := s.deps.Exporter.ExportJob(c.Request.Context(), id, format)
	if err != nil {
		s.logger.Error("http.export.failed", "job_id", id, "err", err)
		respondErr(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

func (s *Server) jobID(c *gin.Context) (uuid.UUID, bool) {
	if s.deps.Jobs == nil {
		respondError(c, common.KindNotFound, "job tracking is not enabled")
		return uuid.Nil, false
	}
	raw := c.Param("id")
	if v := common.NewValidator().Field("id", raw, common.Required, common.UUID); v.HasErrors() {
		respondError(c, common.KindInvalidInput, v.ErrorMessage())
		return uuid.Nil, false
	}
	return uuid.MustParse(raw), true
}
