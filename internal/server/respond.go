package server

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/statement-parser/internal/common"
	"github.com/joseph-ayodele/statement-parser/internal/pipeline"
)

const jobIDHeader = "X-Job-ID"

// respondError writes the pipeline envelope for transport-level failures.
func respondError(c *gin.Context, kind common.ErrorKind, msg string) {
	c.JSON(common.HTTPStatus(kind), pipeline.PipelineResult{
		Success: false,
		Message: msg,
		Error:   kind,
	})
}

// respondErr maps err onto the envelope, falling back to INTERNAL_ERROR.
func respondErr(c *gin.Context, err error) {
	kind := common.KindOf(err, common.KindInternal)
	msg := err.Error()
	var ae *common.AppError
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	respondError(c, kind, msg)
}

// respondResult writes a pipeline result. Pipeline failures are 200 with success
// false; only INTERNAL_ERROR maps to 500.
func respondResult(c *gin.Context, res pipeline.PipelineResult) {
	if res.JobID != "" {
		c.Header(jobIDHeader, res.JobID)
	}
	c.JSON(common.HTTPStatus(res.Error), res)
}
