package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/statement-parser/constants"
	"github.com/joseph-ayodele/statement-parser/internal/common"
	"github.com/joseph-ayodele/statement-parser/internal/entity"
)

// textRequest is the body of POST /api/process/text. text_content must be present;
// an empty string is passed through so the pipeline reports TEXT_EMPTY.
type textRequest struct {
	TextContent   *string `json:"text_content"`
	CustomerID    string  `json:"customer_id"`
	StatementType string  `json:"statement_type"`
}

func (s *Server) processText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TextContent == nil {
		respondError(c, common.KindInvalidInput, "request body must be JSON with text_content")
		return
	}
	v := common.NewValidator().
		Field("customer_id", req.CustomerID, common.MaxLength(128)).
		Field("statement_type", req.StatementType, common.MaxLength(64))
	if v.HasErrors() {
		respondError(c, common.KindInvalidInput, v.ErrorMessage())
		return
	}

	ctx := c.Request.Context()
	s.logger.Info("http.process_text", "req_id", common.RequestIDFromContext(ctx),
		"customer_id", req.CustomerID, "statement_type", req.StatementType, "text_bytes", len(*req.TextContent))

	res := s.deps.Processor.Process(ctx, entity.Document{RawText: *req.TextContent, CustomerID: req.CustomerID})
	respondResult(c, res)
}

func (s *Server) processFile(c *gin.Context) {
	limit := s.cfg.MaxFileSize
	if limit <= 0 {
		limit = constants.MaxFileSizeDefault
	}
	// file plus 1MB for form fields
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			respondError(c, common.KindTooLarge, fmt.Sprintf("File too large. Maximum size: %d bytes", limit))
			return
		}
		respondError(c, common.KindInvalidInput, "file field is required")
		return
	}
	if fh.Size > limit {
		respondError(c, common.KindTooLarge, fmt.Sprintf("File too large. Maximum size: %d bytes", limit))
		return
	}

	customerID := c.PostForm("customer_id")
	forceOCR := false
	if raw := c.PostForm("force_ocr"); raw != "" {
		forceOCR, err = strconv.ParseBool(raw)
		if err != nil {
			respondError(c, common.KindInvalidInput, "force_ocr must be a boolean")
			return
		}
	}
	if v := common.NewValidator().Field("customer_id", customerID, common.MaxLength(128)); v.HasErrors() {
		respondError(c, common.KindInvalidInput, v.ErrorMessage())
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, common.KindInvalidInput, "failed to open uploaded file")
		return
	}
	defer f.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(f, limit+1)); err != nil {
		respondError(c, common.KindInvalidInput, "failed to read uploaded file")
		return
	}
	data := buf.Bytes()

	detected := mimetype.Detect(data)
	if !allowedUpload(detected) {
		respondError(c, common.KindUnsupported, fmt.Sprintf("Only PDF files are supported, got %s", detected.String()))
		return
	}

	ctx := c.Request.Context()
	s.logger.Info("http.process_file", "req_id", common.RequestIDFromContext(ctx),
		"filename", fh.Filename, "bytes", len(data), "customer_id", customerID, "force_ocr", forceOCR)

	res := s.deps.Processor.Process(ctx, entity.Document{
		Bytes:      data,
		Filename:   fh.Filename,
		ForceOCR:   forceOCR,
		CustomerID: customerID,
	})
	respondResult(c, res)
}

func allowedUpload(m *mimetype.MIME) bool {
	for _, t := range constants.AllowedUploadTypes {
		if m.Is(t) {
			return true
		}
	}
	return false
}
