package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spigell/resume-matcher/internal/extract"
	"github.com/spigell/resume-matcher/internal/match"
	"go.uber.org/zap"
)

const (
	msgFetchFailed = "Failed to fetch job titles"
	msgMatchFailed = "Failed to match job titles"
)

type matchRequest struct {
	ResumeText json.RawMessage `json:"resumeText"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listJobs(c *gin.Context) {
	titles, err := s.matcher.ListJobs(c.Request.Context())
	if err != nil {
		s.internalError(c, msgFetchFailed, err)
		return
	}

	c.JSON(http.StatusOK, titles)
}

func (s *Server) findMatches(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodySize())

	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Resume text is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "Request body must be a JSON object"})
		return
	}

	if len(req.ResumeText) == 0 || string(req.ResumeText) == "null" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "resumeText is required"})
		return
	}

	var text string
	if err := json.Unmarshal(req.ResumeText, &text); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "resumeText must be a string"})
		return
	}

	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "resumeText is required"})
		return
	}

	matched, err := s.matcher.FindMatches(c.Request.Context(), &text)
	if err != nil {
		if errors.Is(err, match.ErrRequestShape) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid match request"})
			return
		}

		msg := msgMatchFailed
		if errors.Is(err, match.ErrDataSource) {
			msg = msgFetchFailed
		}
		s.internalError(c, msg, err)
		return
	}

	c.JSON(http.StatusOK, matched)
}

func (s *Server) extractResume(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodySize())

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "File is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "A resume file is required in the 'file' field"})
		return
	}
	defer file.Close()

	doc, err := s.extractor.FromReader(header.Filename, file)
	if err != nil {
		log := requestLogger(c, s.logger)

		switch {
		case errors.Is(err, extract.ErrTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "File is too large"})
		case errors.Is(err, extract.ErrEmptyFile):
			c.JSON(http.StatusBadRequest, gin.H{"message": "File is empty"})
		case errors.Is(err, extract.ErrUnsupportedType):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Unsupported file type"})
		default:
			log.Warn("reading resume file", zap.String("file", header.Filename), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"message": "Error reading file"})
		}
		return
	}

	c.JSON(http.StatusOK, doc)
}

// maxBodySize bounds request bodies by extract.max-size plus room for the
// multipart or JSON envelope.
func (s *Server) maxBodySize() int64 {
	return s.extractor.MaxSize() + 1<<20
}

// internalError logs the cause and answers with the error kind only.
func (s *Server) internalError(c *gin.Context, message string, err error) {
	requestLogger(c, s.logger).Error(message, zap.Error(err))

	kind := "internal error"
	if k := match.Kind(err); k != nil {
		kind = k.Error()
	}

	c.JSON(http.StatusInternalServerError, gin.H{"message": message, "error": kind})
}
