package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/symptom-insight-server/internal/domain"
	"github.com/symptom-insight-server/internal/middleware"
	"github.com/symptom-insight-server/internal/service"
	"github.com/symptom-insight-server/internal/symptom"
)

const (
	msgNoSymptoms  = "No symptoms provided"
	msgNoCondition = "No condition provided"

	defaultRelatedCount = 5
	maxGalleryCount     = 50
)

// SymptomList accepts either a JSON array of names or a single
// comma-separated string.
type SymptomList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *SymptomList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return domain.NewValidationError("symptoms", "must be a list of strings or a comma-separated string", string(data))
	}
	*l = symptom.ParseList(text)
	return nil
}

// SymptomsRequest is the body of the health-data and diagnosis endpoints.
type SymptomsRequest struct {
	Symptoms SymptomList `json:"symptoms"`
}

// ConditionRequest is the body of the medications endpoint.
type ConditionRequest struct {
	Condition string `json:"condition"`
}

// ImagesRequest is the body of the symptom-images endpoint.
type ImagesRequest struct {
	Input  string `json:"input" form:"input"`
	Offset int    `json:"offset" form:"offset"`
	Count  int    `json:"count" form:"count"`
}

func (s *Server) respondError(c *gin.Context, status int, code, message, details string) {
	c.JSON(status, domain.NewAPIError(code, message, details, c.GetString(middleware.RequestIDKey)))
}

// bindSymptoms reads the request body and rejects an empty symptom list.
func (s *Server) bindSymptoms(c *gin.Context) ([]string, bool) {
	var req SymptomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid request body", err.Error())
		return nil, false
	}
	if len(symptom.Normalize(req.Symptoms)) == 0 {
		s.respondError(c, http.StatusBadRequest, domain.ErrValidation, msgNoSymptoms, "")
		return nil, false
	}
	return req.Symptoms, true
}

// handleHealth reports the server status and the breaker state of each
// remote service. An open breaker degrades the status but not the code.
func (s *Server) handleHealth(c *gin.Context) {
	status := "healthy"
	var services any = []any{}
	if s.deps.Services != nil {
		health := s.deps.Services.Health()
		for _, h := range health {
			if !h.Healthy {
				status = "degraded"
			}
		}
		services = health
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"version":  Version,
		"services": services,
	})
}

func (s *Server) handleHealthData(c *gin.Context) {
	symptoms, ok := s.bindSymptoms(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.deps.HealthData.Resolve(c.Request.Context(), symptoms))
}

func (s *Server) handleDiagnosis(c *gin.Context) {
	symptoms, ok := s.bindSymptoms(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.deps.Diagnosis.QueryRemote(c.Request.Context(), symptoms))
}

func (s *Server) handleMedications(c *gin.Context) {
	var req ConditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.Condition) == "" {
		s.respondError(c, http.StatusBadRequest, domain.ErrValidation, msgNoCondition, "")
		return
	}
	c.JSON(http.StatusOK, s.deps.Medications.Resolve(c.Request.Context(), req.Condition))
}

// handleSymptomImages serves a gallery page. GET without parameters returns
// the default set.
func (s *Server) handleSymptomImages(c *gin.Context) {
	req := ImagesRequest{Count: service.DefaultGalleryCount}

	var err error
	if c.Request.Method == http.MethodPost {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBindQuery(&req)
	}
	if err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid request", err.Error())
		return
	}

	if req.Count <= 0 {
		req.Count = service.DefaultGalleryCount
	}
	if req.Count > maxGalleryCount {
		req.Count = maxGalleryCount
	}

	images := s.deps.Images.Gallery(c.Request.Context(), req.Input, req.Offset, req.Count)
	c.JSON(http.StatusOK, gin.H{"images": images})
}

func (s *Server) handleRelatedSymptoms(c *gin.Context) {
	input := strings.TrimSpace(c.Query("input"))
	if input == "" {
		s.respondError(c, http.StatusBadRequest, domain.ErrValidation, msgNoSymptoms, "")
		return
	}

	maxCount := defaultRelatedCount
	if raw := c.Query("max"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "max must be a non-negative integer", raw)
			return
		}
		maxCount = parsed
	}

	c.JSON(http.StatusOK, gin.H{
		"input":   input,
		"related": s.deps.Related.Related(input, maxCount),
	})
}

func (s *Server) handleClearCache(c *gin.Context) {
	if err := s.deps.Cache.ClearAll(c.Request.Context()); err != nil {
		s.logger.WithError(err).Error("Failed to clear cache")
		s.respondError(c, http.StatusInternalServerError, domain.ErrCache, "Failed to clear cache", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "API cache cleared successfully"})
}
