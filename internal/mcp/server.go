package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/symptom-insight-server/internal/domain"
	"github.com/symptom-insight-server/internal/service"
	"github.com/symptom-insight-server/internal/symptom"
)

const (
	defaultServerName    = "symptom-insight-server"
	defaultServerVersion = "v1.0.0"

	defaultRelatedCount = 5
	maxGalleryCount     = 50
)

// Gallery pages symptom images for free-text input.
type Gallery interface {
	Gallery(ctx context.Context, input string, offset, count int) []domain.SymptomAsset
}

// RelatedFinder suggests vocabulary symptoms related to an input.
type RelatedFinder interface {
	Related(input string, maxCount int) []string
}

// CacheAdmin clears every cached response.
type CacheAdmin interface {
	ClearAll(ctx context.Context) error
}

// Dependencies are the operations exposed as tools.
type Dependencies struct {
	HealthData  domain.HealthDataResolver
	Diagnosis   domain.DiagnosisSource
	Medications domain.MedicationSource
	Images      Gallery
	Related     RelatedFinder
	Cache       CacheAdmin
}

// Server exposes the resolvers as MCP tools over stdio.
type Server struct {
	deps      Dependencies
	mcpServer *mcp.Server
	logger    *logrus.Logger
}

// SymptomsInput is the argument of the symptom based tools.
type SymptomsInput struct {
	Symptoms []string `json:"symptoms" jsonschema:"symptom names, e.g. itching or skin_rash"`
}

// ConditionInput is the argument of resolve_medications.
type ConditionInput struct {
	Condition string `json:"condition" jsonschema:"condition to search drug labels for"`
}

// ImagesInput is the argument of symptom_images.
type ImagesInput struct {
	Input  string `json:"input,omitempty" jsonschema:"free text listing symptoms, empty for the default set"`
	Offset int    `json:"offset,omitempty" jsonschema:"number of images to skip"`
	Count  int    `json:"count,omitempty" jsonschema:"number of images to return"`
}

// RelatedInput is the argument of related_symptoms.
type RelatedInput struct {
	Input string `json:"input" jsonschema:"symptom or free text to find related symptoms for"`
	Max   int    `json:"max,omitempty" jsonschema:"maximum number of suggestions"`
}

// ClearCacheInput takes no arguments.
type ClearCacheInput struct{}

// NewServer creates the MCP server and registers every tool.
func NewServer(deps Dependencies, config domain.MCPConfig, logger *logrus.Logger) *Server {
	name := config.ServerName
	if name == "" {
		name = defaultServerName
	}
	version := config.ServerVersion
	if version == "" {
		version = defaultServerVersion
	}

	s := &Server{
		deps:      deps,
		mcpServer: mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
		logger:    logger,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "resolve_health_data",
		Description: "Resolve symptoms into a condition, matching medications and plain-language insights",
	}, s.resolveHealthData)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "query_diagnosis",
		Description: "Query the remote diagnosis service for candidate conditions",
	}, s.queryDiagnosis)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "resolve_medications",
		Description: "Find drug labels indicated for a condition",
	}, s.resolveMedications)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "symptom_images",
		Description: "Return illustrative images for symptoms",
	}, s.symptomImages)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "related_symptoms",
		Description: "Suggest known symptoms related to the input",
	}, s.relatedSymptoms)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "clear_cache",
		Description: "Remove every cached API response",
	}, s.clearCache)

	s.logger.WithField("tool_count", 6).Debug("Registered MCP tools")
}

// Run serves requests on stdin/stdout until ctx is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Starting MCP server on stdio")
	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

func (s *Server) resolveHealthData(ctx context.Context, _ *mcp.CallToolRequest, in SymptomsInput) (*mcp.CallToolResult, any, error) {
	if len(symptom.Normalize(in.Symptoms)) == 0 {
		return s.invalid("resolve_health_data", "No symptoms provided")
	}
	return s.respond("resolve_health_data", s.deps.HealthData.Resolve(ctx, in.Symptoms))
}

func (s *Server) queryDiagnosis(ctx context.Context, _ *mcp.CallToolRequest, in SymptomsInput) (*mcp.CallToolResult, any, error) {
	if len(symptom.Normalize(in.Symptoms)) == 0 {
		return s.invalid("query_diagnosis", "No symptoms provided")
	}
	return s.respond("query_diagnosis", s.deps.Diagnosis.QueryRemote(ctx, in.Symptoms))
}

func (s *Server) resolveMedications(ctx context.Context, _ *mcp.CallToolRequest, in ConditionInput) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(in.Condition) == "" {
		return s.invalid("resolve_medications", "No condition provided")
	}
	return s.respond("resolve_medications", s.deps.Medications.Resolve(ctx, in.Condition))
}

func (s *Server) symptomImages(ctx context.Context, _ *mcp.CallToolRequest, in ImagesInput) (*mcp.CallToolResult, any, error) {
	count := in.Count
	if count <= 0 {
		count = service.DefaultGalleryCount
	}
	count = min(count, maxGalleryCount)
	offset := max(in.Offset, 0)

	images := s.deps.Images.Gallery(ctx, in.Input, offset, count)
	return s.respond("symptom_images", map[string]any{"images": images})
}

func (s *Server) relatedSymptoms(_ context.Context, _ *mcp.CallToolRequest, in RelatedInput) (*mcp.CallToolResult, any, error) {
	input := strings.TrimSpace(in.Input)
	if input == "" {
		return s.invalid("related_symptoms", "No symptoms provided")
	}
	maxCount := in.Max
	if maxCount <= 0 {
		maxCount = defaultRelatedCount
	}
	return s.respond("related_symptoms", map[string]any{
		"input":   input,
		"related": s.deps.Related.Related(input, maxCount),
	})
}

func (s *Server) clearCache(ctx context.Context, _ *mcp.CallToolRequest, _ ClearCacheInput) (*mcp.CallToolResult, any, error) {
	if err := s.deps.Cache.ClearAll(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to clear cache")
		return s.failure("clear_cache", domain.ErrCache, "Failed to clear cache", err.Error())
	}
	return s.respond("clear_cache", map[string]string{"message": "API cache cleared successfully"})
}

// respond encodes a tool result as JSON text content.
func (s *Server) respond(tool string, v any) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s result: %w", tool, err)
	}
	s.logger.WithField("tool", tool).Debug("Tool completed")
	return textResult(string(data), false), nil, nil
}

func (s *Server) invalid(tool, message string) (*mcp.CallToolResult, any, error) {
	return s.failure(tool, domain.ErrValidation, message, "")
}

// failure reports an APIError to the client as an error result rather than a
// protocol error.
func (s *Server) failure(tool, code, message, details string) (*mcp.CallToolResult, any, error) {
	apiErr := domain.NewAPIError(code, message, details, uuid.NewString())
	data, err := json.Marshal(apiErr)
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s error: %w", tool, err)
	}
	s.logger.WithFields(logrus.Fields{
		"tool": tool,
		"code": code,
	}).Warn(message)
	return textResult(string(data), true), nil, nil
}

func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}
