package external

import (
	"context"
	"encoding/json"
)

// DiagnosisAPI returns the raw diagnosis payload for a symptom list.
type DiagnosisAPI interface {
	Endpoint() string
	Diagnose(ctx context.Context, symptoms []string) (json.RawMessage, error)
}

// DrugLabelAPI searches drug labels by indication.
type DrugLabelAPI interface {
	Endpoint() string
	SearchByIndication(ctx context.Context, condition string, limit int) (*DrugLabelResponse, error)
}

// TextGenerator produces free text for a prompt.
type TextGenerator interface {
	Endpoint() string
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator produces an inline image for a prompt, if the model returns one.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*InlineData, bool, error)
}

var (
	_ DiagnosisAPI   = (*DiagnosisClient)(nil)
	_ DrugLabelAPI   = (*DrugLabelClient)(nil)
	_ TextGenerator  = (*GeminiClient)(nil)
	_ ImageGenerator = (*GeminiClient)(nil)
)
