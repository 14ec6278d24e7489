package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rammohanpatel/AI-Interviewer/internal/metrics"
	"github.com/rammohanpatel/AI-Interviewer/internal/models"
)

// Variant selects the fixed category set an interview is scored against.
type Variant string

const (
	VariantBehavioral Variant = "behavioral"
	VariantCoding     Variant = "coding"
)

// Fixed category sets. The oracle is constrained to produce exactly these,
// no more, no fewer.
var behavioralCategories = []string{
	"Communication Skills",
	"Technical Knowledge",
	"Problem-Solving",
	"Cultural & Role Fit",
	"Confidence & Clarity",
}

var codingCategories = []string{
	"Problem Understanding",
	"Algorithm & Logic",
	"Code Quality",
	"Communication",
	"Testing & Edge Cases",
}

// Categories returns the category names for a variant.
func Categories(v Variant) []string {
	if v == VariantCoding {
		return codingCategories
	}
	return behavioralCategories
}

// ScoringResult is the schema-validated output of one scoring call.
type ScoringResult struct {
	TotalScore          float64                `json:"totalScore"`
	CategoryScores      []models.CategoryScore `json:"categoryScores"`
	Strengths           []string               `json:"strengths"`
	AreasForImprovement []string               `json:"areasForImprovement"`
	FinalAssessment     string                 `json:"finalAssessment"`
	CodeReview          string                 `json:"codeReview,omitempty"`
}

// ScoringSchema builds the output schema for a variant: the fixed category
// enum, 0-10 score bounds and the summary fields.
func ScoringSchema(v Variant) *Schema {
	properties := map[string]*Schema{
		"totalScore": BoundedNumber("Overall score for the candidate", 0, 10),
		"categoryScores": {
			Type:        TypeArray,
			Description: fmt.Sprintf("Exactly %d category scores, one per category", len(Categories(v))),
			Items: Object(map[string]*Schema{
				"name":    {Type: TypeString, Enum: Categories(v)},
				"score":   BoundedNumber("Score for this category", 0, 10),
				"comment": String("Short justification for the score"),
			}),
		},
		"strengths":           StringArray("What the candidate did well"),
		"areasForImprovement": StringArray("What the candidate should work on"),
		"finalAssessment":     String("Overall assessment of the candidate"),
	}
	if v == VariantCoding {
		properties["codeReview"] = String("Review of the submitted code")
	}
	return Object(properties)
}

// ScoringClient wraps a provider into the scoring oracle contract: it either
// returns a result satisfying the variant's schema or a typed ProviderError.
// It performs no retries; retry policy belongs to the caller.
type ScoringClient struct {
	provider Provider
}

func NewScoringClient(provider Provider) *ScoringClient {
	return &ScoringClient{provider: provider}
}

func (c *ScoringClient) ProviderName() string {
	return c.provider.GetProviderName()
}

// Score runs one structured scoring call and validates the response against
// the variant's category set and bounds.
func (c *ScoringClient) Score(ctx context.Context, system, prompt string, v Variant, requestID string) (*ScoringResult, error) {
	resp, err := c.provider.GenerateStructured(ctx, &StructuredRequest{
		System:    system,
		Prompt:    prompt,
		Schema:    ScoringSchema(v),
		RequestID: requestID,
	})
	if err != nil {
		metrics.OracleRequest(c.provider.GetProviderName(), CodeOf(err))
		return nil, err
	}
	metrics.OracleRequest(c.provider.GetProviderName(), "ok")

	var result ScoringResult
	if err := json.Unmarshal(resp.Raw, &result); err != nil {
		return nil, &ProviderError{
			Provider: c.provider.GetProviderName(),
			Code:     ErrCodeSchemaViolation,
			Message:  "response is not valid JSON",
			Err:      err,
		}
	}

	if err := validateScoringResult(&result, v); err != nil {
		return nil, &ProviderError{
			Provider: c.provider.GetProviderName(),
			Code:     ErrCodeSchemaViolation,
			Message:  err.Error(),
		}
	}
	return &result, nil
}

func validateScoringResult(result *ScoringResult, v Variant) error {
	if result.TotalScore < 0 || result.TotalScore > 10 {
		return fmt.Errorf("totalScore %.2f out of [0,10]", result.TotalScore)
	}

	expected := Categories(v)
	if len(result.CategoryScores) != len(expected) {
		return fmt.Errorf("expected %d category scores, got %d", len(expected), len(result.CategoryScores))
	}

	seen := make(map[string]bool, len(expected))
	for _, cs := range result.CategoryScores {
		if seen[cs.Name] {
			return fmt.Errorf("duplicate category %q", cs.Name)
		}
		seen[cs.Name] = true
		if cs.Score < 0 || cs.Score > 10 {
			return fmt.Errorf("category %q score %.2f out of [0,10]", cs.Name, cs.Score)
		}
	}
	for _, name := range expected {
		if !seen[name] {
			return fmt.Errorf("missing category %q", name)
		}
	}

	if result.FinalAssessment == "" {
		return fmt.Errorf("finalAssessment is empty")
	}
	if v == VariantCoding && result.CodeReview == "" {
		return fmt.Errorf("codeReview is empty")
	}
	return nil
}
