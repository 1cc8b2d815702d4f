package out

import "context"

// LLMClient is the outbound port to the generative model.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	DescribeImage(ctx context.Context, prompt, imageBase64, mimeType string) (string, error)
}
