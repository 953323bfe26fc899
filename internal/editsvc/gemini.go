package editsvc

import (
	"context"
	"fmt"
	"image"
	"strings"

	genai "google.golang.org/genai"
)

// DefaultModel is the image-capable model used when none is configured.
const DefaultModel = "gemini-2.5-flash-image-preview"

// GeminiConfig configures a Gemini client.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Gemini is a thin wrapper around the official genai client. It only builds
// the request and interprets the response; logging is applied with
// WithLogging.
type Gemini struct {
	cli   *genai.Client
	model string
}

// NewGemini creates a client for the Gemini API.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{cli: cli, model: model}, nil
}

// Name identifies the backing model.
func (g *Gemini) Name() string { return "gemini:" + g.model }

func (g *Gemini) EditAt(ctx context.Context, img Image, instruction string, at image.Point) (Image, error) {
	return g.generate(ctx, "retouch", img, instruction, at)
}

func (g *Gemini) ApplyFilter(ctx context.Context, img Image, instruction string) (Image, error) {
	return g.generate(ctx, "filter", img, instruction, image.Point{})
}

func (g *Gemini) ApplyAdjustment(ctx context.Context, img Image, instruction string) (Image, error) {
	return g.generate(ctx, "adjust", img, instruction, image.Point{})
}

func (g *Gemini) generate(ctx context.Context, op string, img Image, instruction string, at image.Point) (Image, error) {
	prompt, err := renderPrompt(op+".tmpl", instruction, at)
	if err != nil {
		return Image{}, fmt.Errorf("%s prompt: %w", op, err)
	}
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	parts := []*genai.Part{
		genai.NewPartFromBytes(img.Data, mime),
		genai.NewPartFromText(prompt),
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		nil,
	)
	if err != nil {
		return Image{}, fmt.Errorf("%s request: %w", op, err)
	}
	return interpret(op, resp)
}

// interpret turns a response into exactly one image or a typed failure.
func interpret(op string, resp *genai.GenerateContentResponse) (Image, error) {
	if resp == nil {
		return Image{}, &NoImageError{Operation: op}
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return Image{}, &BlockedError{Reason: string(fb.BlockReason), Message: fb.BlockReasonMessage}
	}
	var text []string
	var cand *genai.Candidate
	if len(resp.Candidates) > 0 {
		cand = resp.Candidates[0]
	}
	if cand != nil && cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if part == nil {
				continue
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return Image{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType}, nil
			}
			if t := strings.TrimSpace(part.Text); t != "" {
				text = append(text, t)
			}
		}
	}
	if cand != nil && cand.FinishReason != "" && cand.FinishReason != genai.FinishReasonStop {
		return Image{}, &UnexpectedStopError{Operation: op, Reason: string(cand.FinishReason), Message: cand.FinishMessage}
	}
	return Image{}, &NoImageError{Operation: op, Feedback: strings.Join(text, " ")}
}
