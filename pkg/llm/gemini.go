package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GeminiConfig 是 Gemini 客户端的构造参数。
type GeminiConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Generation *GenerationParams
}

type geminiClient struct {
	client *genai.Client
	gen    *GenerationParams
}

// NewGeminiClient 创建基于 google.golang.org/genai 的客户端。凭证缺失时直接返回错误。
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &geminiClient{client: client, gen: cfg.Generation}, nil
}

func (c *geminiClient) Generate(ctx context.Context, req Request) (string, error) {
	contents, err := toGenaiContents(req.Contents)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, contents, c.buildConfig(req))
	if err != nil {
		return "", classify(ctx, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", modelError(0, errors.New("response has no candidates"))
	}
	return resp.Text(), nil
}

func (c *geminiClient) buildConfig(req Request) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.ResponseMIMEType != "" {
		gc.ResponseMIMEType = req.ResponseMIMEType
	}
	if c.gen != nil {
		if c.gen.Temperature != nil {
			gc.Temperature = genai.Ptr(float32(*c.gen.Temperature))
		}
		if c.gen.TopP != nil {
			gc.TopP = genai.Ptr(float32(*c.gen.TopP))
		}
		if c.gen.MaxTokens != nil {
			gc.MaxOutputTokens = int32(*c.gen.MaxTokens)
		}
	}
	return gc
}

func toGenaiContents(in []Content) ([]*genai.Content, error) {
	out := make([]*genai.Content, 0, len(in))
	for _, c := range in {
		parts := make([]*genai.Part, 0, len(c.Parts))
		for _, p := range c.Parts {
			if p.IsInline() {
				raw, err := base64.StdEncoding.DecodeString(p.Data)
				if err != nil {
					return nil, fmt.Errorf("invalid base64 payload for %s part: %w", p.MIMEType, err)
				}
				parts = append(parts, genai.NewPartFromBytes(raw, p.MIMEType))
				continue
			}
			parts = append(parts, genai.NewPartFromText(p.Text))
		}
		role := genai.RoleUser
		if c.Role == RoleModel {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromParts(parts, genai.Role(role)))
	}
	return out, nil
}

// classify 把 SDK 错误映射到 ErrTransport / ErrModel。
func classify(ctx context.Context, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return modelError(apiErr.Code, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return modelError(apiErrPtr.Code, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return transportError(fmt.Errorf("%w: %v", ctxErr, err))
	}
	return transportError(err)
}
