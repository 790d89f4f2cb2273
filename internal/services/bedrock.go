package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// BedrockRuntimeAPI is the slice of the Bedrock runtime client the invoker uses.
type BedrockRuntimeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type BedrockConfig struct {
	ModelID          string
	Region           string
	AnthropicVersion string
	AccessKey        string
	SecretKey        string
	Settings         GenerationSettings
}

type bedrockInvoker struct {
	client           BedrockRuntimeAPI
	modelID          string
	anthropicVersion string
	settings         GenerationSettings
}

type bedrockMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type bedrockRequest struct {
	Messages         []bedrockMessage `json:"messages"`
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	Temperature      float32          `json:"temperature"`
}

type bedrockResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewBedrockInvoker loads AWS configuration for the configured region. Static
// credentials are used when both keys are set, otherwise the default chain.
func NewBedrockInvoker(ctx context.Context, cfg BedrockConfig) (ModelInvoker, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return NewBedrockInvokerWithClient(bedrockruntime.NewFromConfig(awsCfg), cfg), nil
}

func NewBedrockInvokerWithClient(client BedrockRuntimeAPI, cfg BedrockConfig) ModelInvoker {
	return &bedrockInvoker{
		client:           client,
		modelID:          cfg.ModelID,
		anthropicVersion: cfg.AnthropicVersion,
		settings:         cfg.Settings,
	}
}

func (b *bedrockInvoker) Invoke(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(bedrockRequest{
		Messages:         []bedrockMessage{{Role: "user", Content: prompt}},
		AnthropicVersion: b.anthropicVersion,
		MaxTokens:        b.settings.MaxTokens,
		Temperature:      b.settings.Temperature,
	})
	if err != nil {
		return "", &InvocationError{Provider: "bedrock", Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", &InvocationError{Provider: "bedrock", Retryable: isRetryableAWSError(err), Err: err}
	}

	var resp bedrockResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", &InvocationError{Provider: "bedrock", Err: fmt.Errorf("malformed response envelope: %w", err)}
	}
	if len(resp.Content) == 0 {
		return "", &InvocationError{Provider: "bedrock", Err: fmt.Errorf("malformed response envelope: empty content")}
	}

	return resp.Content[0].Text, nil
}

func isRetryableAWSError(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "ServiceUnavailableException", "ModelNotReadyException", "InternalServerException", "ModelTimeoutException":
			return true
		}
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		code := respErr.HTTPStatusCode()
		return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
	}

	return false
}
