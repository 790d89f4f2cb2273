package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBedrockClient struct {
	input *bedrockruntime.InvokeModelInput
	body  string
	err   error
}

func (f *fakeBedrockClient) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func testBedrockConfig() BedrockConfig {
	return BedrockConfig{
		ModelID:          "anthropic.claude-3-sonnet-20240229-v1:0",
		Region:           "us-east-1",
		AnthropicVersion: "bedrock-2023-05-31",
		Settings:         GenerationSettings{MaxTokens: 1024, Temperature: 0.3},
	}
}

func TestBedrockInvoker_RequestAndResponse(t *testing.T) {
	client := &fakeBedrockClient{body: `{"content":[{"type":"text","text":"{\"score\": 80}"}]}`}
	invoker := NewBedrockInvokerWithClient(client, testBedrockConfig())

	text, err := invoker.Invoke(context.Background(), "Evaluate this")

	require.NoError(t, err)
	assert.Equal(t, `{"score": 80}`, text)

	require.NotNil(t, client.input)
	assert.Equal(t, "anthropic.claude-3-sonnet-20240229-v1:0", aws.ToString(client.input.ModelId))
	assert.Equal(t, "application/json", aws.ToString(client.input.ContentType))
	assert.Equal(t, "application/json", aws.ToString(client.input.Accept))

	var body map[string]any
	require.NoError(t, json.Unmarshal(client.input.Body, &body))
	assert.Equal(t, "bedrock-2023-05-31", body["anthropic_version"])
	assert.Equal(t, float64(1024), body["max_tokens"])
	assert.InDelta(t, 0.3, body["temperature"], 1e-6)
	assert.Equal(t, []any{map[string]any{"role": "user", "content": "Evaluate this"}}, body["messages"])
}

func TestBedrockInvoker_MalformedEnvelope(t *testing.T) {
	for _, body := range []string{`not json`, `{"content": []}`} {
		invoker := NewBedrockInvokerWithClient(&fakeBedrockClient{body: body}, testBedrockConfig())

		_, err := invoker.Invoke(context.Background(), "prompt")

		assert.True(t, errors.Is(err, ErrInvocation), body)
	}
}

func TestBedrockInvoker_ServiceErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "throttling", err: &smithy.GenericAPIError{Code: "ThrottlingException"}, retryable: true},
		{name: "model timeout", err: &smithy.GenericAPIError{Code: "ModelTimeoutException"}, retryable: true},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDeniedException"}, retryable: false},
		{name: "validation", err: &smithy.GenericAPIError{Code: "ValidationException"}, retryable: false},
		{
			name: "http 503",
			err: &smithyhttp.ResponseError{
				Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusServiceUnavailable}},
				Err:      errors.New("unavailable"),
			},
			retryable: true,
		},
		{name: "transport", err: errors.New("dial tcp: connection refused"), retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoker := NewBedrockInvokerWithClient(&fakeBedrockClient{err: tt.err}, testBedrockConfig())

			_, err := invoker.Invoke(context.Background(), "prompt")

			var invErr *InvocationError
			require.True(t, errors.As(err, &invErr))
			assert.Equal(t, "bedrock", invErr.Provider)
			assert.Equal(t, tt.retryable, invErr.Retryable)
		})
	}
}

func TestBedrockInvoker_IntegrationSmoke(t *testing.T) {
	if os.Getenv("BEDROCK_INTEGRATION") == "" {
		t.Skip("BEDROCK_INTEGRATION not set")
	}
	cfg := testBedrockConfig()

	invoker, err := NewBedrockInvoker(context.Background(), cfg)
	require.NoError(t, err)

	text, err := invoker.Invoke(context.Background(), `Reply with {"score": 1} and nothing else.`)
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}
