package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"

	"parley/model"
)

// User-facing messages for failed requests. These render directly in the
// transcript, so they are phrased for end users, not operators.
const (
	msgInvalidKey = "Your API key is invalid, please check your preferences."
	msgRateLimit  = "Rate limit exceeded. Please try again later."
	msgQuota      = "You exceeded your current quota, please check your plan and billing details."
	msgConnection = "I'm having trouble connecting to the API, please check your internet connection."
	msgTimeout    = "Request timed out. Please try again."
	msgNoModel    = "No model selected, you can choose one in preferences"

	msgOllamaConnection = "Cannot connect to Ollama. Make sure Ollama is running (ollama serve)."
	msgOllamaTimeout    = "Request timed out. The model might be loading or processing."
)

func notConfiguredResult(providerName string) model.Result {
	return model.ErrorResult(model.KindNotConfigured,
		fmt.Sprintf("Please configure your %s API key in preferences.", providerName))
}

func noModelResult() model.Result {
	return model.ErrorResult(model.KindNotConfigured, msgNoModel)
}

func ollamaModelNotFoundResult(modelName string) model.Result {
	return model.ErrorResult(model.KindNotFound,
		fmt.Sprintf("Model '%s' not found. Please pull it first with: ollama pull %s", modelName, modelName))
}

// classifyStatus maps an HTTP status and response detail onto a result.
// Quota exhaustion arrives as 429 with "quota" in the body, so it is
// distinguished from plain rate limiting by message inspection.
func classifyStatus(status int, detail string) model.Result {
	switch status {
	case 401, 403:
		return model.ErrorResult(model.KindAuthFailure, msgInvalidKey)
	case 429:
		if strings.Contains(strings.ToLower(detail), "quota") {
			return model.ErrorResult(model.KindQuotaExceeded, msgQuota)
		}
		return model.ErrorResult(model.KindRateLimited, msgRateLimit)
	case 404:
		return model.ErrorResult(model.KindNotFound, fmt.Sprintf("Error: %d - %s", status, detail))
	default:
		return model.ErrorResult(model.KindHTTPError, fmt.Sprintf("Error: %d - %s", status, detail))
	}
}

// classifyTransportError handles failures that never produced an HTTP
// status: cancellation, timeouts, and network errors.
func classifyTransportError(err error) model.Result {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.ErrorResult(model.KindTimeout, msgTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.ErrorResult(model.KindTimeout, msgTimeout)
	}
	return model.ErrorResult(model.KindConnectionFailure, msgConnection)
}

// classifyOpenAIError maps errors from the OpenAI SDK (used by every
// OpenAI-compatible backend) onto results.
func classifyOpenAIError(err error) model.Result {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode, apiErr.Message)
	}
	return classifyTransportError(err)
}

// classifyAnthropicError maps errors from the Anthropic SDK onto results.
func classifyAnthropicError(err error) model.Result {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode, err.Error())
	}
	return classifyTransportError(err)
}

// classifyOllamaError maps Ollama client errors onto results with
// Ollama-specific guidance.
func classifyOllamaError(err error, modelName string) model.Result {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == 404 {
			return ollamaModelNotFoundResult(modelName)
		}
		return classifyStatus(statusErr.StatusCode, statusErr.ErrorMessage)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return model.ErrorResult(model.KindTimeout, msgOllamaTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.ErrorResult(model.KindTimeout, msgOllamaTimeout)
	}
	return model.ErrorResult(model.KindConnectionFailure, msgOllamaConnection)
}
