package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/ambience/internal/domain"
	"github.com/seu-repo/ambience/internal/ports"
)

type FulfillmentHandler struct {
	assistant ports.Assistant
	log       *zap.Logger
}

func NewFulfillmentHandler(assistant ports.Assistant, log *zap.Logger) *FulfillmentHandler {
	return &FulfillmentHandler{
		assistant: assistant,
		log:       log,
	}
}

// WebhookRequest is the NLU platform's fulfillment payload.
type WebhookRequest struct {
	Session     string      `json:"session"`
	QueryResult QueryResult `json:"queryResult"`
}

type QueryResult struct {
	QueryText  string                 `json:"queryText"`
	Intent     IntentRef              `json:"intent"`
	Parameters map[string]interface{} `json:"parameters"`
}

type IntentRef struct {
	DisplayName string `json:"displayName"`
}

// ToIntentRequest flattens the payload into the assistant's input.
func (r WebhookRequest) ToIntentRequest() domain.IntentRequest {
	return domain.IntentRequest{
		SessionID:  strings.TrimSpace(r.Session),
		Intent:     strings.TrimSpace(r.QueryResult.Intent.DisplayName),
		QueryText:  r.QueryResult.QueryText,
		Parameters: flattenParameters(r.QueryResult.Parameters),
	}
}

// flattenParameters keeps scalar slot values; list slots contribute their
// first scalar and structured values are ignored.
func flattenParameters(raw map[string]interface{}) domain.Parameters {
	params := make(domain.Parameters, len(raw))
	for name, v := range raw {
		if s, ok := scalar(v); ok {
			params[name] = s
			continue
		}
		if list, ok := v.([]interface{}); ok {
			for _, item := range list {
				if s, ok := scalar(item); ok && s != "" {
					params[name] = s
					break
				}
			}
		}
	}
	return params
}

func scalar(v interface{}) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64, bool:
		return fmt.Sprint(x), true
	default:
		return "", false
	}
}

// Fulfill handles one conversation turn
func (h *FulfillmentHandler) Fulfill(c *fiber.Ctx) error {
	var req WebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	resp, err := h.assistant.HandleTurn(c.UserContext(), req.ToIntentRequest())
	if err != nil {
		h.log.Warn("Turn aborted", zap.String("session_id", req.Session), zap.Error(err))
		return fiber.NewError(fiber.StatusServiceUnavailable, "request cancelled")
	}

	return c.JSON(resp)
}
