package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"

	"github.com/logtide/logtide/internal/event"
	"github.com/logtide/logtide/internal/sink"
)

// IngestResponse reports how many events were accepted
type IngestResponse struct {
	Accepted int `json:"accepted"`
}

// Ingest handles event submission. The body is either a single JSON event
// object or an array of them; all events are validated before any is
// submitted so a bad element rejects the whole request.
func (h *Handler) Ingest(c *fiber.Ctx) error {
	body := c.Body()
	if !gjson.ValidBytes(body) {
		return badRequest(c, "Request body is not valid JSON")
	}

	parsed := gjson.ParseBytes(body)

	var events []event.Event
	if parsed.IsArray() {
		for _, element := range parsed.Array() {
			ev, err := event.ParseJSON([]byte(element.Raw))
			if err != nil {
				return badRequest(c, err.Error())
			}
			events = append(events, ev)
		}
	} else {
		ev, err := event.ParseJSON(body)
		if err != nil {
			return badRequest(c, err.Error())
		}
		events = append(events, ev)
	}

	if len(events) == 0 {
		return badRequest(c, "Request contains no events")
	}

	for _, ev := range events {
		if err := h.sink.Submit(ev); err != nil {
			if errors.Is(err, sink.ErrClosed) {
				return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
					Error: ErrorDetail{
						Code:    "SHUTTING_DOWN",
						Message: "Sink is shutting down",
					},
				})
			}
			h.logger.Error("Failed to submit event", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Error: ErrorDetail{
					Code:    "SUBMIT_FAILED",
					Message: err.Error(),
				},
			})
		}
	}

	return c.Status(fiber.StatusAccepted).JSON(IngestResponse{Accepted: len(events)})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: msg,
		},
	})
}
