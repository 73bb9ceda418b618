package handlers

import (
	"encoding/json"

	"media-pipeline/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

// parseBody decodes a JSON body regardless of Content-Type. An empty body
// leaves dst untouched so the usecase reports the missing fields.
func parseBody(c *fiber.Ctx, dst any) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.ErrValidation("Invalid JSON body: " + err.Error())
	}
	return nil
}
