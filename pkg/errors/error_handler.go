package errors

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HandleError writes the response for a failed HTTP handler. Validation and
// known not-found cases get an {error} body; anything else is reported with
// its raw text as a diagnostic.
func HandleError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	var pe *PipelineError
	if stderrors.As(err, &pe) {
		switch pe.Code {
		case CodeValidation:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": pe.Message})
		case CodeAssetNotFound:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": pe.Message})
		case CodeJobNotFound:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": pe.Message})
		}
		if pe.Err != nil {
			err = pe.Err
		}
	}

	zap.L().Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"Error": err.Error()})
}
