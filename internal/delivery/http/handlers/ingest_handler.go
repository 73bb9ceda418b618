package handlers

import (
	"media-pipeline/internal/domain/dto"
	"media-pipeline/internal/usecases"
	"media-pipeline/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

type IngestHandler struct {
	ingestService usecases.IngestService
}

func NewIngestHandler(ingestService usecases.IngestService) *IngestHandler {
	return &IngestHandler{ingestService: ingestService}
}

// ImportExternal
//
// @Summary      Import External
// @Description  Starts an asynchronous copy of an http(s) or s3 source into the staging container
// @Tags         Ingest
// @Accept       json
// @Produce      json
// @Param        request  body      dto.ImportExternalRequest true "Source url and reference id"
// @Success      200      {object}  dto.IngestResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      500      {object}  dto.InternalErrorResponse
// @Security     FunctionKey
// @Router       /import-external [post]
func (h *IngestHandler) ImportExternal(c *fiber.Ctx) error {
	var req dto.ImportExternalRequest
	if err := parseBody(c, &req); err != nil {
		return errors.HandleError(c, err)
	}

	resp, err := h.ingestService.ImportExternal(c.UserContext(), &req)
	if err != nil {
		return errors.HandleError(c, err)
	}
	return c.JSON(resp)
}

// Upload
//
// @Summary      Direct Upload
// @Description  Stores an uploaded file in the staging container
// @Tags         Ingest
// @Accept       multipart/form-data
// @Produce      json
// @Param        file    formData  file   true  "Source file"
// @Param        id      formData  string false "Reference id used in the staging name"
// @Param        sha256  formData  string false "Expected sha256 of the file"
// @Success      200     {object}  dto.IngestResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      500     {object}  dto.InternalErrorResponse
// @Security     FunctionKey
// @Router       /ingest/upload [post]
func (h *IngestHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errors.HandleError(c, errors.ErrValidation("The form field `file` is required"))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return errors.HandleError(c, errors.ErrInternal(err))
	}
	defer f.Close()

	req := &dto.UploadRequest{
		ID:          c.FormValue("id"),
		Filename:    fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get(fiber.HeaderContentType),
		SHA256:      c.FormValue("sha256"),
	}
	resp, err := h.ingestService.Upload(c.UserContext(), req, f)
	if err != nil {
		return errors.HandleError(c, err)
	}
	return c.JSON(resp)
}
