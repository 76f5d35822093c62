package handler

import (
	"log/slog"
	"net/http"

	"spurt/internal/delivery/api/response"
	"spurt/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// formFileField is the multipart field that carries the uploaded image.
const formFileField = "file"

// PhotoHandlerParams holds dependencies for PhotoHandler, injected by Fx.
type PhotoHandlerParams struct {
	fx.In

	PhotoUC usecase.PhotoUsecase
	Logger  *slog.Logger
}

// PhotoHandler serves photo uploads and main photo selection
type PhotoHandler struct {
	photoUC usecase.PhotoUsecase
	logger  *slog.Logger
}

// NewPhotoHandler is the constructor for PhotoHandler
func NewPhotoHandler(params PhotoHandlerParams) *PhotoHandler {
	return &PhotoHandler{
		photoUC: params.PhotoUC,
		logger:  params.Logger,
	}
}

// SetMainRequest represents the request body for changing the main photo
type SetMainRequest struct {
	NewMainID     int64 `json:"newMainId" validate:"required,gt=0"`
	CurrentMainID int64 `json:"currentMainId" validate:"gte=0"`
}

// GetMainPhoto handles retrieving the main photo of an event; data is null when none is set
func (h *PhotoHandler) GetMainPhoto(c echo.Context) error {
	eventID, err := parseID(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid event ID")
	}

	photo, err := h.photoUC.GetMainPhoto(c.Request().Context(), eventID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, photo)
}

// Upload handles a multipart image upload for an event
func (h *PhotoHandler) Upload(c echo.Context) error {
	eventID, err := parseID(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid event ID")
	}

	fileHeader, err := c.FormFile(formFileField)
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Multipart field 'file' is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Uploaded file cannot be read")
	}
	defer file.Close()

	photo, err := h.photoUC.Upload(c.Request().Context(), &usecase.UploadPhotoInput{
		EventID:  eventID,
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  file,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, photo)
}

// SetMain handles changing the main photo of an event
func (h *PhotoHandler) SetMain(c echo.Context) error {
	var req SetMainRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid set main input")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	if err := h.photoUC.SetMain(c.Request().Context(), req.NewMainID, req.CurrentMainID); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Main photo updated"})
}

// Delete handles removing a photo
func (h *PhotoHandler) Delete(c echo.Context) error {
	photoID, err := parseID(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid photo ID")
	}

	if err := h.photoUC.Delete(c.Request().Context(), photoID); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Photo deleted"})
}
