package handlers

import (
	stdErrors "errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// multipart headers and the garment field on top of the photo itself
const formOverhead = 1 << 20

type AssistantHandler struct {
	chatService  service.ChatService
	tryOnService service.TryOnService
	maxPhotoSize int64
	validator    *validator.Validate
}

func NewAssistantHandler(chatService service.ChatService, tryOnService service.TryOnService, maxPhotoSize int64) *AssistantHandler {
	return &AssistantHandler{
		chatService:  chatService,
		tryOnService: tryOnService,
		maxPhotoSize: maxPhotoSize,
		validator:    validator.New(),
	}
}

// Chat godoc
//
//	@Summary		Ask the shopping assistant
//	@Description	Sends the message with the recent conversation to the language model and returns its reply.
//	@Tags			Assistant
//	@Accept			json
//	@Produce		json
//	@Param			chat	body		models.ChatRequest		true	"Message and history"
//	@Success		200		{object}	models.ChatResponse		"Assistant reply"
//	@Failure		429		{object}	response.ErrorResponse	"Too many requests"
//	@Failure		502		{object}	response.ErrorResponse	"Model unavailable"
//	@Failure		504		{object}	response.ErrorResponse	"Model timed out"
//	@Router			/chat [post]
func (h *AssistantHandler) Chat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.ChatRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid chat input")
			return
		}

		reply, err := h.chatService.Reply(r.Context(), middleware.ClientKey(r), &req)
		if err != nil {
			logger.Warn("Chat reply failed", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, reply)
	}
}

// TryOn godoc
//
//	@Summary		Generate a virtual try-on image
//	@Description	Uploads a shopper photo with a garment image URL and waits for the generated result.
//	@Tags			Assistant
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			userPhoto		formData	file					true	"Shopper photo (JPEG, PNG or WebP)"
//	@Param			garmentImage	formData	string					true	"Garment image URL"
//	@Success		200				{object}	models.TryOnResponse	"Generated image"
//	@Failure		400				{object}	response.ErrorResponse	"Invalid photo"
//	@Failure		429				{object}	response.ErrorResponse	"Too many requests"
//	@Failure		504				{object}	response.ErrorResponse	"Generation timed out"
//	@Router			/try-on [post]
func (h *AssistantHandler) TryOn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		r.Body = http.MaxBytesReader(w, r.Body, h.maxPhotoSize+formOverhead)

		if err := r.ParseMultipartForm(h.maxPhotoSize + formOverhead); err != nil {
			logger.Warn("Invalid try-on form", slog.String("error", err.Error()))

			var tooLarge *http.MaxBytesError
			if stdErrors.As(err, &tooLarge) {
				response.Error(w, errors.AddValidationError("userPhoto", "is too large"))
				return
			}

			response.Error(w, errors.BadRequestError("Invalid multipart form").WithError(err))
			return
		}

		file, _, err := r.FormFile("userPhoto")
		if err != nil {
			response.Error(w, errors.AddValidationError("userPhoto", "is required"))
			return
		}
		defer file.Close()

		// one byte past the limit is enough for the size check downstream
		photo, err := io.ReadAll(io.LimitReader(file, h.maxPhotoSize+1))
		if err != nil {
			response.Error(w, errors.BadRequestError("Failed to read photo").WithError(err))
			return
		}

		req := models.TryOnRequest{
			UserPhoto:       photo,
			GarmentImageURL: r.FormValue("garmentImage"),
		}

		if err := utils.ValidateStruct(h.validator, &req); err != nil {
			var validationErrs validator.ValidationErrors
			if stdErrors.As(err, &validationErrs) {
				response.ValidationError(w, validationErrs)
				return
			}

			response.Error(w, errors.ValidationError("Invalid input data").WithError(err))
			return
		}

		result, err := h.tryOnService.Generate(r.Context(), middleware.ClientKey(r), &req)
		if err != nil {
			logger.Warn("Try-on failed", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, result)
	}
}
