package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"microlearn/internal/domain"
	"microlearn/internal/dto"
	"microlearn/internal/logger"
	"microlearn/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// ContentHandler turns uploads into learning bundles
type ContentHandler struct {
	content  service.ContentService
	maxBytes int64
}

// NewContentHandler creates a ContentHandler. maxUploadBytes caps each file.
func NewContentHandler(content service.ContentService, maxUploadBytes int64) *ContentHandler {
	return &ContentHandler{content: content, maxBytes: maxUploadBytes}
}

// Process godoc
// @Summary Generate a learning bundle
// @Description Accepts any combination of audio, image and text files plus a prompt. Reuses session_id when it exists, otherwise creates a session.
// @Tags content
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file false "Lecture audio (wav, flac, ogg, webm, mp3)"
// @Param image formData file false "Slide or diagram image"
// @Param text formData file false "Plain-text notes"
// @Param prompt formData string false "Free-form prompt"
// @Param session_id formData string false "Existing session to attach"
// @Success 200 {object} dto.ProcessResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /process [post]
func (h *ContentHandler) Process(c *fiber.Ctx) error {
	in := service.ContentInput{
		Prompt:    c.FormValue("prompt"),
		SessionID: c.FormValue("session_id"),
	}

	var err error
	if in.Audio, in.AudioMIME, err = h.readUpload(c, "audio"); err != nil {
		return err
	}
	if in.Image, in.ImageMIME, err = h.readUpload(c, "image"); err != nil {
		return err
	}
	if in.Text, _, err = h.readUpload(c, "text"); err != nil {
		return err
	}
	if len(in.Text) == 0 {
		in.Text = []byte(c.FormValue("text"))
	}

	res, err := h.content.Process(c.UserContext(), in)
	if err != nil {
		return err
	}

	logger.Get().Info("Learning bundle generated",
		zap.String("session_id", res.Session.ID),
		zap.String("bundle_id", res.Bundle.ID),
		zap.Int("questions", len(res.Bundle.Questions)),
		zap.Int("flashcards", len(res.Bundle.Flashcards)),
		zap.Bool("cached", res.Cached),
	)

	return c.JSON(dto.ProcessResponse{
		SessionID:   res.Session.ID,
		Bundle:      res.Bundle,
		InputAudio:  res.Transcript,
		Caption:     res.Caption,
		InputText:   res.InputText,
		InputPrompt: res.InputPrompt,
		Cached:      res.Cached,
		Progress:    res.Session,
	})
}

// readUpload returns nil data when the field is absent.
func (h *ContentHandler) readUpload(c *fiber.Ctx, field string) ([]byte, string, error) {
	if !isMultipart(c) {
		return nil, "", nil
	}
	fh, err := c.FormFile(field)
	if errors.Is(err, fasthttp.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", invalidBody(err)
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		return nil, "", domain.NewOutOfRangeError(field+" size", int(fh.Size), 0, int(h.maxBytes))
	}

	data, err := readFileHeader(fh)
	if err != nil {
		return nil, "", domain.NewValidationError(fmt.Sprintf("could not read %s upload", field)).WithContext("field", field)
	}
	return data, uploadMIME(fh), nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func uploadMIME(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get(fiber.HeaderContentType); ct != "" && ct != fiber.MIMEOctetStream {
		return ct
	}
	return mime.TypeByExtension(filepath.Ext(fh.Filename))
}
