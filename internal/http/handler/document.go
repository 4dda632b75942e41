package handler

import (
	"io"
	"math"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"meetapi/internal/http/middleware"
	"meetapi/internal/model"
	"meetapi/internal/service"
)

// registerDocumentRoutes attaches the attachment endpoints. The router is
// expected to require authentication already.
func registerDocumentRoutes(r fiber.Router, docSvc service.DocumentService) {
	// Upload document endpoint (multipart/form-data, field name: file)
	r.Post("/meetings/:id/documents", func(c *fiber.Ctx) error {
		meetingID := c.Params("id")
		if _, err := uuid.Parse(meetingID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		in, err := readUpload(fh)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}

		doc, err := docSvc.Upload(c.UserContext(), meetingID, middleware.UserID(c), *in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	})

	r.Get("/meetings/:id/documents", func(c *fiber.Ctx) error {
		meetingID := c.Params("id")
		if _, err := uuid.Parse(meetingID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		docs, err := docSvc.List(c.UserContext(), meetingID, middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		if docs == nil {
			docs = []model.Document{}
		}
		return c.JSON(fiber.Map{"items": docs})
	})

	r.Get("/documents/:id/download", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		res, err := docSvc.Download(c.UserContext(), id, middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, res.ContentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+res.OriginalFileName+`"`)

		// fasthttp closes the stream once the response is written. The sized
		// variant needs an int, so fall back to chunked transfer when the
		// size is unknown or would not fit one.
		if res.Size > 0 && res.Size <= math.MaxInt {
			return c.SendStream(res.Body, int(res.Size))
		}
		return c.SendStream(res.Body)
	})

	r.Delete("/documents/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if err := docSvc.Delete(c.UserContext(), id, middleware.UserID(c)); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// readUpload buffers a multipart file into an UploadInput.
func readUpload(fh *multipart.FileHeader) (*service.UploadInput, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &service.UploadInput{
		FileName:    fh.Filename,
		ContentType: ct,
		Size:        fh.Size,
		Content:     content,
	}, nil
}
