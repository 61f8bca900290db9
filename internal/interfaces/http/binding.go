package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
)

// Tamaño máximo de un adjunto (remisión, evidencia, acta firmada).
const maxAttachmentSize = 10 << 20

var errAttachmentTooLarge = errors.New("adjunto supera 10 MB")

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// bindOperation llena v desde JSON o, en multipart, desde el campo "payload"; el archivo va en "file".
func bindOperation(c *fiber.Ctx, v any) (*inventory.Attachment, error) {
	if !isMultipart(c) {
		return nil, c.BodyParser(v)
	}
	if err := json.Unmarshal([]byte(c.FormValue("payload")), v); err != nil {
		return nil, err
	}
	return formAttachment(c, "file")
}

// formAttachment devuelve nil si el campo no viene.
func formAttachment(c *fiber.Ctx, field string) (*inventory.Attachment, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]
	if fh.Size > maxAttachmentSize {
		return nil, errAttachmentTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	ct := fh.Header.Get(fiber.HeaderContentType)
	if ct == "" || ct == fiber.MIMEOctetStream {
		ct = http.DetectContentType(data)
	}
	return &inventory.Attachment{Filename: fh.Filename, ContentType: ct, Data: data}, nil
}
