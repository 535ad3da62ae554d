package server

import (
	"embed"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/godocs-mcp/godocs-mcp/internal/query"
)

//go:embed assets/index.html assets/std.js
var assets embed.FS

// AppOptions controls how the view application is assembled.
type AppOptions struct {
	Logger  *logrus.Logger
	Surface *query.Surface
}

const contextKeyRequestID = "_godocs_request_id"

// NotFoundBody 是未知路径的响应正文。
const NotFoundBody = "File not found"

// NewApp builds the Fiber application that serves the documentation viewer.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Surface == nil {
		return nil, errors.New("query surface is required")
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		ErrorHandler:  errorHandler(opts.Logger),
	})

	app.Use(recover.New())
	app.Use(requestIDMiddleware())

	app.Get("/", serveAsset("assets/index.html", fiber.MIMETextHTMLCharsetUTF8))
	app.Get("/index.html", serveAsset("assets/index.html", fiber.MIMETextHTMLCharsetUTF8))
	app.Get("/std.js", serveAsset("assets/std.js", fiber.MIMETextJavaScriptCharsetUTF8))
	app.Get("/api/search", searchHandler(opts.Surface))

	return app, nil
}

// requestIDMiddleware 为每个请求生成 ID 并写入响应头。
func requestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

func serveAsset(name, contentType string) fiber.Handler {
	return func(c fiber.Ctx) error {
		data, err := assets.ReadFile(name)
		if err != nil {
			return fiber.ErrNotFound
		}
		c.Set(fiber.HeaderContentType, contentType)
		return c.Send(data)
	}
}

// searchHandler 供页面脚本调用：GET /api/search?q=fmt&limit=10。
func searchHandler(surface *query.Surface) fiber.Handler {
	return func(c fiber.Ctx) error {
		q := c.Query("q")
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_limit"})
			}
			limit = parsed
		}
		return c.JSON(fiber.Map{
			"query":   q,
			"results": surface.SearchStdLib(q, limit),
		})
	}
}

func errorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code == fiber.StatusNotFound {
			c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
			return c.Status(code).SendString(NotFoundBody)
		}
		logger.WithFields(logrus.Fields{
			"action":     "view_request",
			"path":       c.Path(),
			"status":     code,
			"request_id": RequestID(c),
		}).WithError(err).Warn("view_request_failed")
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}
