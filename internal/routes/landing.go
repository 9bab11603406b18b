package routes

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
)

//go:embed landing.html
var landingHTML string

// landingPage serves the static HTML landing page
func landingPage(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(landingHTML)
}

// apiStatus returns the API welcome message
func apiStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Welcome to the Catalog API Demo",
	})
}
