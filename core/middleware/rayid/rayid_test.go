package rayid_test

import (
	"net/http/httptest"
	"testing"

	"catalog-sync/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRayID(t *testing.T) {
	app := fiber.New()
	app.Use(rayid.New())

	var seen string
	app.Get("/ping", func(c *fiber.Ctx) error {
		seen, _ = c.Locals(rayid.LocalsKey).(string)
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)

	header := resp.Header.Get(rayid.HeaderName)
	assert.NotEmpty(t, header)
	assert.Equal(t, seen, header)

	_, err = uuid.Parse(header)
	assert.NoError(t, err, "ray id must be a valid uuid")
}
