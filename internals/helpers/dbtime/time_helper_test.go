package dbtime

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func TestGetLocation(t *testing.T) {
	assert.Equal(t, time.UTC, GetLocation(nil, "Not/AZone"))

	loc := GetLocation(nil, "")
	assert.Equal(t, DefaultTimezone, loc.String())

	app := fiber.New()
	c := app.AcquireCtx(&fasthttp.RequestCtx{})
	defer app.ReleaseCtx(c)

	c.Locals(LocTimezone, "America/Montreal")
	assert.Equal(t, "America/Montreal", GetLocation(c, "Europe/Paris").String())
	// cached
	assert.NotNil(t, c.Locals(LocLocation))
}

func TestIn(t *testing.T) {
	assert.True(t, In(nil, "Europe/Paris", time.Time{}).IsZero())
	ts := time.Date(2025, 8, 31, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, 1, In(nil, "Europe/Paris", ts).Day())
}
