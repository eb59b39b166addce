// file: internals/helpers/dbtime/time_helper.go
package dbtime

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Locals opsional: request boleh membawa timezone sendiri (mis. diisi
// middleware dari header X-Timezone).
const (
	LocTimezone = "timezone" // string, misal "Europe/Paris"
	LocLocation = "tz_loc"   // *time.Location
)

const DefaultTimezone = "Europe/Paris"

// GetLocation mengambil *time.Location untuk request:
// 1) c.Locals("tz_loc") kalau sudah ada
// 2) c.Locals("timezone") (string) lalu LoadLocation
// 3) fallback ke tz (biasanya APP_TIMEZONE)
// 4) fallback terakhir: time.UTC
func GetLocation(c *fiber.Ctx, tz string) *time.Location {
	if c != nil {
		if v, ok := c.Locals(LocLocation).(*time.Location); ok && v != nil {
			return v
		}
		if s, ok := c.Locals(LocTimezone).(string); ok && strings.TrimSpace(s) != "" {
			if loc, err := time.LoadLocation(strings.TrimSpace(s)); err == nil {
				c.Locals(LocLocation, loc)
				return loc
			}
		}
	}

	if strings.TrimSpace(tz) == "" {
		tz = DefaultTimezone
	}
	if loc, err := time.LoadLocation(tz); err == nil {
		if c != nil {
			c.Locals(LocLocation, loc)
		}
		return loc
	}
	return time.UTC
}

// Now = jam sekarang di timezone request.
func Now(c *fiber.Ctx, tz string) time.Time {
	return time.Now().In(GetLocation(c, tz))
}

// In mengonversi waktu (biasanya UTC dari DB). Zero time dikembalikan apa adanya.
func In(c *fiber.Ctx, tz string, t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.In(GetLocation(c, tz))
}
