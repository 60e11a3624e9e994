package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Spunkeroo/scam-stream/pkg/hash"
)

const (
	// ClientIDHeader lets API clients supply their own stable id.
	ClientIDHeader = "X-Client-ID"
	// ClientCookie carries the id issued to browsers without one.
	ClientCookie = "ss_client"

	MaxClientIDLen = 64

	clientCookieMaxAge = 365 * 24 * time.Hour
	clientLocalsKey    = "clientID"
)

var clientIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateClientID checks a client-supplied id.
func ValidateClientID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "client id is required"
	}
	if len(id) > MaxClientIDLen {
		return "", "client id must be at most 64 characters"
	}
	if !clientIDRe.MatchString(id) {
		return "", "client id contains invalid characters"
	}
	return id, ""
}

// NewClientIdentity resolves the caller's client id from the X-Client-ID
// header or the ss_client cookie, issuing a new cookie when neither is
// present. Handlers read the hashed id with ClientID.
func NewClientIdentity() fiber.Handler {
	return func(c fiber.Ctx) error {
		var raw string
		if header := c.Get(ClientIDHeader); header != "" {
			id, errMsg := ValidateClientID(header)
			if errMsg != "" {
				return ErrorResponse(c, fiber.StatusBadRequest, "INVALID_CLIENT_ID", errMsg)
			}
			raw = id
		}
		if raw == "" {
			raw, _ = ValidateClientID(c.Cookies(ClientCookie))
		}
		if raw == "" {
			raw = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     ClientCookie,
				Value:    raw,
				Path:     "/",
				MaxAge:   int(clientCookieMaxAge.Seconds()),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		c.Locals(clientLocalsKey, hash.HashClientID(raw))
		return c.Next()
	}
}

// ClientID returns the hashed client id set by NewClientIdentity, or "" when
// the middleware did not run.
func ClientID(c fiber.Ctx) string {
	id, _ := c.Locals(clientLocalsKey).(string)
	return id
}
