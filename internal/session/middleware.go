package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// LocalsKey is the Fiber locals slot holding the request's *Session.
const LocalsKey = "session"

// FromCtx returns the session attached to the request, or nil when the
// middleware is not installed.
func FromCtx(c *fiber.Ctx) *Session {
	if s, ok := c.Locals(LocalsKey).(*Session); ok {
		return s
	}
	return nil
}

// Middleware resolves the session cookie on the way in and persists dirty
// sessions on the way out. Requests without a valid cookie get a lazily
// created session that is only written to Redis if a handler mutates it.
func (m *Manager) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sess *Session
		if id := c.Cookies(CookieName); id != "" {
			loaded, err := m.Load(c.UserContext(), id)
			if err == nil && loaded != nil {
				sess = loaded
			}
		}
		if sess == nil {
			sess = m.New()
		}

		c.Locals(LocalsKey, sess)
		if sess.IsAuthenticated() {
			c.Locals("userID", sess.Data.UserID)
		}

		err := c.Next()

		if sess.dirty {
			if sess.destroyed {
				_ = m.Destroy(c.UserContext(), sess.id)
				c.Cookie(&fiber.Cookie{
					Name:     CookieName,
					Value:    "",
					Expires:  time.Now().Add(-time.Hour),
					HTTPOnly: true,
					SameSite: fiber.CookieSameSiteLaxMode,
				})
				return err
			}
			if persistErr := m.Persist(c.UserContext(), sess); persistErr == nil {
				maxAge := int(BaseTTL.Seconds())
				if sess.ttl > 0 {
					maxAge = int(sess.ttl.Seconds())
				}
				c.Cookie(&fiber.Cookie{
					Name:     CookieName,
					Value:    sess.id,
					MaxAge:   maxAge,
					HTTPOnly: true,
					SameSite: fiber.CookieSameSiteLaxMode,
				})
			}
		}

		return err
	}
}
