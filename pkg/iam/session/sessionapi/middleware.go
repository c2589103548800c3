package sessionapi

import (
	"strings"

	"github.com/Abraxas-365/resumelens/pkg/iam/session"
	"github.com/gofiber/fiber/v2"
)

const (
	localsSession = "session"
	localsManager = "session_manager"
)

// Middleware authenticates the bearer credential of each request and
// installs a request-scoped session manager. When roles are given the
// session must carry one of them.
func Middleware(revoker session.Revoker, roles ...session.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing authorization header")
		}

		// "Bearer <token>" or the backend's "Token <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || (parts[0] != "Bearer" && parts[0] != "Token") {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization format")
		}

		var opts []session.Option
		if revoker != nil {
			opts = append(opts, session.WithRevoker(revoker))
		}
		manager := session.NewManager(opts...)

		s, err := manager.Login(c.UserContext(), parts[1])
		if err != nil {
			return err
		}
		if !s.Allows(roles...) {
			return session.ErrRoleNotPermitted().WithDetail("role", s.Identity.Role)
		}

		c.Locals(localsSession, s)
		c.Locals(localsManager, manager)
		return c.Next()
	}
}

func GetSession(c *fiber.Ctx) (*session.Session, bool) {
	s, ok := c.Locals(localsSession).(*session.Session)
	return s, ok
}

func GetManager(c *fiber.Ctx) (*session.Manager, bool) {
	m, ok := c.Locals(localsManager).(*session.Manager)
	return m, ok
}
