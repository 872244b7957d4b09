package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/Brandon689/reqauth/auth"
	"github.com/Brandon689/reqauth/ginauth"
	"github.com/gin-gonic/gin"
)

// Server exposes the authentication routes. A nil authenticator disables
// authentication: every route is public and the session routes are not
// mounted.
type Server struct {
	auth  auth.Authenticator
	guard *auth.Guard
	logf  func(format string, args ...any)

	users  auth.PasswordUpdater
	hasher auth.PasswordHasher
}

// New builds a Server guarding every /api/v1 route except excluded.
func New(a auth.Authenticator, excluded []string, logf func(string, ...any), opts ...auth.GuardOption) *Server {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	s := &Server{auth: a, logf: logf}
	if a != nil {
		opts = append(opts, auth.WithGuardLogf(logf))
		s.guard = auth.NewGuard(a, excluded, opts...)
	}
	return s
}

// WithPasswordChange mounts PUT /api/v1/users/me/password, which verifies
// the current password with hasher, stores the new one in users and revokes
// the caller's sessions. It has no effect without an authenticator.
func (s *Server) WithPasswordChange(users auth.PasswordUpdater, hasher auth.PasswordHasher) *Server {
	s.users = users
	s.hasher = hasher
	return s
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api/v1")
	if s.guard != nil {
		api.Use(ginauth.Require(s.guard))
	}

	api.GET("/status", s.status)
	api.GET("/unauthorized", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	})
	api.GET("/forbidden", func(c *gin.Context) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	})
	api.GET("/users/me", s.me)

	sm, hasSessions := s.auth.(auth.SessionManager)
	if hasSessions {
		api.POST("/auth_session/login", s.login(sm))
		api.DELETE("/auth_session/logout", s.logout(sm))
	}
	if s.guard != nil && s.users != nil && s.hasher != nil {
		api.PUT("/users/me/password", s.changePassword(sm))
	}
	return router
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (s *Server) me(c *gin.Context) {
	p, ok := ginauth.Principal(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.JSON(http.StatusOK, principalJSON(p))
}

func (s *Server) login(sm auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.SameOrigin(c.Request) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		email := c.PostForm("email")
		password := c.PostForm("password")
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email missing"})
			return
		}
		if password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password missing"})
			return
		}

		p, token, ok, err := sm.Login(c.Request.Context(), email, password)
		if err != nil {
			s.logf("login email=%s: %v", email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if !ok {
			// Same answer for unknown user and wrong password.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		sm.SetCookie(c.Writer, token)
		c.JSON(http.StatusOK, principalJSON(p))
	}
}

func (s *Server) logout(sm auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.SameOrigin(c.Request) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		ok, err := sm.DestroyRequestSession(c.Request)
		if err != nil {
			s.logf("logout: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		sm.ClearCookie(c.Writer)
		c.JSON(http.StatusOK, gin.H{})
	}
}

// changePassword answers 403 for a wrong current password and 400 for a
// new one the user store rejects. sm is nil for header authenticators.
func (s *Server) changePassword(sm auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.SameOrigin(c.Request) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		p, ok := ginauth.Principal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		current := c.PostForm("current_password")
		next := c.PostForm("new_password")
		if current == "" || next == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "current_password and new_password are required"})
			return
		}
		if !s.hasher.Verify(current, p.PasswordHash) {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid credentials"})
			return
		}

		n, err := auth.ChangePassword(c.Request.Context(), s.users, sm, p.SubjectID, next)
		if errors.Is(err, auth.ErrInvalidArgument) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			s.logf("change password subject=%s: %v", p.SubjectID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if sm != nil {
			sm.ClearCookie(c.Writer)
		}
		c.JSON(http.StatusOK, gin.H{"revoked_sessions": n})
	}
}

func principalJSON(p auth.Principal) gin.H {
	return gin.H{
		"id":         p.SubjectID,
		"email":      p.Identifier,
		"created_at": p.CreatedAt.UTC().Format(time.RFC3339),
	}
}
