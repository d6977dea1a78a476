// Package mockapi is a development stand-in for the storefront backend. It
// implements the REST contract the client consumes, including the response
// shape quirks of the real service (enveloped replies, ids nested at
// data.data.id, favorite lists wrapped under data.items), so the client can
// be exercised end to end without network access to production.
package mockapi

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"storefront-client/internal/config"
)

type Server struct {
	echo      *echo.Echo
	db        *gorm.DB
	log       *slog.Logger
	jwtSecret string
}

func NewServer(cfg *config.MockAPI, db *gorm.DB, log *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:      e,
		db:        db,
		log:       log,
		jwtSecret: cfg.JWTSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- auth --------
	auth := api.Group("/auth")
	auth.POST("/login", s.handleLogin)
	auth.POST("/register", s.handleRegister)
	auth.POST("/verify", s.handleVerify)
	auth.POST("/reset-password/send-otp", s.handleSendResetOTP)
	auth.POST("/reset-password/verify-otp", s.handleVerifyResetOTP)
	auth.POST("/reset-password/set-new-password", s.handleSetNewPassword)

	authed := auth.Group("", s.authMiddleware())
	authed.POST("/logout", s.handleLogout)
	authed.GET("/profile", s.handleProfile)
	authed.POST("/edit-profile", s.handleEditProfile)
	authed.POST("/change-password", s.handleChangePassword)
	authed.POST("/delete-account", s.handleDeleteAccount)

	// -------- storefront --------
	shop := api.Group("", s.authMiddleware())
	shop.GET("/addresses", s.handleAddresses)
	shop.POST("/orders", s.handleCreateOrder)
	shop.GET("/orders", s.handleListOrders)
	shop.GET("/orders/:id", s.handleGetOrder)
	shop.POST("/orders/:id/cancel", s.handleCancelOrder)
	shop.GET("/favorite-list", s.handleFavoriteList)
	shop.POST("/favorite/:id/toggle", s.handleToggleFavorite)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}

// ok and fail render the uniform response envelope.
func ok(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]any{
		"success": false,
		"message": message,
	})
}
