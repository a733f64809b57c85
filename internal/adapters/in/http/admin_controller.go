package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cosmicjs/appointment-scheduler/internal/config"
	"github.com/cosmicjs/appointment-scheduler/internal/core/json_types"
	"github.com/cosmicjs/appointment-scheduler/internal/core/ports/in"
)

type AdminController struct {
	useCase in.AdminUseCase
	cfg     *config.Config
}

func NewAdminController(useCase in.AdminUseCase, cfg *config.Config) *AdminController {
	return &AdminController{
		useCase: useCase,
		cfg:     cfg,
	}
}

func (c *AdminController) RegisterRoutes(router *gin.Engine) {
	admin := router.Group("/api/v1/admin")
	admin.Use(c.basicAuth())
	{
		admin.GET("/bookings", c.listBookings)
		admin.DELETE("/bookings/:id", c.deleteBooking)
	}
}

func (c *AdminController) listBookings(ctx *gin.Context) {
	var filter in.BookingFilter

	if dateParam := ctx.Query("date"); dateParam != "" {
		date, err := json_types.ParseCalendarDate(dateParam)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
			return
		}
		filter.Date = &date
	}
	filter.UpcomingOnly = ctx.Query("upcoming") == "true"

	rows, err := c.useCase.ListBookings(ctx.Request.Context(), filter)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"bookings": rows})
}

func (c *AdminController) deleteBooking(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing booking ID"})
		return
	}

	if err := c.useCase.DeleteBooking(ctx.Request.Context(), id); err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (c *AdminController) basicAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username, password, hasAuth := ctx.Request.BasicAuth()
		if !hasAuth {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		if subtle.ConstantTimeCompare([]byte(username), []byte(c.cfg.Admin.Username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(password), []byte(c.cfg.Admin.Password)) != 1 {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		ctx.Next()
	}
}
