package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/v-anushka05/mockmate-backend/internal/metrics"
)

// NewRouter wires the API surface consumed by the presentation layer.
func NewRouter(h *Handler, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.POST("/users", h.RegisterUser)
	router.GET("/subjects", h.ListSubjects)
	router.GET("/interviewers", h.ListInterviewers)

	router.POST("/selections", h.StartSelection)
	router.PATCH("/selections/:id", h.UpdateSelection)
	router.POST("/selections/:id/interviewer", h.ChooseInterviewer)
	router.POST("/selections/:id/confirm", h.ConfirmSelection)
	router.DELETE("/selections/:id", h.DiscardSelection)

	router.GET("/bookings", h.ListBookings)
	router.GET("/bookings/:id", h.GetBooking)
	router.POST("/bookings/:id/cancel", h.CancelBooking)
	router.POST("/bookings/:id/feedback", h.SubmitFeedback)

	return router
}
