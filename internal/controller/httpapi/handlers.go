package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/v-anushka05/mockmate-backend/internal/model"
	"github.com/v-anushka05/mockmate-backend/internal/service"
)

type Handler struct {
	bookings *service.BookingService
}

func NewHandler(bookings *service.BookingService) *Handler {
	return &Handler{bookings: bookings}
}

// selectionView is the JSON shape of an in-flight selection.
type selectionView struct {
	ID            string `json:"id"`
	UserID        int64  `json:"user_id"`
	Subject       string `json:"subject,omitempty"`
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
	InterviewerID int64  `json:"interviewer_id,omitempty"`
}

func viewSelection(sel service.Selection) selectionView {
	view := selectionView{
		ID:            sel.ID,
		UserID:        sel.UserID,
		Subject:       string(sel.Subject),
		Time:          sel.TimeSlot,
		InterviewerID: sel.InterviewerID,
	}
	if !sel.Date.IsZero() {
		view.Date = sel.Date.Format("2006-01-02")
	}
	return view
}

func emailStatus(success bool) string {
	if success {
		return "sent"
	}
	return "pending"
}

// writeError maps the domain error taxonomy onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	var validation *model.ValidationError
	var conflict *model.ConflictError
	var notFound *model.NotFoundError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// POST /users
func (h *Handler) RegisterUser(c *gin.Context) {
	var payload struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, record, err := h.bookings.RegisterUser(c.Request.Context(), payload.Name, payload.Email)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":  user,
		"email": emailStatus(record != nil && record.Success),
	})
}

// GET /subjects
func (h *Handler) ListSubjects(c *gin.Context) {
	subjects := make([]gin.H, 0, len(model.Subjects))
	for _, s := range model.Subjects {
		subjects = append(subjects, gin.H{"tag": s, "label": s.Label()})
	}
	c.JSON(http.StatusOK, gin.H{
		"subjects":  subjects,
		"timeSlots": model.TimeSlots,
	})
}

// GET /interviewers?subject=dsa
func (h *Handler) ListInterviewers(c *gin.Context) {
	subject := c.Query("subject")
	if subject == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject query parameter is required"})
		return
	}

	interviewers, err := h.bookings.AvailableInterviewers(c.Request.Context(), subject)
	if err != nil {
		writeError(c, err)
		return
	}

	// Empty result is a valid answer, not an error.
	if interviewers == nil {
		interviewers = []*model.Interviewer{}
	}
	c.JSON(http.StatusOK, interviewers)
}

// POST /selections
func (h *Handler) StartSelection(c *gin.Context) {
	var payload struct {
		UserID int64 `json:"user_id"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if payload.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	sel := h.bookings.StartSelection(payload.UserID)
	c.JSON(http.StatusCreated, viewSelection(sel))
}

// PATCH /selections/:id
func (h *Handler) UpdateSelection(c *gin.Context) {
	var payload struct {
		Subject string `json:"subject"`
		Date    string `json:"date"`
		Time    string `json:"time"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sel, interviewers, err := h.bookings.UpdateSelection(
		c.Request.Context(), c.Param("id"),
		payload.Subject, payload.Date, payload.Time,
	)
	if err != nil {
		writeError(c, err)
		return
	}

	if interviewers == nil {
		interviewers = []*model.Interviewer{}
	}
	c.JSON(http.StatusOK, gin.H{
		"selection":    viewSelection(sel),
		"interviewers": interviewers,
	})
}

// POST /selections/:id/interviewer
func (h *Handler) ChooseInterviewer(c *gin.Context) {
	var payload struct {
		InterviewerID int64 `json:"interviewer_id"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sel, err := h.bookings.ChooseInterviewer(c.Param("id"), payload.InterviewerID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, viewSelection(sel))
}

// DELETE /selections/:id
func (h *Handler) DiscardSelection(c *gin.Context) {
	h.bookings.DiscardSelection(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// POST /selections/:id/confirm
// Booking success is reported independently of the email outcome: the
// "email" field is the soft, dismissible part of the answer.
func (h *Handler) ConfirmSelection(c *gin.Context) {
	idempotencyKey := c.GetHeader("Idempotency-Key")

	booking, record, err := h.bookings.Confirm(c.Request.Context(), c.Param("id"), idempotencyKey)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"booking": booking,
		"email":   emailStatus(record != nil && record.Success),
	})
}

// POST /bookings/:id/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var payload struct {
		UserID int64 `json:"user_id"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookings.Cancel(c.Request.Context(), id, payload.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// POST /bookings/:id/feedback
func (h *Handler) SubmitFeedback(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var fb model.Feedback
	if err := c.BindJSON(&fb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookings.CompleteWithFeedback(c.Request.Context(), id, &fb)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// GET /bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	booking, err := h.bookings.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// GET /bookings?user_id=1
func (h *Handler) ListBookings(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id query parameter is required"})
		return
	}

	bookings, err := h.bookings.ListUserBookings(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	if bookings == nil {
		bookings = []*model.Booking{}
	}
	c.JSON(http.StatusOK, bookings)
}
