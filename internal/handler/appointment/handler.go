package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/appointment"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.GET("/today", h.ListToday)
		appointments.GET("/patient/:patientId", h.ListByPatient)
		appointments.GET("/doctor/:doctorId", h.ListByDoctor)
		appointments.GET("/:id", h.GetAppointment)
		appointments.POST("", h.CreateAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.PATCH("/:id/status", h.UpdateStatus)
		appointments.DELETE("/:id", h.DeleteAppointment)
	}
}

// queryDate parses the optional date query value.
func queryDate(c *gin.Context) (*model.Date, error) {
	raw := c.Query("date")
	if raw == "" {
		return nil, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, apperrors.Validation("date must be in YYYY-MM-DD format", err)
	}
	return &d, nil
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if !httputil.BindJSON(c, &req) {
		return
	}

	apt, err := h.service.CreateAppointment(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, apt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	page, limit := httputil.Pagination(c)
	date, err := queryDate(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	status := model.AppointmentStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		httputil.RespondWithError(c, apperrors.Validation("Invalid appointment status "+string(status), nil))
		return
	}

	appointments, total, err := h.service.ListAppointments(c.Request.Context(), &model.AppointmentFilters{
		ListParams: model.ListParams{Page: page, Limit: limit},
		Date:       date,
		Status:     status,
		DoctorRef:  c.Query("doctorId"),
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, appointments, page, limit, total)
}

func (h *Handler) ListToday(c *gin.Context) {
	appointments, err := h.service.ListToday(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *Handler) ListByPatient(c *gin.Context) {
	appointments, err := h.service.ListByPatient(c.Request.Context(), c.Param("patientId"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *Handler) ListByDoctor(c *gin.Context) {
	date, err := queryDate(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appointments, err := h.service.ListByDoctor(c.Request.Context(), c.Param("doctorId"), date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	apt, err := h.service.GetAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, apt)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	var req model.UpdateAppointmentRequest
	if !httputil.BindJSON(c, &req) {
		return
	}

	apt, err := h.service.UpdateAppointment(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, apt)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req model.UpdateStatusRequest
	if !httputil.BindJSON(c, &req) {
		return
	}

	apt, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, apt)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	if err := h.service.DeleteAppointment(c.Request.Context(), c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusOK, "Appointment deleted successfully")
}
