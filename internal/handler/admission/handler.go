package admission

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/model"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

// Service is the admission lifecycle the handler drives.
type Service interface {
	Create(ctx context.Context, a *model.Admission) (*model.Admission, error)
	Update(ctx context.Context, id int, a *model.Admission) (*model.Admission, error)
	Discharge(ctx context.Context, patientCode int, a *model.Admission) (bool, error)
	SoftDelete(ctx context.Context, id int) (bool, error)
	Get(ctx context.Context, id int) (*model.Admission, error)
	GetCurrent(ctx context.Context, patientCode int) (*model.Admission, error)
	ListByPatient(ctx context.Context, patientCode int) ([]*model.Admission, error)
	ListAdmittedPatients(ctx context.Context, filter *model.AdmittedPatientFilter) ([]*model.AdmittedPatient, error)
	NextProgressiveNumber(ctx context.Context, wardCode string) (int, error)
	BedsOccupied(ctx context.Context, wardCode string) (int, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admissions := r.Group("/admissions")
	{
		admissions.GET("", h.ListByPatient)
		admissions.POST("", h.CreateAdmission)
		admissions.PUT("", h.UpdateAdmission)
		admissions.GET("/current", h.GetCurrentAdmission)
		admissions.GET("/allAdmittedPatients", h.AllAdmittedPatients)
		admissions.GET("/admittedPatients", h.AdmittedPatients)
		admissions.GET("/getNextProgressiveIdInYear", h.NextProgressiveNumber)
		admissions.GET("/getBedsOccupationInWard", h.BedsOccupied)
		admissions.POST("/discharge", h.Discharge)
		admissions.GET("/:id", h.GetAdmission)
		admissions.PUT("/:id", h.UpdateAdmissionByID)
		admissions.DELETE("/:id", h.DeleteAdmission)
	}
}

func (h *Handler) GetAdmission(c *gin.Context) {
	id, ok := intParam(c, c.Param("id"), "admission id")
	if !ok {
		return
	}

	a, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if a == nil {
		httputil.RespondWithNoContent(c)
		return
	}
	httputil.RespondWithSuccess(c, fromModel(a))
}

func (h *Handler) GetCurrentAdmission(c *gin.Context) {
	code, ok := intParam(c, c.Query("patientCode"), "patientCode")
	if !ok {
		return
	}

	a, err := h.service.GetCurrent(c.Request.Context(), code)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if a == nil {
		httputil.RespondWithNoContent(c)
		return
	}
	httputil.RespondWithSuccess(c, fromModel(a))
}

func (h *Handler) ListByPatient(c *gin.Context) {
	code, ok := intParam(c, c.Query("patientCode"), "patientCode")
	if !ok {
		return
	}

	list, err := h.service.ListByPatient(c.Request.Context(), code)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, fromModels(list))
}

func (h *Handler) AllAdmittedPatients(c *gin.Context) {
	list, err := h.service.ListAdmittedPatients(c.Request.Context(), nil)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, fromAdmittedPatients(list))
}

// AdmittedPatients filters by free text and by admission and discharge
// ranges given as "from,to".
func (h *Handler) AdmittedPatients(c *gin.Context) {
	filter := &model.AdmittedPatientFilter{SearchTerms: c.Query("searchterms")}

	var err error
	if filter.AdmissionRange, err = parseRange(c.Query("admissionrange")); err != nil {
		httputil.RespondWithBadRequest(c, "admissionrange: "+err.Error())
		return
	}
	if filter.DischargeRange, err = parseRange(c.Query("dischargerange")); err != nil {
		httputil.RespondWithBadRequest(c, "dischargerange: "+err.Error())
		return
	}

	list, err := h.service.ListAdmittedPatients(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, fromAdmittedPatients(list))
}

func (h *Handler) NextProgressiveNumber(c *gin.Context) {
	n, err := h.service.NextProgressiveNumber(c.Request.Context(), c.Query("wardCode"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, n)
}

func (h *Handler) BedsOccupied(c *gin.Context) {
	n, err := h.service.BedsOccupied(c.Request.Context(), c.Query("wardid"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, n)
}

func (h *Handler) DeleteAdmission(c *gin.Context) {
	id, ok := intParam(c, c.Param("id"), "admission id")
	if !ok {
		return
	}

	deleted, err := h.service.SoftDelete(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, deleted)
}

func (h *Handler) Discharge(c *gin.Context) {
	code, ok := intParam(c, c.Query("patientCode"), "patientCode")
	if !ok {
		return
	}
	req, ok := bindAdmission(c)
	if !ok {
		return
	}

	discharged, err := h.service.Discharge(c.Request.Context(), code, toModel(req))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, discharged)
}

func (h *Handler) CreateAdmission(c *gin.Context) {
	req, ok := bindAdmission(c)
	if !ok {
		return
	}

	created, err := h.service.Create(c.Request.Context(), toModel(req))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, fromModel(created))
}

// UpdateAdmission takes the admission id from the payload.
func (h *Handler) UpdateAdmission(c *gin.Context) {
	req, ok := bindAdmission(c)
	if !ok {
		return
	}
	h.update(c, req.ID, req)
}

func (h *Handler) UpdateAdmissionByID(c *gin.Context) {
	id, ok := intParam(c, c.Param("id"), "admission id")
	if !ok {
		return
	}
	req, ok := bindAdmission(c)
	if !ok {
		return
	}
	h.update(c, id, req)
}

func (h *Handler) update(c *gin.Context, id int, req *AdmissionDTO) {
	if req.Admitted == nil {
		httputil.RespondWithError(c, apperrors.MissingField("admitted", "Admitted field is required!"))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, toModel(req))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, fromModel(updated))
}

func bindAdmission(c *gin.Context) (*AdmissionDTO, bool) {
	var req AdmissionDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBadRequest(c, validator.Format(err))
		return nil, false
	}
	return &req, true
}

func intParam(c *gin.Context, raw, name string) (int, bool) {
	if raw == "" {
		httputil.RespondWithError(c, apperrors.MissingField(name, ""))
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		httputil.RespondWithBadRequest(c, fmt.Sprintf("invalid %s: %q", name, raw))
		return 0, false
	}
	return n, true
}

var rangeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// parseRange reads "from,to". An empty string means no range. A date-only
// upper bound covers the whole day.
func parseRange(raw string) (*model.DateRange, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("expected from,to but got %q", raw)
	}

	from, _, err := parseTime(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, err
	}
	to, dateOnly, err := parseTime(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, err
	}
	if dateOnly {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	return &model.DateRange{From: from, To: to}, nil
}

func parseTime(s string) (time.Time, bool, error) {
	for i, layout := range rangeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, i == len(rangeLayouts)-1, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q", s)
}
