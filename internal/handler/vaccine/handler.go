package vaccine

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

type Service interface {
	List(ctx context.Context) ([]*model.Vaccine, error)
	ListByType(ctx context.Context, vaccineTypeCode string) ([]*model.Vaccine, error)
	Create(ctx context.Context, v *model.Vaccine) (*model.Vaccine, error)
	Update(ctx context.Context, v *model.Vaccine) (*model.Vaccine, error)
	Delete(ctx context.Context, code string) (bool, error)
	CheckCode(ctx context.Context, code string) (bool, error)
}

type VaccineTypeDTO struct {
	Code        string `json:"code" binding:"max=1"`
	Description string `json:"description,omitempty"`
}

type VaccineDTO struct {
	Code        string         `json:"code" binding:"required,max=10"`
	Description string         `json:"description" binding:"required,max=50"`
	VaccineType VaccineTypeDTO `json:"vaccineType"`
}

func toModel(d *VaccineDTO) *model.Vaccine {
	return &model.Vaccine{
		Code:            d.Code,
		Description:     d.Description,
		VaccineTypeCode: d.VaccineType.Code,
	}
}

func fromModel(v *model.Vaccine) VaccineDTO {
	return VaccineDTO{
		Code:        v.Code,
		Description: v.Description,
		VaccineType: VaccineTypeDTO{Code: v.VaccineTypeCode, Description: v.VaccineTypeDescription},
	}
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	vaccines := r.Group("/vaccines")
	{
		vaccines.GET("", h.ListVaccines)
		vaccines.POST("", h.CreateVaccine)
		vaccines.PUT("", h.UpdateVaccine)
		vaccines.GET("/check/:code", h.CheckCode)
		vaccines.GET("/:vaccineTypeCode", h.ListByType)
		vaccines.DELETE("/:code", h.DeleteVaccine)
	}
}

func (h *Handler) ListVaccines(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	h.respondList(c, list, err)
}

func (h *Handler) ListByType(c *gin.Context) {
	list, err := h.service.ListByType(c.Request.Context(), c.Param("vaccineTypeCode"))
	h.respondList(c, list, err)
}

// respondList answers 204 for an empty list.
func (h *Handler) respondList(c *gin.Context, list []*model.Vaccine, err error) {
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if len(list) == 0 {
		httputil.RespondWithNoContent(c)
		return
	}
	out := make([]VaccineDTO, 0, len(list))
	for _, v := range list {
		out = append(out, fromModel(v))
	}
	httputil.RespondWithSuccess(c, out)
}

func (h *Handler) CreateVaccine(c *gin.Context) {
	var req VaccineDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBadRequest(c, validator.Format(err))
		return
	}

	v, err := h.service.Create(c.Request.Context(), toModel(&req))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, fromModel(v))
}

func (h *Handler) UpdateVaccine(c *gin.Context) {
	var req VaccineDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBadRequest(c, validator.Format(err))
		return
	}

	v, err := h.service.Update(c.Request.Context(), toModel(&req))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, fromModel(v))
}

func (h *Handler) DeleteVaccine(c *gin.Context) {
	deleted, err := h.service.Delete(c.Request.Context(), c.Param("code"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, deleted)
}

func (h *Handler) CheckCode(c *gin.Context) {
	exists, err := h.service.CheckCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, exists)
}
