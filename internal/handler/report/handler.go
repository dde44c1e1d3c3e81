package report

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/service/report"
	"github.com/jwalitptl/hospital-api/pkg/httputil"
	"github.com/jwalitptl/hospital-api/pkg/storage"
)

type Service interface {
	Report(ctx context.Context, name string) (*storage.Object, error)
	Document(ctx context.Context, docType int) (*storage.Object, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("/exams-list", h.serveReport(report.ExamsList))
		reports.GET("/diseases-list", h.serveReport(report.DiseasesList))
	}
	r.GET("/documents/:type", h.GetDocument)
}

func (h *Handler) serveReport(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		obj, err := h.service.Report(c.Request.Context(), name)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		stream(c, obj)
	}
}

func (h *Handler) GetDocument(c *gin.Context) {
	docType, err := strconv.Atoi(c.Param("type"))
	if err != nil {
		httputil.RespondWithBadRequest(c, fmt.Sprintf("invalid document type: %q", c.Param("type")))
		return
	}

	obj, err := h.service.Document(c.Request.Context(), docType)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	stream(c, obj)
}

func stream(c *gin.Context, obj *storage.Object) {
	defer obj.Body.Close()
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", obj.Name),
	})
}
