package vaccine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/hospital-api/internal/model"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

type stubService struct {
	list    []*model.Vaccine
	created *model.Vaccine
	err     error
}

func (s *stubService) List(ctx context.Context) ([]*model.Vaccine, error) { return s.list, s.err }

func (s *stubService) ListByType(ctx context.Context, code string) ([]*model.Vaccine, error) {
	return s.list, s.err
}

func (s *stubService) Create(ctx context.Context, v *model.Vaccine) (*model.Vaccine, error) {
	s.created = v
	return v, s.err
}

func (s *stubService) Update(ctx context.Context, v *model.Vaccine) (*model.Vaccine, error) {
	return v, s.err
}

func (s *stubService) Delete(ctx context.Context, code string) (bool, error) { return s.err == nil, s.err }

func (s *stubService) CheckCode(ctx context.Context, code string) (bool, error) {
	return code == "V1", s.err
}

func serve(svc Service, method, path, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListVaccines(t *testing.T) {
	svc := &stubService{list: []*model.Vaccine{{Code: "V1", Description: "Polio", VaccineTypeCode: "C", VaccineTypeDescription: "Child"}}}
	w := serve(svc, http.MethodGet, "/api/v1/vaccines", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[{"code":"V1","description":"Polio","vaccineType":{"code":"C","description":"Child"}}]}`, w.Body.String())
}

func TestListByTypeEmptyIsNoContent(t *testing.T) {
	w := serve(&stubService{}, http.MethodGet, "/api/v1/vaccines/Z", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCreateVaccine(t *testing.T) {
	svc := &stubService{}
	w := serve(svc, http.MethodPost, "/api/v1/vaccines", `{"code":"V3","description":"Measles","vaccineType":{"code":"C"}}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "C", svc.created.VaccineTypeCode)
}

func TestCreateVaccineDuplicate(t *testing.T) {
	svc := &stubService{err: apperrors.Conflict("Vaccine type already present!")}
	w := serve(svc, http.MethodPost, "/api/v1/vaccines", `{"code":"V1","description":"Polio","vaccineType":{"code":"C"}}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Vaccine type already present!")
}

func TestCreateVaccineBindingFailure(t *testing.T) {
	w := serve(&stubService{}, http.MethodPost, "/api/v1/vaccines", `{"description":"no code"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateVaccineNotUpdated(t *testing.T) {
	svc := &stubService{err: apperrors.PersistenceFailure("Vaccine is not updated!", nil)}
	w := serve(svc, http.MethodPut, "/api/v1/vaccines", `{"code":"V9","description":"x","vaccineType":{"code":"C"}}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Vaccine is not updated!")
}

func TestDeleteVaccine(t *testing.T) {
	w := serve(&stubService{}, http.MethodDelete, "/api/v1/vaccines/V1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(&stubService{err: apperrors.NotFound("Vaccine not found!")}, http.MethodDelete, "/api/v1/vaccines/V9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckCode(t *testing.T) {
	w := serve(&stubService{}, http.MethodGet, "/api/v1/vaccines/check/V1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":true}`, w.Body.String())

	w = serve(&stubService{}, http.MethodGet, "/api/v1/vaccines/check/V2", "")
	assert.JSONEq(t, `{"success":true,"data":false}`, w.Body.String())
}
