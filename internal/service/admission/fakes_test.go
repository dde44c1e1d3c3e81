package admission

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/hospital-api/internal/catalog"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/service/audit"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

type fakeAdmissionRepo struct {
	rows     map[int]*model.Admission
	nextID   int
	calls    int
	createID *int
	failNext error
}

func newFakeAdmissionRepo() *fakeAdmissionRepo {
	return &fakeAdmissionRepo{rows: make(map[int]*model.Admission), nextID: 1}
}

func (r *fakeAdmissionRepo) put(a model.Admission) *model.Admission {
	cp := a
	r.rows[a.ID] = &cp
	if a.ID >= r.nextID {
		r.nextID = a.ID + 1
	}
	return &cp
}

func (r *fakeAdmissionRepo) visible(id int) (*model.Admission, bool) {
	a, ok := r.rows[id]
	if !ok || a.Deleted {
		return nil, false
	}
	return a, true
}

func (r *fakeAdmissionRepo) Create(ctx context.Context, a *model.Admission) (int, error) {
	r.calls++
	if r.failNext != nil {
		return 0, r.failNext
	}
	if r.createID != nil {
		return *r.createID, nil
	}
	id := r.nextID
	cp := *a
	cp.ID = id
	r.put(cp)
	return id, nil
}

func (r *fakeAdmissionRepo) Get(ctx context.Context, id int) (*model.Admission, error) {
	r.calls++
	a, ok := r.visible(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAdmissionRepo) Update(ctx context.Context, a *model.Admission) (bool, error) {
	r.calls++
	if r.failNext != nil {
		return false, r.failNext
	}
	if _, ok := r.visible(a.ID); !ok {
		return false, nil
	}
	r.put(*a)
	return true, nil
}

func (r *fakeAdmissionRepo) SoftDelete(ctx context.Context, id int) (bool, error) {
	r.calls++
	a, ok := r.visible(id)
	if !ok {
		return false, nil
	}
	a.Deleted = true
	return true, nil
}

func (r *fakeAdmissionRepo) GetCurrent(ctx context.Context, patientCode int) (*model.Admission, error) {
	r.calls++
	for _, a := range r.rows {
		if a.PatientCode == patientCode && a.IsAdmitted() && !a.Deleted {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAdmissionRepo) ListByPatient(ctx context.Context, patientCode int) ([]*model.Admission, error) {
	r.calls++
	var out []*model.Admission
	for _, a := range r.rows {
		if a.PatientCode == patientCode && !a.Deleted {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAdmissionRepo) ListAdmittedPatients(ctx context.Context, filter *model.AdmittedPatientFilter) ([]*model.AdmittedPatient, error) {
	r.calls++
	out := []*model.AdmittedPatient{}
	for _, a := range r.rows {
		if a.Deleted || !a.IsAdmitted() {
			continue
		}
		if filter.AdmissionRange != nil && !filter.AdmissionRange.Contains(a.AdmDate) {
			continue
		}
		out = append(out, &model.AdmittedPatient{Patient: model.Patient{Code: a.PatientCode}, Admission: *a})
	}
	return out, nil
}

func (r *fakeAdmissionRepo) MaxProgressive(ctx context.Context, wardCode string, year int) (int, error) {
	r.calls++
	last := 0
	for _, a := range r.rows {
		if a.WardCode == wardCode && a.AdmDate.Year() == year && a.YProg > last {
			last = a.YProg
		}
	}
	return last, nil
}

func (r *fakeAdmissionRepo) CountOccupiedBeds(ctx context.Context, wardCode string) (int, error) {
	r.calls++
	n := 0
	for _, a := range r.rows {
		if a.WardCode == wardCode && a.IsAdmitted() && !a.Deleted {
			n++
		}
	}
	return n, nil
}

type fakePatientRepo map[int]*model.Patient

func (r fakePatientRepo) Get(ctx context.Context, code int) (*model.Patient, error) {
	p, ok := r[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

type staticCatalogs struct {
	snap *catalog.Snapshot
	err  error
}

func (c staticCatalogs) Snapshot(ctx context.Context) (*catalog.Snapshot, error) {
	return c.snap, c.err
}

type auditCall struct {
	action   string
	entityID string
}

type fakeAuditor struct {
	calls []auditCall
}

func (a *fakeAuditor) Log(ctx context.Context, action, entityType, entityID string, opts *audit.LogOptions) error {
	a.calls = append(a.calls, auditCall{action: action, entityID: entityID})
	return nil
}

type fakeEmitter struct {
	events []string
	err    error
}

func (e *fakeEmitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	e.events = append(e.events, eventType)
	return e.err
}

func testSnapshot() *catalog.Snapshot {
	entry := func(code string) model.CatalogEntry { return model.CatalogEntry{Code: code, Description: code} }
	return catalog.NewSnapshot(map[model.CatalogKind][]model.CatalogEntry{
		model.CatalogWard:                  {entry("W1"), entry("W2")},
		model.CatalogAdmissionType:         {entry("A1")},
		model.CatalogDisease:               {entry("D1"), entry("D2")},
		model.CatalogDischargeType:         {entry("DT1")},
		model.CatalogOperation:             {entry("OP1")},
		model.CatalogPregnantTreatmentType: {entry("PT1")},
		model.CatalogDeliveryType:          {entry("DLT1")},
		model.CatalogDeliveryResultType:    {entry("DR1")},
	})
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

var admDate = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func validCandidate() *model.Admission {
	return &model.Admission{
		WardCode:    "W1",
		AdmTypeCode: "A1",
		PatientCode: 42,
		AdmDate:     admDate,
	}
}

func dischargeCandidate() *model.Admission {
	a := validCandidate()
	a.DiseaseOut1Code = strPtr("D1")
	a.DisDate = timePtr(admDate.Add(72 * time.Hour))
	a.DisTypeCode = strPtr("DT1")
	return a
}

type fixture struct {
	svc     *Service
	repo    *fakeAdmissionRepo
	auditor *fakeAuditor
	events  *fakeEmitter
	reg     *prometheus.Registry
}

func newFixture() *fixture {
	repo := newFakeAdmissionRepo()
	patients := fakePatientRepo{
		42: {Code: 42, FirstName: "Mario", SecondName: "Rossi"},
		7:  {Code: 7, FirstName: "Anna", SecondName: "Bianchi"},
	}
	reg := prometheus.NewRegistry()
	auditor := &fakeAuditor{}
	events := &fakeEmitter{}
	svc := NewService(repo, patients, staticCatalogs{snap: testSnapshot()}, auditor, events, metrics.NewMetrics("test", "admission", reg))
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return &fixture{svc: svc, repo: repo, auditor: auditor, events: events, reg: reg}
}

var errStore = errors.New("connection reset")
