package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

var admissionColumns = []string{
	"id", "admitted", "type", "ward_code", "yprog", "patient_code", "adm_date", "adm_type_code", "fhu",
	"disease_in_code", "disease_out1_code", "disease_out2_code", "disease_out3_code",
	"operation_code", "op_date", "op_result", "dis_date", "dis_type_code",
	"note", "trans_unit", "visit_date",
	"preg_treatment_type_code", "delivery_date", "delivery_type_code", "delivery_result_code",
	"weight", "ctrl_date1", "ctrl_date2", "abort_date",
	"user_id", "deleted", "created_at", "updated_at",
}

var patientColumns = []string{
	"code", "first_name", "second_name", "name", "birth_date", "sex", "city", "deleted",
}

var (
	selectAdmission = "SELECT " + strings.Join(admissionColumns, ", ") + " FROM admissions"
	insertAdmission = buildInsert()
	updateAdmission = buildUpdate()
)

func buildInsert() string {
	cols := admissionColumns[1:]
	return fmt.Sprintf("INSERT INTO admissions (%s) VALUES (:%s) RETURNING id",
		strings.Join(cols, ", "), strings.Join(cols, ", :"))
}

func buildUpdate() string {
	sets := make([]string, 0, len(admissionColumns))
	for _, c := range admissionColumns[1:] {
		if c == "created_at" || c == "deleted" {
			continue
		}
		sets = append(sets, c+" = :"+c)
	}
	return "UPDATE admissions SET " + strings.Join(sets, ", ") + " WHERE id = :id AND NOT deleted"
}

// selectList renders alias.col AS "prefix.col" so sqlx can fill nested structs.
func selectList(alias, prefix string, cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf(`%s.%s AS "%s.%s"`, alias, c, prefix, c)
	}
	return strings.Join(parts, ", ")
}

type admissionRepository struct {
	BaseRepository
}

func NewAdmissionRepository(base BaseRepository) repository.AdmissionRepository {
	return &admissionRepository{base}
}

func (r *admissionRepository) Create(ctx context.Context, a *model.Admission) (int, error) {
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	rows, err := r.db.NamedQueryContext(ctx, insertAdmission, a)
	if err != nil {
		return 0, fmt.Errorf("failed to create admission: %w", translate(err))
	}
	defer rows.Close()

	var id int
	if rows.Next() {
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to scan admission id: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to create admission: %w", translate(err))
	}
	return id, nil
}

func (r *admissionRepository) Get(ctx context.Context, id int) (*model.Admission, error) {
	var a model.Admission
	err := r.db.GetContext(ctx, &a, selectAdmission+" WHERE id = $1 AND NOT deleted", id)
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *admissionRepository) Update(ctx context.Context, a *model.Admission) (bool, error) {
	a.UpdatedAt = time.Now()

	res, err := r.db.NamedExecContext(ctx, updateAdmission, a)
	if err != nil {
		return false, fmt.Errorf("failed to update admission: %w", translate(err))
	}
	return affected(res)
}

func (r *admissionRepository) SoftDelete(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE admissions SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT deleted`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete admission: %w", err)
	}
	return affected(res)
}

func (r *admissionRepository) GetCurrent(ctx context.Context, patientCode int) (*model.Admission, error) {
	var list []*model.Admission
	err := r.db.SelectContext(ctx, &list,
		selectAdmission+" WHERE patient_code = $1 AND admitted = 1 AND NOT deleted LIMIT 1", patientCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get current admission: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (r *admissionRepository) ListByPatient(ctx context.Context, patientCode int) ([]*model.Admission, error) {
	list := []*model.Admission{}
	err := r.db.SelectContext(ctx, &list,
		selectAdmission+" WHERE patient_code = $1 AND NOT deleted ORDER BY adm_date DESC", patientCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list admissions: %w", err)
	}
	return list, nil
}

func (r *admissionRepository) ListAdmittedPatients(ctx context.Context, filter *model.AdmittedPatientFilter) ([]*model.AdmittedPatient, error) {
	query, args := admittedPatientsQuery(filter)

	list := []*model.AdmittedPatient{}
	if err := r.db.SelectContext(ctx, &list, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list admitted patients: %w", err)
	}
	return list, nil
}

func admittedPatientsQuery(filter *model.AdmittedPatientFilter) (string, []interface{}) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(selectList("p", "patient", patientColumns))
	b.WriteString(", ")
	b.WriteString(selectList("a", "admission", admissionColumns))
	b.WriteString(" FROM admissions a JOIN patients p ON p.code = a.patient_code")
	b.WriteString(" WHERE NOT a.deleted AND NOT p.deleted")

	var args []interface{}
	if filter == nil {
		filter = &model.AdmittedPatientFilter{}
	}

	// Without a discharge range only open admissions qualify.
	if filter.DischargeRange == nil {
		b.WriteString(" AND a.admitted = 1")
	} else {
		args = append(args, filter.DischargeRange.From, filter.DischargeRange.To)
		fmt.Fprintf(&b, " AND a.dis_date BETWEEN $%d AND $%d", len(args)-1, len(args))
	}
	if filter.AdmissionRange != nil {
		args = append(args, filter.AdmissionRange.From, filter.AdmissionRange.To)
		fmt.Fprintf(&b, " AND a.adm_date BETWEEN $%d AND $%d", len(args)-1, len(args))
	}

	for _, term := range strings.Fields(filter.SearchTerms) {
		args = append(args, "%"+term+"%")
		n := len(args)
		fmt.Fprintf(&b,
			" AND (p.first_name ILIKE $%d OR p.second_name ILIKE $%d OR p.name ILIKE $%d OR CAST(p.code AS TEXT) LIKE $%d)",
			n, n, n, n)
	}

	b.WriteString(" ORDER BY p.code, a.adm_date DESC")
	return b.String(), args
}

// MaxProgressive counts deleted rows too so a progressive number is never
// handed out twice.
func (r *admissionRepository) MaxProgressive(ctx context.Context, wardCode string, year int) (int, error) {
	var last int
	err := r.db.GetContext(ctx, &last,
		`SELECT COALESCE(MAX(yprog), 0) FROM admissions WHERE ward_code = $1 AND EXTRACT(YEAR FROM adm_date) = $2`,
		wardCode, year)
	if err != nil {
		return 0, fmt.Errorf("failed to get max progressive: %w", err)
	}
	return last, nil
}

func (r *admissionRepository) CountOccupiedBeds(ctx context.Context, wardCode string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM admissions WHERE ward_code = $1 AND admitted = 1 AND NOT deleted`, wardCode)
	if err != nil {
		return 0, fmt.Errorf("failed to count occupied beds: %w", err)
	}
	return n, nil
}
