package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const recordColumns = `id, employee_id, date, in_time, out_time, late_minutes, early_minutes,
	total_hours, status, notes, created_at, updated_at`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanRecord(row pgx.Row, extra ...interface{}) (attendance.Record, error) {
	var r attendance.Record
	dest := []interface{}{
		&r.ID, &r.EmployeeID, &r.Date, &r.InTime, &r.OutTime,
		&r.LateMinutes, &r.EarlyMinutes, &r.TotalHours,
		&r.Status, &r.Notes, &r.CreatedAt, &r.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return attendance.Record{}, err
	}
	return r, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time, forUpdate bool) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1 AND date = $2
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	record, err := scanRecord(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No record yet
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}
	return &record, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (employee_id, date, in_time, late_minutes, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + recordColumns

	created, err := scanRecord(q.QueryRow(ctx, query,
		record.EmployeeID,
		record.Date,
		record.InTime,
		record.LateMinutes,
		record.Status,
		record.Notes,
	))
	if err != nil {
		switch {
		case hasPgCode(err, pgUniqueViolation):
			return attendance.Record{}, attendance.ErrDuplicateCheckIn
		case hasPgCode(err, pgForeignKeyViolation):
			return attendance.Record{}, employee.ErrEmployeeNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	return created, nil
}

// UpdateCheckIn implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateCheckIn(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET in_time = $2, late_minutes = $3, notes = $4, updated_at = NOW()
		WHERE id = $1 AND in_time IS NULL
		RETURNING ` + recordColumns

	updated, err := scanRecord(q.QueryRow(ctx, query,
		record.ID, record.InTime, record.LateMinutes, record.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrDuplicateCheckIn
		}
		return attendance.Record{}, fmt.Errorf("failed to update check-in: %w", err)
	}
	return updated, nil
}

// UpdateCheckOut implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateCheckOut(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET out_time = $2, early_minutes = $3, total_hours = $4, notes = $5, updated_at = NOW()
		WHERE id = $1 AND in_time IS NOT NULL AND out_time IS NULL
		RETURNING ` + recordColumns

	updated, err := scanRecord(q.QueryRow(ctx, query,
		record.ID, record.OutTime, record.EarlyMinutes, record.TotalHours, record.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrDuplicateCheckOut
		}
		return attendance.Record{}, fmt.Errorf("failed to update check-out: %w", err)
	}
	return updated, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	conditions := []string{}
	args := []interface{}{}

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("ar.employee_id = $%d", len(args)))
	}
	if filter.StartDate != nil {
		start, err := time.Parse(attendance.DateLayout, *filter.StartDate)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid start date: %w", err)
		}
		args = append(args, start)
		conditions = append(conditions, fmt.Sprintf("ar.date >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		end, err := time.Parse(attendance.DateLayout, *filter.EndDate)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid end date: %w", err)
		}
		args = append(args, end)
		conditions = append(conditions, fmt.Sprintf("ar.date <= $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := `
		SELECT COUNT(*)
		FROM attendance_records ar
		JOIN employees e ON e.id = ar.employee_id` + where
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT ar.id, ar.employee_id, ar.date, ar.in_time, ar.out_time,
			   ar.late_minutes, ar.early_minutes, ar.total_hours,
			   ar.status, ar.notes, ar.created_at, ar.updated_at,
			   e.name, e.employee_id
		FROM attendance_records ar
		JOIN employees e ON e.id = ar.employee_id%s
		ORDER BY ar.date DESC, ar.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.Record, 0, filter.Limit)
	for rows.Next() {
		var name, code string
		record, err := scanRecord(rows, &name, &code)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		record.EmployeeName = &name
		record.EmployeeCode = &code
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendance records: %w", err)
	}

	return records, total, nil
}

// Summary implements attendance.AttendanceRepository.
func (a *attendanceRepository) Summary(ctx context.Context, filter attendance.SummaryFilter) ([]attendance.EmployeeSummary, int64, error) {
	q := GetQuerier(ctx, a.db)

	where := ""
	args := []interface{}{}
	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		where = fmt.Sprintf(" WHERE e.id = $%d", len(args))
	}

	countQuery := `
		SELECT COUNT(*) FROM (
			SELECT e.id
			FROM employees e
			JOIN attendance_records ar ON ar.employee_id = e.id` + where + `
			GROUP BY e.id
		) t`
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance summaries: %w", err)
	}

	dataQuery := fmt.Sprintf(`
		SELECT e.id, e.employee_id, e.name, COUNT(ar.id)
		FROM employees e
		JOIN attendance_records ar ON ar.employee_id = e.id%s
		GROUP BY e.id, e.employee_id, e.name
		ORDER BY e.name
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := q.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance summaries: %w", err)
	}
	defer rows.Close()

	summaries := make([]attendance.EmployeeSummary, 0, filter.Limit)
	for rows.Next() {
		var s attendance.EmployeeSummary
		if err := rows.Scan(&s.EmployeeID, &s.EmployeeCode, &s.EmployeeName, &s.Total); err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendance summaries: %w", err)
	}

	return summaries, total, nil
}
