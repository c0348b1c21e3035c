package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
)

func emailSubject(kind attendance.EventType) string {
	if kind == attendance.EventOut {
		return "Check-out recorded"
	}
	return "Check-in recorded"
}

func clockOrNA(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "N/A"
	}
	return t.In(loc).Format("15:04")
}

func emailBody(emp employee.Employee, r attendance.Record, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", emp.Name)
	fmt.Fprintf(&b, "Attendance Date: %s\n\n", r.Date.Format(attendance.DateLayout))
	b.WriteString("Attendance Update\n")
	fmt.Fprintf(&b, "    - Late by: %d minutes\n", r.LateMinutes)
	if r.CheckedOut() {
		fmt.Fprintf(&b, "    - Left early by: %d minutes\n", r.EarlyMinutes)
		fmt.Fprintf(&b, "    - Total hours: %.2f\n", r.TotalHours)
	}
	b.WriteString("\nRecorded Timings\n")
	fmt.Fprintf(&b, "    - In-Time: %s\n", clockOrNA(r.InTime, loc))
	fmt.Fprintf(&b, "    - Out-Time: %s\n", clockOrNA(r.OutTime, loc))
	if r.Notes != nil && *r.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s\n", *r.Notes)
	}
	if r.LateMinutes > 0 || r.EarlyMinutes > 0 {
		b.WriteString("\nPlease ensure timely attendance in the future.")
	}
	return b.String()
}

func whatsAppBody(emp employee.Employee, r attendance.Record, loc *time.Location) string {
	return fmt.Sprintf("Date:%s,Hello %s,Late:%dmin,Early:%dmin,In:%s,Out:%s.",
		r.Date.Format(attendance.DateLayout),
		emp.Name,
		r.LateMinutes,
		r.EarlyMinutes,
		clockOrNA(r.InTime, loc),
		clockOrNA(r.OutTime, loc),
	)
}
