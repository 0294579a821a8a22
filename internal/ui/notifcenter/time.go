package notifcenter

import (
	"fmt"
	"time"
)

// FormatRelativeTime renders a timestamp as a relative bucket: "just now"
// under a minute, then minutes, hours, and days, falling back to an
// absolute dd/mm/yyyy date past a week. Labels match the admissions
// site's Vietnamese copy.
func FormatRelativeTime(t time.Time, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "Vừa xong"
	case diff < time.Hour:
		return fmt.Sprintf("%d phút trước", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d giờ trước", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d ngày trước", int(diff.Hours()/24))
	default:
		return t.Format("02/01/2006")
	}
}
