package registry

import (
	"time"

	"github.com/noah-isme/course-registry-api/internal/models"
)

// TimestampLayout formats activity timestamps in local time.
const TimestampLayout = "2006-01-02 15:04:05"

// ActivityLog is an append-only audit trail. Entries carry a monotonic
// sequence number because wall-clock seconds collide under rapid mutation.
type ActivityLog struct {
	entries  []models.ActivityLogEntry
	seq      uint64
	clock    func() time.Time
	onAppend func(models.ActivityLogEntry)
}

// NewActivityLog returns an empty log stamped by clock.
func NewActivityLog(clock func() time.Time, onAppend func(models.ActivityLogEntry)) *ActivityLog {
	if clock == nil {
		clock = time.Now
	}
	return &ActivityLog{clock: clock, onAppend: onAppend}
}

// Append records one entry and hands a copy to the append hook.
func (l *ActivityLog) Append(action models.ActivityAction, studentID, courseCode, details string) models.ActivityLogEntry {
	l.seq++
	entry := models.ActivityLogEntry{
		Seq:        l.seq,
		Timestamp:  l.clock().Format(TimestampLayout),
		Action:     action,
		StudentID:  studentID,
		CourseCode: courseCode,
		Details:    details,
	}
	l.entries = append(l.entries, entry)
	if l.onAppend != nil {
		l.onAppend(entry)
	}
	return entry
}

// Len returns the number of entries appended so far.
func (l *ActivityLog) Len() int { return len(l.entries) }

// All returns every entry in insertion order.
func (l *ActivityLog) All() []models.ActivityLogEntry {
	out := make([]models.ActivityLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Recent returns the last n entries in insertion order. n is clamped to the
// log length; n <= 0 yields an empty slice.
func (l *ActivityLog) Recent(n int) []models.ActivityLogEntry {
	if n <= 0 {
		return []models.ActivityLogEntry{}
	}
	if n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]models.ActivityLogEntry, n)
	copy(out, l.entries[len(l.entries)-n:])
	return out
}
