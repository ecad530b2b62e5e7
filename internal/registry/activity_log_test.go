package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-registry-api/internal/models"
)

func fixedClock() func() time.Time {
	ts := time.Date(2025, 7, 30, 9, 15, 0, 0, time.Local)
	return func() time.Time { return ts }
}

func TestActivityLogAppendAssignsSequence(t *testing.T) {
	var seen []models.ActivityLogEntry
	log := NewActivityLog(fixedClock(), func(e models.ActivityLogEntry) { seen = append(seen, e) })

	first := log.Append(models.ActivityAddStudent, "S1", "", "Added student: Alice")
	second := log.Append(models.ActivityAddCourse, "", "C1", "Added course: Intro by Dr. Smith")

	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, uint64(2), second.Seq)
	assert.Equal(t, "2025-07-30 09:15:00", first.Timestamp)
	assert.Equal(t, first.Timestamp, second.Timestamp)
	require.Len(t, seen, 2)
	assert.Equal(t, second, seen[1])
}

func TestActivityLogRecentClamps(t *testing.T) {
	log := NewActivityLog(fixedClock(), nil)
	for i := 0; i < 5; i++ {
		log.Append(models.ActivityEnroll, "S", "C", "")
	}

	assert.Empty(t, log.Recent(0))
	assert.Empty(t, log.Recent(-3))
	assert.NotNil(t, log.Recent(0))

	last2 := log.Recent(2)
	require.Len(t, last2, 2)
	assert.Equal(t, uint64(4), last2[0].Seq)
	assert.Equal(t, uint64(5), last2[1].Seq)

	assert.Len(t, log.Recent(50), 5)
}

func TestActivityLogReturnsCopies(t *testing.T) {
	log := NewActivityLog(fixedClock(), nil)
	log.Append(models.ActivityDrop, "S1", "C1", "Dropped")

	all := log.All()
	all[0].Details = "tampered"
	assert.Equal(t, "Dropped", log.All()[0].Details)
}
