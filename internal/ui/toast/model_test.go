package toast

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/school-dashboard/internal/model"
)

func TestKeyFormat(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	n := model.Notification{ID: "n42"}

	assert.Equal(t, fmt.Sprintf("n42-%d", at.UnixNano()), Key(n, at))
}

func TestPushArmsExpiry(t *testing.T) {
	m := New(80)
	at := time.Now()

	m, cmd := m.Push(model.Notification{ID: "n1", Title: "Quiz tomorrow"}, at)

	require.NotNil(t, cmd, "push must schedule an expiry tick")
	require.Len(t, m.Entries(), 1)
	assert.Equal(t, Key(model.Notification{ID: "n1"}, at), m.Entries()[0].Key)
}

func TestExpiredMsgRemovesOnlyItsEntry(t *testing.T) {
	m := New(80)
	t1 := time.Now()
	t2 := t1.Add(time.Second)

	m, _ = m.Push(model.Notification{ID: "n1"}, t1)
	m, _ = m.Push(model.Notification{ID: "n2"}, t2)

	m, _ = m.Update(ExpiredMsg{Key: Key(model.Notification{ID: "n1"}, t1)})

	entries := m.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "n2", entries[0].Notification.ID)
}

func TestSameIDTwiceGetsDistinctToasts(t *testing.T) {
	m := New(80)
	n := model.Notification{ID: "n1"}
	t1 := time.Now()
	t2 := t1.Add(10 * time.Millisecond)

	m, _ = m.Push(n, t1)
	m, _ = m.Push(n, t2)

	entries := m.Entries()
	require.Len(t, entries, 2)
	assert.NotEqual(t, entries[0].Key, entries[1].Key)

	// Expiring the first leaves the redelivered toast alive.
	m, _ = m.Update(ExpiredMsg{Key: entries[0].Key})
	assert.Len(t, m.Entries(), 1)
}

func TestDismissRemovesOldestAndStaleExpiryIsNoOp(t *testing.T) {
	m := New(80)
	t1 := time.Now()

	m, _ = m.Push(model.Notification{ID: "n1"}, t1)
	m, _ = m.Push(model.Notification{ID: "n2"}, t1.Add(time.Second))

	m = m.Dismiss()
	require.Len(t, m.Entries(), 1)
	assert.Equal(t, "n2", m.Entries()[0].Notification.ID)

	// The dismissed toast's timer still fires; nothing matches.
	m, _ = m.Update(ExpiredMsg{Key: Key(model.Notification{ID: "n1"}, t1)})
	assert.Len(t, m.Entries(), 1)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	long := strings.Repeat("課題が投稿されました。", 10)

	got := truncate(long, 20)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 20, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))

	assert.Equal(t, "short", truncate("short", 20))
	assert.Equal(t, long, truncate(long, 8))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, Duration)
}
