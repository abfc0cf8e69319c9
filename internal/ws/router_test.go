package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/school-dashboard/internal/model"
)

func TestDispatchMalformedFrame(t *testing.T) {
	r := NewRouter(nil)

	_, ok := r.Dispatch([]byte(`{not json`))
	assert.False(t, ok)
	assert.Nil(t, r.LastMessage())
	assert.Equal(t, 0, r.UnknownFrameCount())
}

func TestDispatchNewNotification(t *testing.T) {
	r := NewRouter(nil)

	var got []model.Notification
	r.OnNotification(func(n model.Notification) {
		got = append(got, n)
	})

	frame := []byte(`{
		"type": "new_notification",
		"notification": {
			"id": "n1",
			"title": "Homework posted",
			"message": "Algebra worksheet due Friday",
			"type": "NEW_ASSIGNMENT",
			"sender": "t-1",
			"important": true
		}
	}`)

	env, ok := r.Dispatch(frame)
	require.True(t, ok)
	assert.Equal(t, FrameNewNotification, env.Type)

	require.Len(t, got, 1)
	assert.Equal(t, "n1", got[0].ID)
	assert.Equal(t, model.TypeNewAssignment, got[0].Type)
	assert.True(t, got[0].Important)
}

func TestDispatchUpdatesLastMessage(t *testing.T) {
	r := NewRouter(nil)

	frames := []string{
		`{"type":"connected","message":"hello"}`,
		`{"type":"test_started","testId":"t-4"}`,
		`{"type":"answer_submitted","testId":"t-4","isSubmitted":true}`,
	}
	for _, f := range frames {
		_, ok := r.Dispatch([]byte(f))
		require.True(t, ok)
	}

	last := r.LastMessage()
	require.NotNil(t, last)
	assert.Equal(t, FrameAnswerSubmitted, last.Type)
	assert.Equal(t, "t-4", last.TestID)
	assert.True(t, last.IsSubmitted)
}

func TestDispatchUnknownFrameType(t *testing.T) {
	r := NewRouter(nil)

	var notified int
	r.OnNotification(func(model.Notification) { notified++ })

	_, ok := r.Dispatch([]byte(`{"type":"maintenance_window"}`))
	require.True(t, ok)

	// Unknown frames are counted and observable, never fanned out.
	assert.Equal(t, 1, r.UnknownFrameCount())
	assert.Equal(t, 0, notified)
	require.NotNil(t, r.LastMessage())
	assert.Equal(t, "maintenance_window", r.LastMessage().Type)
}

func TestOnFrameSeesEveryParsedFrame(t *testing.T) {
	r := NewRouter(nil)

	var types []string
	r.OnFrame(func(env Envelope) { types = append(types, env.Type) })

	r.Dispatch([]byte(`{"type":"connected"}`))
	r.Dispatch([]byte(`not json`))
	r.Dispatch([]byte(`{"type":"error","message":"bad token"}`))

	assert.Equal(t, []string{"connected", "error"}, types)
}
