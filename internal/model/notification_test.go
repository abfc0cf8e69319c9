package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSenderBareString(t *testing.T) {
	var n Notification
	data := []byte(`{"id":"n1","sender":"u-12"}`)

	require.NoError(t, json.Unmarshal(data, &n))
	assert.Equal(t, "u-12", n.Sender.ID)
	assert.False(t, n.Sender.IsRef())
	assert.Equal(t, "u-12", n.Sender.Display())

	out, err := json.Marshal(n.Sender)
	require.NoError(t, err)
	assert.JSONEq(t, `"u-12"`, string(out))
}

func TestSenderEmbeddedRecord(t *testing.T) {
	var n Notification
	data := []byte(`{"id":"n1","sender":{"id":"u-12","name":"Ms. Tran"}}`)

	require.NoError(t, json.Unmarshal(data, &n))
	assert.Equal(t, "u-12", n.Sender.ID)
	assert.True(t, n.Sender.IsRef())
	assert.Equal(t, "Ms. Tran", n.Sender.Display())

	out, err := json.Marshal(n.Sender)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u-12","name":"Ms. Tran"}`, string(out))
}

func TestNotificationTypeKnown(t *testing.T) {
	assert.True(t, TypeNewGrade.Known())
	assert.True(t, TypeSystem.Known())
	assert.False(t, NotificationType("PARADE_DAY").Known())
}

func TestReadBy(t *testing.T) {
	n := Notification{IsReadBy: []string{"u1", "u2"}}

	assert.True(t, n.ReadBy("u2"))
	assert.False(t, n.ReadBy("u3"))
	assert.False(t, Notification{}.ReadBy("u1"))
}
