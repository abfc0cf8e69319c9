package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/school-dashboard/internal/model"
)

func TestStoreInsertOrdering(t *testing.T) {
	s := NewStore()

	s.Insert(model.Notification{ID: "a", Title: "first"})
	s.Insert(model.Notification{ID: "b", Title: "second"})
	s.Insert(model.Notification{ID: "c", Title: "third"})

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
	assert.Equal(t, "a", all[2].ID)

	latest := s.Latest()
	require.NotNil(t, latest)
	assert.Equal(t, "c", latest.ID)
	assert.Equal(t, 3, s.Unread())
}

func TestStoreKeepsDuplicates(t *testing.T) {
	s := NewStore()

	n := model.Notification{ID: "a", Title: "repeated"}
	s.Insert(n)
	s.Insert(n)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 2, s.Unread())
}

func TestStoreClear(t *testing.T) {
	s := NewStore()
	s.Insert(model.Notification{ID: "a"})
	s.Insert(model.Notification{ID: "b"})

	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Unread())
	assert.Nil(t, s.Latest())
	assert.Empty(t, s.All())
}

func TestStoreImportantFilter(t *testing.T) {
	s := NewStore()
	s.Insert(model.Notification{ID: "a", Important: true})
	s.Insert(model.Notification{ID: "b"})
	s.Insert(model.Notification{ID: "c", Important: true})

	important := s.Important()
	require.Len(t, important, 2)
	assert.Equal(t, "c", important[0].ID)
	assert.Equal(t, "a", important[1].ID)
}
