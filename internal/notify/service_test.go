package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/school-dashboard/internal/api"
	"github.com/nhle/school-dashboard/internal/model"
)

func writeList(w http.ResponseWriter, items []model.Notification) {
	json.NewEncoder(w).Encode(map[string]interface{}{"notifications": items})
}

func newService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := api.NewClient(srv.URL, "tok")
	return NewService(client, model.RoleStudent, nil)
}

func TestFetchAllReplacesList(t *testing.T) {
	items := []model.Notification{
		{ID: "n1", Title: "Grades posted", IsReadBy: []string{"u9"}},
		{ID: "n2", Title: "Field trip form"},
	}
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/student/notifications", r.URL.Path)
		writeList(w, items)
	}))

	require.NoError(t, svc.FetchAll(context.Background()))

	got := svc.Items()
	require.Len(t, got, 2)
	assert.Equal(t, "n1", got[0].ID)
	assert.NoError(t, svc.Err())
	assert.Equal(t, 1, svc.UnreadCountFor("u9"))
	assert.Equal(t, 2, svc.UnreadCountFor("u5"))
}

func TestFetchAllFailureRetainsList(t *testing.T) {
	var fail atomic.Bool
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeList(w, []model.Notification{{ID: "n1"}})
	}))

	require.NoError(t, svc.FetchAll(context.Background()))
	require.Len(t, svc.Items(), 1)

	fail.Store(true)
	err := svc.FetchAll(context.Background())
	require.Error(t, err)

	assert.Len(t, svc.Items(), 1, "failed fetch must not clobber the list")
	assert.Error(t, svc.Err())
}

func TestFetchAllDropsStaleResponse(t *testing.T) {
	var calls int32
	received := make(chan int, 2)
	release := [2]chan struct{}{make(chan struct{}), make(chan struct{})}

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idx := int(atomic.AddInt32(&calls, 1)) - 1
		received <- idx
		<-release[idx]
		writeList(w, []model.Notification{{ID: "n1", Title: titleFor(idx)}})
	}))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		svc.FetchAll(context.Background())
	}()
	<-received // first request in flight before the second is issued

	go func() {
		defer wg.Done()
		svc.FetchAll(context.Background())
	}()
	<-received

	// The later request completes first and wins.
	close(release[1])
	require.Eventually(t, func() bool {
		items := svc.Items()
		return len(items) == 1 && items[0].Title == titleFor(1)
	}, time.Second, 5*time.Millisecond)

	// The earlier request completes late and must be dropped.
	close(release[0])
	wg.Wait()

	items := svc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, titleFor(1), items[0].Title)
}

func TestFetchAllStaleFailureLeavesErrClear(t *testing.T) {
	var calls int32
	received := make(chan int, 2)
	release := [2]chan struct{}{make(chan struct{}), make(chan struct{})}

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idx := int(atomic.AddInt32(&calls, 1)) - 1
		received <- idx
		<-release[idx]
		if idx == 0 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeList(w, []model.Notification{{ID: "n1"}})
	}))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		svc.FetchAll(context.Background())
	}()
	<-received

	go func() {
		defer wg.Done()
		svc.FetchAll(context.Background())
	}()
	<-received

	// The later request succeeds first.
	close(release[1])
	require.Eventually(t, func() bool {
		return len(svc.Items()) == 1
	}, time.Second, 5*time.Millisecond)

	// The earlier request fails late; being superseded, its error must
	// not mark the fresh list as failed.
	close(release[0])
	wg.Wait()

	assert.NoError(t, svc.Err())
	assert.Len(t, svc.Items(), 1)
}

func titleFor(requestIdx int) string {
	if requestIdx == 0 {
		return "from first request"
	}
	return "from second request"
}

func TestMarkAsReadReplacesItem(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPatch:
			assert.Equal(t, "/student/notifications/n1/read", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"notification": model.Notification{ID: "n1", IsReadBy: []string{"u9"}},
			})
		default:
			writeList(w, []model.Notification{{ID: "n1"}, {ID: "n2"}})
		}
	}))

	require.NoError(t, svc.FetchAll(context.Background()))
	require.Equal(t, 2, svc.UnreadCountFor("u9"))

	require.NoError(t, svc.MarkAsRead(context.Background(), "n1"))

	assert.Equal(t, 1, svc.UnreadCountFor("u9"))
	items := svc.Items()
	require.Len(t, items, 2)
	assert.True(t, items[0].ReadBy("u9"))
}

func TestMarkAsReadFailureLeavesListIntact(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeList(w, []model.Notification{{ID: "n1"}})
	}))

	require.NoError(t, svc.FetchAll(context.Background()))
	require.Error(t, svc.MarkAsRead(context.Background(), "n1"))

	items := svc.Items()
	require.Len(t, items, 1)
	assert.False(t, items[0].ReadBy("u9"))
}

func TestMarkAsReadUnknownIDIsNoOp(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"notification": model.Notification{ID: "ghost", IsReadBy: []string{"u9"}},
			})
			return
		}
		writeList(w, []model.Notification{{ID: "n1"}})
	}))

	require.NoError(t, svc.FetchAll(context.Background()))
	require.NoError(t, svc.MarkAsRead(context.Background(), "ghost"))

	// The server's item is not in the local list; nothing is inserted.
	items := svc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "n1", items[0].ID)
}

func TestReplaceYieldsToFetchedData(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeList(w, []model.Notification{{ID: "fresh"}})
	}))

	svc.Replace([]model.Notification{{ID: "cached"}})
	require.Len(t, svc.Items(), 1)
	assert.Equal(t, "cached", svc.Items()[0].ID)

	require.NoError(t, svc.FetchAll(context.Background()))
	assert.Equal(t, "fresh", svc.Items()[0].ID)

	// Cache hydration after a completed fetch is ignored.
	svc.Replace([]model.Notification{{ID: "cached"}})
	assert.Equal(t, "fresh", svc.Items()[0].ID)
}
