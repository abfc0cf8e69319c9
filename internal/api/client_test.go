package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/school-dashboard/internal/model"
)

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"notifications":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-55")
	_, err := c.ListNotifications(context.Background(), model.RoleStudent)

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-55", gotAuth)
}

func TestClientWithoutToken(t *testing.T) {
	c := NewClient("http://school.test", "")

	_, err := c.ListNotifications(context.Background(), model.RoleStudent)
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestClientAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "stale")
	_, err := c.ListNotifications(context.Background(), model.RoleTeacher)

	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.Contains(t, err.Error(), "token expired")
}

func TestClientRetriesRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"notifications":[{"id":"n1"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	items, err := c.ListNotifications(context.Background(), model.RoleStudent)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSetTokenDuringInflightRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"notifications":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-old")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				c.ListNotifications(context.Background(), model.RoleStudent)
			}
		}()
	}
	for j := 0; j < 20; j++ {
		c.SetToken(fmt.Sprintf("tok-%d", j))
	}
	wg.Wait()

	assert.True(t, c.HasToken())
}

func TestMarkNotificationReadEscapesID(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotMethod = r.Method
		w.Write([]byte(`{"notification":{"id":"a/b","isReadBy":["u1"]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	updated, err := c.MarkNotificationRead(context.Background(), model.RoleStudent, "a/b")

	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/student/notifications/a%2Fb/read", gotPath)
	assert.True(t, updated.ReadBy("u1"))
}
