package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-health-monitor/internal/core/model"
	"github.com/penwyp/go-health-monitor/internal/core/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func closedServerURL() string {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	return url
}

func TestNewClient(t *testing.T) {
	c := NewClient("http://example.test/", 0)
	assert.Equal(t, "http://example.test", c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}

func TestClient_Writes(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, `{}`)
	c := NewClient(server.URL, time.Second)
	ctx := context.Background()

	require.NoError(t, c.UpdateWeight(ctx, "u1", model.WeightUpdate{CurrentWeight: 71.5, NewBodyRecID: "br1", CurrentDate: "2024-05-02"}))
	require.NoError(t, c.LogWater(ctx, "u1", model.WaterLog{IntakeID: "wr1", Date: "2024-05-02", Goal: 2000}))
	require.NoError(t, c.AddFasting(ctx, "u1", model.FastingRecord{ID: "fr1", StartTimeStamp: 1, EndTimeStamp: 2}))

	require.NoError(t, c.SetHeight(ctx, "u1", 178))

	require.Len(t, *requests, 4)
	assert.Equal(t, http.MethodPut, (*requests)[0].Method)
	assert.Equal(t, "/api/users/u1/weight", (*requests)[0].Path)
	assert.Contains(t, (*requests)[0].Body, `"newBodyRecId":"br1"`)
	assert.Equal(t, "/api/users/u1/water", (*requests)[1].Path)
	assert.Equal(t, "/api/users/u1/fasting", (*requests)[2].Path)
	assert.Equal(t, "/api/users/u1/height", (*requests)[3].Path)
	assert.Contains(t, (*requests)[3].Body, `"height":178`)
}

func TestClient_Metadata(t *testing.T) {
	md := model.Metadata{CurrentWeight: 70, BodyRecords: []model.BodyRecord{{ID: "br1", Type: "weight", Value: 70}}}
	data, err := sonic.Marshal(md)
	require.NoError(t, err)

	server, _ := newTestServer(t, http.StatusOK, string(data))
	got, err := NewClient(server.URL, time.Second).Metadata(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 70.0, got.CurrentWeight)
	assert.Len(t, got.BodyRecords, 1)
}

func TestClient_APIError(t *testing.T) {
	server, _ := newTestServer(t, http.StatusBadRequest, `{"error":"weight must be > 0"}`)

	err := NewClient(server.URL, time.Second).Ping(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "weight must be > 0", apiErr.Message)
	assert.False(t, IsUnreachable(err))
}

func TestClient_PlainTextError(t *testing.T) {
	server, _ := newTestServer(t, http.StatusBadGateway, "upstream down\n")

	err := NewClient(server.URL, time.Second).Ping(context.Background())
	assert.EqualError(t, err, "service returned status 502: upstream down")
}

func TestClient_Unreachable(t *testing.T) {
	c := NewClient(closedServerURL(), time.Second)

	err := c.UpdateWeight(context.Background(), "u1", model.WeightUpdate{CurrentWeight: 70})
	require.Error(t, err)
	assert.True(t, IsUnreachable(err))
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	err := NewClient(server.URL, 20*time.Millisecond).Ping(context.Background())
	assert.True(t, IsUnreachable(err))
}

func TestClient_CancelledIsNotUnreachable(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewClient(server.URL, time.Second).Ping(ctx)
	require.Error(t, err)
	assert.False(t, IsUnreachable(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassify(t *testing.T) {
	assert.Nil(t, classify(nil))

	plain := errors.New("boom")
	assert.Equal(t, plain, classify(plain))

	wrapped := classify(fmt.Errorf("wrapped: %w", context.DeadlineExceeded))
	assert.True(t, IsUnreachable(wrapped))
	assert.ErrorIs(t, wrapped, context.DeadlineExceeded)
}

func TestDispatcher(t *testing.T) {
	server, requests := newTestServer(t, http.StatusOK, `{}`)
	d := NewDispatcher(NewClient(server.URL, time.Second))
	var _ queue.Dispatcher = d

	weight, err := model.NewQueuedAction("u1", "qa1", model.InvokerUpdateWeight, model.ActionUpdateWeight,
		model.WeightUpdate{CurrentWeight: 70, NewBodyRecID: "br1", CurrentDate: "2024-05-02"})
	require.NoError(t, err)
	water, err := model.NewQueuedAction("u1", "qa2", model.InvokerLogWater, model.ActionLogWater,
		model.WaterLog{IntakeID: "wr1", Date: "2024-05-02"})
	require.NoError(t, err)
	fast, err := model.NewQueuedAction("u1", "qa3", model.InvokerAddFasting, model.ActionAddFasting,
		model.FastingRecord{ID: "fr1", StartTimeStamp: 1, EndTimeStamp: 2})
	require.NoError(t, err)

	for _, a := range []model.QueuedAction{weight, water, fast} {
		require.NoError(t, d.Dispatch(context.Background(), a))
	}
	require.NoError(t, c.SetHeight(ctx, "u1", 178))

	require.Len(t, *requests, 4)
	assert.Equal(t, "/api/users/u1/fasting", (*requests)[2].Path)

	err = d.Dispatch(context.Background(), model.QueuedAction{ActionID: "x", Invoker: "deleteEverything"})
	assert.ErrorContains(t, err, "unknown invoker")

	err = d.Dispatch(context.Background(), model.QueuedAction{ActionID: "y", Invoker: model.InvokerLogWater})
	assert.ErrorContains(t, err, "has no param 0")
}
