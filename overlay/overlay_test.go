package overlay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/bikeview/viewer"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnknownPart = errors.New("unknown part")

type fakeController struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeController) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeController) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeController) SelectLabel(id string) error {
	if id == "Bell" {
		return errUnknownPart
	}
	f.record("select:" + id)
	return nil
}

func (f *fakeController) CloseInfoPanel() error { f.record("close"); return nil }
func (f *fakeController) SelectRepair() error   { f.record("repair"); return nil }
func (f *fakeController) SelectUpgrade() error  { f.record("upgrade"); return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (Server, *fakeController, *httptest.Server) {
	t.Helper()
	ctrl := &fakeController{}
	s := NewServer(ctrl, WithLogger(quietLogger()))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})
	return s, ctrl, ts
}

func dial(t *testing.T, s Server, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	before := s.Clients()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(t, func() bool { return s.Clients() == before+1 }, time.Second, 5*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m Message
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func TestDispatch(t *testing.T) {
	ctrl := &fakeController{}
	s := NewServer(ctrl, WithLogger(quietLogger()))

	require.NoError(t, s.Dispatch(Action{Type: ActionSelectLabel, Part: "Frame"}))
	require.NoError(t, s.Dispatch(Action{Type: ActionSelectUpgrade}))
	require.NoError(t, s.Dispatch(Action{Type: ActionSelectRepair}))
	require.NoError(t, s.Dispatch(Action{Type: ActionCloseInfoPanel}))
	assert.Equal(t, []string{"select:Frame", "upgrade", "repair", "close"}, ctrl.Calls())

	assert.ErrorIs(t, s.Dispatch(Action{Type: "spin"}), ErrUnknownAction)
	assert.ErrorIs(t, s.Dispatch(Action{Type: ActionSelectLabel, Part: "Bell"}), errUnknownPart)
	assert.ErrorIs(t, NewServer(nil).Dispatch(Action{Type: ActionSelectRepair}), ErrUnknownAction)
}

func TestPublishReachesClients(t *testing.T) {
	s, _, ts := newTestServer(t)
	a := dial(t, s, ts)
	b := dial(t, s, ts)

	s.Publish(viewer.Snapshot{Frame: 7, Status: "ready", Labels: []viewer.Label{{ID: "Frame", X: 400, Y: 300, Visible: true}}})

	for _, conn := range []*websocket.Conn{a, b} {
		m := readMessage(t, conn)
		assert.Equal(t, MessageSnapshot, m.Type)
		require.NotNil(t, m.Snapshot)
		assert.Equal(t, uint64(7), m.Snapshot.Frame)
		require.Len(t, m.Snapshot.Labels, 1)
		assert.Equal(t, float32(400), m.Snapshot.Labels[0].X)
	}
}

func TestLateClientGetsLatestSnapshot(t *testing.T) {
	s, _, ts := newTestServer(t)
	s.Publish(viewer.Snapshot{Frame: 1})
	s.Publish(viewer.Snapshot{Frame: 2, Status: "failed", Error: "load failure: models/B.glb: EOF"})

	conn := dial(t, s, ts)
	m := readMessage(t, conn)
	require.NotNil(t, m.Snapshot)
	assert.Equal(t, uint64(2), m.Snapshot.Frame)
	assert.Equal(t, "load failure: models/B.glb: EOF", m.Snapshot.Error)
}

func TestClientActions(t *testing.T) {
	s, ctrl, ts := newTestServer(t)
	conn := dial(t, s, ts)

	require.NoError(t, conn.WriteJSON(Action{Type: ActionSelectLabel, Part: "Chain"}))
	require.NoError(t, conn.WriteJSON(Action{Type: ActionSelectUpgrade}))
	require.Eventually(t, func() bool { return len(ctrl.Calls()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"select:Chain", "upgrade"}, ctrl.Calls())

	require.NoError(t, conn.WriteJSON(Action{Type: "spin"}))
	m := readMessage(t, conn)
	assert.Equal(t, MessageError, m.Type)
	assert.Contains(t, m.Error, "unknown action")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	m = readMessage(t, conn)
	assert.Equal(t, MessageError, m.Type)
	assert.Contains(t, m.Error, "malformed action")

	require.NoError(t, conn.WriteJSON(Action{Type: ActionCloseInfoPanel}))
	require.Eventually(t, func() bool { return len(ctrl.Calls()) == 3 }, time.Second, 5*time.Millisecond)
}

func TestDisconnectUnregisters(t *testing.T) {
	s, _, ts := newTestServer(t)
	conn := dial(t, s, ts)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return s.Clients() == 0 }, time.Second, 5*time.Millisecond)
	s.Publish(viewer.Snapshot{Frame: 3})
}

func TestSnapshotEndpoint(t *testing.T) {
	s, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/snapshot")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	s.Publish(viewer.Snapshot{Frame: 9, Panel: viewer.Panel{Open: true, Name: "Frame", Mode: "repair"}})
	resp, err = http.Get(ts.URL + "/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var m Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	require.NotNil(t, m.Snapshot)
	assert.True(t, m.Snapshot.Panel.Open)
	assert.Equal(t, "repair", m.Snapshot.Panel.Mode)
}

func TestIndexPage(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), `"/ws"`)
	assert.Contains(t, string(body), "selectLabel")
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	s := NewServer(&fakeController{}, WithAddr("127.0.0.1:0"), WithLogger(quietLogger()))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
