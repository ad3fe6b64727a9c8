package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"social_quests_api/internal/model"
	"social_quests_api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLeaderboardSource struct {
	users []*model.User
}

func (s *stubLeaderboardSource) GetUserByID(_ context.Context, _ int64) (*model.User, error) {
	return nil, assert.AnError
}

func (s *stubLeaderboardSource) GetLeaderboard(_ context.Context) ([]*model.User, error) {
	return s.users, nil
}

func newHubServer(t *testing.T, us service.UserServiceI) (*LeaderboardHub, *httptest.Server) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	hub := NewLeaderboardHub(us)
	hub.Register(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return hub, srv
}

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/leaderboard"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestLeaderboardHub_InitialSnapshot(t *testing.T) {
	us := &stubLeaderboardSource{users: []*model.User{
		{Username: "alice", XPTotal: 120},
		{Username: "bob", XPTotal: 40},
	}}
	_, srv := newHubServer(t, us)

	conn := dialHub(t, srv)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string             `json:"type"`
		Data []leaderboardEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(frame, &msg))

	assert.Equal(t, "leaderboard", msg.Type)
	assert.Equal(t, []leaderboardEntry{
		{Username: "alice", XPTotal: 120},
		{Username: "bob", XPTotal: 40},
	}, msg.Data)
}

func TestLeaderboardHub_BroadcastsWhileClientsConnect(t *testing.T) {
	us := &stubLeaderboardSource{users: []*model.User{
		{Username: "alice", XPTotal: 10},
	}}
	hub, srv := newHubServer(t, us)

	stop := make(chan struct{})
	var notifiers sync.WaitGroup
	for i := 0; i < 4; i++ {
		notifiers.Add(1)
		go func() {
			defer notifiers.Done()
			for {
				select {
				case <-stop:
					return
				default:
					hub.LeaderboardChanged()
					time.Sleep(time.Millisecond)
				}
			}
		}()
	}

	const (
		clients         = 8
		framesPerClient = 5
	)

	var readers sync.WaitGroup
	errs := make(chan error, clients)

	// connect while broadcasts are in flight, the initial snapshot write
	// must never interleave with a broadcast write on the same connection
	for i := 0; i < clients; i++ {
		conn := dialHub(t, srv)
		readers.Add(1)
		go func(conn *websocket.Conn) {
			defer readers.Done()
			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			for n := 0; n < framesPerClient; n++ {
				_, frame, err := conn.ReadMessage()
				if err != nil {
					errs <- err
					return
				}
				var msg wsMessage
				if err := json.Unmarshal(frame, &msg); err != nil {
					errs <- err
					return
				}
				if msg.Type != "leaderboard" {
					errs <- fmt.Errorf("unexpected frame type %q", msg.Type)
					return
				}
			}
		}(conn)
	}

	readers.Wait()
	close(stop)
	notifiers.Wait()

	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestLeaderboardHub_DropIsIdempotent(t *testing.T) {
	us := &stubLeaderboardSource{}
	hub, srv := newHubServer(t, us)

	conn := dialHub(t, srv)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.NoError(t, err)

	conn.Close()

	// both the reader loop and a concurrent broadcast may observe the dead
	// connection, dropping twice must not panic
	assert.NotPanics(t, func() {
		for i := 0; i < 3; i++ {
			hub.LeaderboardChanged()
			time.Sleep(10 * time.Millisecond)
		}
	})
}
