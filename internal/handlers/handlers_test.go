package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/hub"
	"github.com/vancomm/minefield/internal/middleware"
	"github.com/vancomm/minefield/internal/mines"
)

type testServer struct {
	hub    *hub.Hub
	jwt    *config.JWT
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := hub.New(ctx, log, config.Hub{Retention: time.Minute, SweepInterval: time.Hour}, rand.New(rand.NewPCG(1, 2)))

	j, err := config.NewJWT(config.JWTConfig{Secret: "s3cret", TokenLifetime: time.Hour})
	require.NoError(t, err)
	ws, err := config.NewWebSocket(config.WebSocketConfig{})
	require.NoError(t, err)

	game := NewGameHandler(log, h, j, ws)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /difficulties", game.Difficulties)
	mux.HandleFunc("POST /game", game.NewGame)
	mux.HandleFunc("GET /game/{id}", game.Fetch)
	mux.HandleFunc("POST /game/{id}/click", game.Click)
	mux.HandleFunc("POST /game/{id}/mode", game.SetMode)
	mux.HandleFunc("POST /game/{id}/forfeit", game.Forfeit)
	mux.HandleFunc("POST /game/{id}/answer", game.ToggleAnswer)
	mux.HandleFunc("GET /game/{id}/connect", game.ConnectWS)

	return &testServer{
		hub:    h,
		jwt:    j,
		router: middleware.Auth(log, j)(mux),
	}
}

func (s *testServer) do(t *testing.T, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, target, nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)
	return w
}

func decodeSession(t *testing.T, w *httptest.ResponseRecorder) GameSessionDTO {
	t.Helper()
	var dto GameSessionDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
	return dto
}

func (s *testServer) newGame(t *testing.T, query string) GameSessionDTO {
	t.Helper()
	w := s.do(t, "POST", "/game?"+query, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeSession(t, w)
}

func safeCell(t *testing.T, s *testServer, id string) int {
	t.Helper()
	entry, err := s.hub.Get(id)
	require.NoError(t, err)
	f := entry.Session.Field()
	for i := range f.Cells() {
		if !f.IsMine(i) {
			return i
		}
	}
	t.Fatal("no safe cell")
	return -1
}

func TestDifficulties(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, "GET", "/difficulties", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []DifficultyDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, DifficultyDTO{Name: "easy", GridSize: 8, MineNumber: 10, Seconds: 240, Seed: "8:10:240"}, got[0])
	assert.Equal(t, "medium", got[1].Name)
	assert.Equal(t, "hard", got[2].Name)
}

func TestNewGame(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		query      string
		size       int
		mines      int
		timeLeft   int64
		statusCode int
	}{
		{"", 10, 15, 240, http.StatusCreated},
		{"difficulty=easy", 8, 10, 240, http.StatusCreated},
		{"difficulty=HARD&seconds=30", 12, 20, 30, http.StatusCreated},
		{"grid_size=5&mine_number=3", 5, 3, 240, http.StatusCreated},
		{"difficulty=insane", 0, 0, 0, http.StatusBadRequest},
		{"difficulty=easy&grid_size=5", 0, 0, 0, http.StatusBadRequest},
		{"grid_size=3&mine_number=9", 0, 0, 0, http.StatusBadRequest},
		{"grid_size=abc", 0, 0, 0, http.StatusBadRequest},
		{"seconds=-1", 0, 0, 0, http.StatusBadRequest},
		{"seconds=86401", 0, 0, 0, http.StatusBadRequest},
		{"seconds=9223372036", 0, 0, 0, http.StatusBadRequest},
		{"grid_size=30000&mine_number=1", 0, 0, 0, http.StatusBadRequest},
		{"grid_size=4294967297&mine_number=0", 0, 0, 0, http.StatusBadRequest},
	}

	for _, test := range tests {
		t.Run(test.query, func(t *testing.T) {
			w := s.do(t, "POST", "/game?"+test.query, "")
			require.Equal(t, test.statusCode, w.Code, w.Body.String())
			if test.statusCode != http.StatusCreated {
				assert.Contains(t, w.Body.String(), `"error"`)
				return
			}
			dto := decodeSession(t, w)
			assert.Equal(t, test.size, dto.GridSize)
			assert.Equal(t, test.mines, dto.MineNumber)
			assert.Equal(t, test.timeLeft, dto.TimeLeft)
			assert.Equal(t, mines.Processing, dto.State)
			assert.Equal(t, mines.ModeMine, dto.Mode)
			assert.Equal(t, test.mines, dto.RemainingFlags)
			assert.Len(t, dto.Grid, test.size*test.size)
			assert.NotEmpty(t, dto.Token)
			assert.Nil(t, dto.EndedAt)
			for _, c := range dto.Grid {
				assert.Equal(t, mines.Unknown, c)
			}
		})
	}
}

func TestFetch(t *testing.T) {
	s := newTestServer(t)
	game := s.newGame(t, "difficulty=easy")

	w := s.do(t, "GET", "/game/"+game.GameSessionId, "")
	require.Equal(t, http.StatusOK, w.Code)
	dto := decodeSession(t, w)
	assert.Equal(t, game.GameSessionId, dto.GameSessionId)
	assert.Empty(t, dto.Token)

	w = s.do(t, "GET", "/game/00000000-0000-0000-0000-000000000000", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, "GET", "/game/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMutationsRequireToken(t *testing.T) {
	s := newTestServer(t)
	game := s.newGame(t, "difficulty=easy")
	other := s.newGame(t, "difficulty=easy")

	for _, path := range []string{"/click?index=0", "/mode?mode=flag", "/forfeit", "/answer"} {
		t.Run(path, func(t *testing.T) {
			w := s.do(t, "POST", "/game/"+game.GameSessionId+path, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = s.do(t, "POST", "/game/"+game.GameSessionId+path, other.Token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = s.do(t, "POST", "/game/"+game.GameSessionId+path, "garbage")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	w := s.do(t, "GET", "/game/"+game.GameSessionId, "")
	assert.Equal(t, mines.Processing, decodeSession(t, w).State)
}

func TestClick(t *testing.T) {
	s := newTestServer(t)
	game := s.newGame(t, "difficulty=easy")
	base := "/game/" + game.GameSessionId
	i := safeCell(t, s, game.GameSessionId)

	w := s.do(t, "POST", base+"/click?mode=flag&index="+fmt.Sprint(i), game.Token)
	require.Equal(t, http.StatusOK, w.Code)
	dto := decodeSession(t, w)
	assert.Equal(t, mines.Flagged, dto.Grid[i])
	assert.Equal(t, 9, dto.RemainingFlags)

	w = s.do(t, "POST", base+"/click?mode=flag&index="+fmt.Sprint(i), game.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mines.Unknown, decodeSession(t, w).Grid[i])

	x, y := i%8, i/8
	w = s.do(t, "POST", fmt.Sprintf("%s/click?x=%d&y=%d", base, x, y), game.Token)
	require.Equal(t, http.StatusOK, w.Code)
	dto = decodeSession(t, w)
	assert.GreaterOrEqual(t, dto.Grid[i], mines.CellStatus(0))
	assert.Less(t, dto.RemainingSafeCells, 54)

	for _, query := range []string{"", "index=64", "index=-1", "x=8&y=0", "x=1", "index=0&x=0&y=0", "index=0&mode=bogus", "index=a"} {
		w = s.do(t, "POST", base+"/click?"+query, game.Token)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestSetModeAndForfeit(t *testing.T) {
	s := newTestServer(t)
	game := s.newGame(t, "difficulty=easy")
	base := "/game/" + game.GameSessionId

	w := s.do(t, "POST", base+"/mode?mode=flag", game.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mines.ModeFlag, decodeSession(t, w).Mode)

	i := safeCell(t, s, game.GameSessionId)
	w = s.do(t, "POST", base+"/click?index="+fmt.Sprint(i), game.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mines.Flagged, decodeSession(t, w).Grid[i])

	w = s.do(t, "POST", base+"/mode", game.Token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, "POST", base+"/mode?mode=over", game.Token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "POST", base+"/forfeit", game.Token)
	require.Equal(t, http.StatusOK, w.Code)
	dto := decodeSession(t, w)
	assert.Equal(t, mines.Ending, dto.State)
	assert.Equal(t, mines.ModeOver, dto.Mode)
	assert.True(t, dto.ShowAnswer)
	assert.NotNil(t, dto.EndedAt)
	assert.Equal(t, mines.WrongFlag, dto.Grid[i])

	w = s.do(t, "POST", base+"/answer", game.Token)
	require.Equal(t, http.StatusOK, w.Code)
	dto = decodeSession(t, w)
	assert.False(t, dto.ShowAnswer)
	assert.Equal(t, mines.Flagged, dto.Grid[i])

	w = s.do(t, "POST", base+"/mode?mode=mine", game.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mines.ModeOver, decodeSession(t, w).Mode)
}

func dialGame(t *testing.T, srv *httptest.Server, game GameSessionDTO) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/" + game.GameSessionId + "/connect?token=" + game.Token
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// readUntil reads frames until one satisfies ok.
func readUntil(t *testing.T, c *websocket.Conn, ok func(map[string]any) bool) map[string]any {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var frame map[string]any
		require.NoError(t, c.ReadJSON(&frame))
		if ok(frame) {
			return frame
		}
	}
}

func TestConnectWS(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	game := s.newGame(t, "difficulty=easy")
	c := dialGame(t, srv, game)

	frame := readUntil(t, c, func(map[string]any) bool { return true })
	assert.Equal(t, game.GameSessionId, frame["game_session_id"])
	assert.Equal(t, "mine", frame["mode"])

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("m flag\nf 0")))
	frame = readUntil(t, c, func(f map[string]any) bool {
		return f["remaining_flags"] == float64(9)
	})
	assert.Equal(t, "flag", frame["mode"])

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("x 1")))
	frame = readUntil(t, c, func(f map[string]any) bool { return f["error"] != nil })
	assert.Equal(t, "unknown command", frame["error"])

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("q")))
	frame = readUntil(t, c, func(f map[string]any) bool { return f["state"] == "ending" })
	assert.Equal(t, "over", frame["mode"])
	assert.Equal(t, true, frame["show_answer"])
}

func TestConnectWSRequiresToken(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	game := s.newGame(t, "difficulty=easy")
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/" + game.GameSessionId + "/connect"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
