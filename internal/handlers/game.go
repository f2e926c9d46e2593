package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/hub"
	"github.com/vancomm/minefield/internal/middleware"
	"github.com/vancomm/minefield/internal/mines"
)

var ErrUnauthorized = fmt.Errorf("a valid token for this game session is required")

type GameHandler struct {
	log *logrus.Logger
	hub *hub.Hub
	jwt *config.JWT
	ws  *config.WebSocket
}

func NewGameHandler(
	log *logrus.Logger,
	h *hub.Hub,
	jwt *config.JWT,
	ws *config.WebSocket,
) *GameHandler {
	handler := &GameHandler{
		log: log,
		hub: h,
		jwt: jwt,
		ws:  ws,
	}

	return handler
}

func (g GameHandler) Difficulties(w http.ResponseWriter, r *http.Request) {
	ds := mines.Difficulties()
	dtos := make([]DifficultyDTO, len(ds))
	for i, d := range ds {
		dtos[i] = NewDifficultyDTO(d)
	}
	sendJSONOrLog(w, g.log, http.StatusOK, dtos)
}

func (g GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseCreateGameDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, g.log, http.StatusBadRequest, err)
		return
	}

	params, err := dto.Params()
	if err != nil {
		sendErrorOrLog(w, g.log, http.StatusBadRequest, err)
		return
	}

	entry, err := g.hub.Create(params)
	switch {
	case errors.Is(err, mines.ErrConfiguration):
		sendErrorOrLog(w, g.log, http.StatusBadRequest, err)
		return
	case errors.Is(err, hub.ErrFull), errors.Is(err, hub.ErrClosed):
		sendErrorOrLog(w, g.log, http.StatusServiceUnavailable, err)
		return
	case err != nil:
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("unable to create game session")
		return
	}

	token, err := g.jwt.Sign(g.jwt.NewSessionClaims(entry.ID.String()))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("unable to sign session token")
		return
	}

	session := NewGameSessionDTO(entry)
	session.Token = token
	sendJSONOrLog(w, g.log, http.StatusCreated, session)
}

// lookup finds the session named in the path or answers 404.
func (g GameHandler) lookup(w http.ResponseWriter, r *http.Request) (*hub.Entry, bool) {
	entry, err := g.hub.Get(r.PathValue("id"))
	if err != nil {
		sendErrorOrLog(w, g.log, http.StatusNotFound, err)
		return nil, false
	}
	return entry, true
}

// authorize is lookup plus a check that the request carries a token
// for this very session.
func (g GameHandler) authorize(w http.ResponseWriter, r *http.Request) (*hub.Entry, bool) {
	entry, ok := g.lookup(w, r)
	if !ok {
		return nil, false
	}
	claims, ok := middleware.SessionClaims(r.Context())
	if !ok || claims.SessionId != entry.ID.String() {
		sendErrorOrLog(w, g.log, http.StatusUnauthorized, ErrUnauthorized)
		return nil, false
	}
	return entry, true
}

func (g GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	entry, ok := g.lookup(w, r)
	if !ok {
		return
	}
	sendJSONOrLog(w, g.log, http.StatusOK, NewGameSessionDTO(entry))
}

func (g GameHandler) Click(w http.ResponseWriter, r *http.Request) {
	entry, ok := g.authorize(w, r)
	if !ok {
		return
	}

	dto, err := ParseClickDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, g.log, http.StatusBadRequest, err)
		return
	}

	session := entry.Session
	i, err := dto.Cell(session.Field().Board)
	if err != nil {
		sendErrorOrLog(w, g.log, http.StatusBadRequest, err)
		return
	}

	if dto.Mode == "" {
		session.ClickCurrent(i)
	} else {
		mode, err := mines.ParseMode(dto.Mode)
		if err != nil {
			sendErrorOrLog(w, g.log, http.StatusBadRequest, err)
			return
		}
		session.Click(i, mode)
	}

	sendJSONOrLog(w, g.log, http.StatusOK, NewGameSessionDTO(entry))
}

func (g GameHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	entry, ok := g.authorize(w, r)
	if !ok {
		return
	}

	mode, err := ParseModeDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, g.log, http.StatusBadRequest, err)
		return
	}
	entry.Session.SetMode(mode)

	sendJSONOrLog(w, g.log, http.StatusOK, NewGameSessionDTO(entry))
}

func (g GameHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	entry, ok := g.authorize(w, r)
	if !ok {
		return
	}
	entry.Session.Forfeit()
	sendJSONOrLog(w, g.log, http.StatusOK, NewGameSessionDTO(entry))
}

func (g GameHandler) ToggleAnswer(w http.ResponseWriter, r *http.Request) {
	entry, ok := g.authorize(w, r)
	if !ok {
		return
	}
	entry.Session.ToggleAnswer()
	sendJSONOrLog(w, g.log, http.StatusOK, NewGameSessionDTO(entry))
}
