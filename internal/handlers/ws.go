package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minefield/internal/hub"
	"github.com/vancomm/minefield/internal/mines"
)

// ConnectWS streams snapshots of a session to the client and executes
// the commands it sends, one per line. A snapshot is pushed after each
// batch of commands and after every session event.
func (g GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	entry, ok := g.authorize(w, r)
	if !ok {
		return
	}

	c, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.WithError(err).Warn("upgrade failed")
		return
	}
	defer c.Close()

	log := g.log.WithField("session", entry.ID)
	log.Debug("ws connected")

	notify := make(chan struct{}, 1)
	poke := func() {
		select {
		case notify <- struct{}{}:
		default:
		}
	}
	unsubscribe := entry.Session.Subscribe(func(mines.Event) { poke() })
	defer unsubscribe()
	poke()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)
	errFrames := make(chan error)

	eg.Go(func() error {
		defer cancel()
		return g.readCommands(ctx, c, log, entry.Session, errFrames, poke)
	})
	eg.Go(func() error {
		// closing the connection unblocks the reader
		defer c.Close()
		return g.writeSnapshots(ctx, c, log, entry, notify, errFrames)
	})

	if err := eg.Wait(); err != nil {
		log.WithError(err).Warn("ws connection failed")
		return
	}
	log.Debug("ws disconnected")
}

func (g GameHandler) readCommands(
	ctx context.Context,
	c *websocket.Conn,
	log *logrus.Entry,
	s *mines.Session,
	errFrames chan<- error,
	poke func(),
) error {
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
				ctx.Err() != nil {
				return nil
			}
			return err
		}
		if mt != websocket.TextMessage {
			continue
		}
		text := strings.TrimSpace(string(message))
		log.Debug("> ", text)
		if err := executeBatch(s, text); err != nil {
			select {
			case errFrames <- err:
			case <-ctx.Done():
				return nil
			}
		}
		poke()
	}
}

func (g GameHandler) writeSnapshots(
	ctx context.Context,
	c *websocket.Conn,
	log *logrus.Entry,
	entry *hub.Entry,
	notify <-chan struct{},
	errFrames <-chan error,
) error {
	for {
		var v any
		select {
		case <-ctx.Done():
			return nil
		case err := <-errFrames:
			v = wrapError(err)
		case <-notify:
			v = NewGameSessionDTO(entry)
		}
		if err := c.WriteJSON(v); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		log.Debug("< <session data>")
	}
}
