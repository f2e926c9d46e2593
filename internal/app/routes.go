package app

import (
	"hash/maphash"
	"math/rand/v2"

	"github.com/vancomm/minefield/internal/handlers"
)

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func (a *App) loadRoutes() {
	game := handlers.NewGameHandler(a.log, a.hub, a.jwt, a.ws)

	a.router.HandleFunc("GET /difficulties", game.Difficulties)
	a.router.HandleFunc("POST /game", game.NewGame)
	a.router.HandleFunc("GET /game/{id}", game.Fetch)
	a.router.HandleFunc("POST /game/{id}/click", game.Click)
	a.router.HandleFunc("POST /game/{id}/mode", game.SetMode)
	a.router.HandleFunc("POST /game/{id}/forfeit", game.Forfeit)
	a.router.HandleFunc("POST /game/{id}/answer", game.ToggleAnswer)
	a.router.HandleFunc("GET /game/{id}/connect", game.ConnectWS)
}
