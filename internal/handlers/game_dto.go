package handlers

import (
	"fmt"
	"time"

	"github.com/gorilla/schema"

	"github.com/vancomm/minefield/internal/hub"
	"github.com/vancomm/minefield/internal/mines"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

// CreateGameDTO picks either a preset by name or a custom board. With
// neither, the medium preset is used.
type CreateGameDTO struct {
	Difficulty string `schema:"difficulty"`
	GridSize   int    `schema:"grid_size"`
	MineNumber int    `schema:"mine_number"`
	Seconds    int    `schema:"seconds"`
}

func ParseCreateGameDTO(src map[string][]string) (CreateGameDTO, error) {
	var dto CreateGameDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

func (dto CreateGameDTO) Params() (mines.Params, error) {
	var p mines.Params
	switch {
	case dto.Difficulty != "" && dto.GridSize != 0:
		return p, fmt.Errorf("difficulty and grid_size are mutually exclusive")
	case dto.Difficulty != "":
		d, err := mines.ParseDifficulty(dto.Difficulty)
		if err != nil {
			return p, err
		}
		p = d.Params
	case dto.GridSize != 0:
		p = mines.Params{
			GridSize:   dto.GridSize,
			MineNumber: dto.MineNumber,
			Duration:   mines.DefaultDuration,
		}
	default:
		p = mines.Medium.Params
	}
	if dto.Seconds != 0 {
		d, err := mines.Seconds(int64(dto.Seconds))
		if err != nil {
			return p, err
		}
		p.Duration = d
	}
	return p, p.Validate()
}

// ClickDTO addresses a cell either by index or by x and y.
type ClickDTO struct {
	Index *int   `schema:"index"`
	X     *int   `schema:"x"`
	Y     *int   `schema:"y"`
	Mode  string `schema:"mode"`
}

func ParseClickDTO(src map[string][]string) (ClickDTO, error) {
	var dto ClickDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

var (
	ErrNoCell      = fmt.Errorf("either index or x and y must be set")
	ErrInvalidCell = fmt.Errorf("invalid cell position")
)

func (dto ClickDTO) Cell(b mines.Board) (int, error) {
	switch {
	case dto.Index != nil && (dto.X != nil || dto.Y != nil):
		return 0, ErrNoCell
	case dto.Index != nil:
		if !b.IndexInBounds(*dto.Index) {
			return 0, ErrInvalidCell
		}
		return *dto.Index, nil
	case dto.X != nil && dto.Y != nil:
		if !b.PointInBounds(*dto.X, *dto.Y) {
			return 0, ErrInvalidCell
		}
		return b.Index(*dto.X, *dto.Y), nil
	default:
		return 0, ErrNoCell
	}
}

type ModeDTO struct {
	Mode string `schema:"mode,required"`
}

func ParseModeDTO(src map[string][]string) (mines.OperatorMode, error) {
	var dto ModeDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return 0, err
	}
	return mines.ParseMode(dto.Mode)
}

type DifficultyDTO struct {
	Name       string `json:"name"`
	GridSize   int    `json:"grid_size"`
	MineNumber int    `json:"mine_number"`
	Seconds    int64  `json:"seconds"`
	Seed       string `json:"seed"`
}

func NewDifficultyDTO(d mines.Difficulty) DifficultyDTO {
	return DifficultyDTO{
		Name:       d.Name,
		GridSize:   d.GridSize,
		MineNumber: d.MineNumber,
		Seconds:    int64(d.Duration / time.Second),
		Seed:       d.Seed(),
	}
}

type GameSessionDTO struct {
	GameSessionId      string             `json:"game_session_id"`
	Token              string             `json:"token,omitempty"`
	Seed               string             `json:"seed"`
	GridSize           int                `json:"grid_size"`
	MineNumber         int                `json:"mine_number"`
	State              mines.GameState    `json:"state"`
	Mode               mines.OperatorMode `json:"mode"`
	RemainingFlags     int                `json:"remaining_flags"`
	RemainingSafeCells int                `json:"remaining_safe_cells"`
	TimeLeft           int64              `json:"time_left"`
	ShowAnswer         bool               `json:"show_answer"`
	Grid               mines.Grid         `json:"grid"`
	StartedAt          int64              `json:"started_at"`
	EndedAt            *int64             `json:"ended_at,omitempty"`
}

func NewGameSessionDTO(e *hub.Entry) *GameSessionDTO {
	snap := e.Session.Snapshot()

	var endedAtInt *int64
	if snap.State.Terminal() {
		endedAt, ok := e.EndedAt()
		if !ok {
			endedAt = time.Now().UTC()
		}
		ms := endedAt.UnixMilli()
		endedAtInt = &ms
	}

	dto := &GameSessionDTO{
		GameSessionId:      e.ID.String(),
		Seed:               snap.Seed(),
		GridSize:           snap.GridSize,
		MineNumber:         snap.MineNumber,
		State:              snap.State,
		Mode:               snap.Mode,
		RemainingFlags:     snap.RemainingFlags,
		RemainingSafeCells: snap.RemainingSafeCells,
		TimeLeft:           int64(snap.TimeLeft / time.Second),
		ShowAnswer:         snap.ShowAnswer,
		Grid:               snap.Grid,
		StartedAt:          e.StartedAt.UnixMilli(),
		EndedAt:            endedAtInt,
	}
	return dto
}
