package handlers

import (
	"errors"
	"iter"
	"strconv"
	"strings"

	"github.com/vancomm/minefield/internal/mines"
)

// Maps known commands to number of arguments
var commandNargs = map[string]int{
	"g": 0,
	"o": 1,
	"f": 1,
	"c": 1,
	"m": 1,
	"r": 0,
	"q": 0,
}

func iterBySep(s string, sep string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		i := 0
		found := true
		var piece string
		for found {
			piece, s, found = strings.Cut(s, sep)
			if !yield(i, piece) {
				return
			}
			i += 1
		}
	}
}

func parseIndex(s *mines.Session, arg string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, errors.New("argument must be an int")
	}
	if !s.Field().IndexInBounds(i) {
		return 0, errors.New("invalid cell index")
	}
	return i, nil
}

// executeCommand runs one line of the live protocol against s.
func executeCommand(s *mines.Session, c string) error {
	parts := strings.Fields(c)
	if len(parts) == 0 {
		return errors.New("empty command")
	}
	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return errors.New("unknown command")
	}
	if nargs != len(parts)-1 {
		return errors.New("invalid number of arguments")
	}

	switch parts[0] {
	case "g":
		return nil
	case "o", "f", "c":
		i, err := parseIndex(s, parts[1])
		if err != nil {
			return err
		}
		switch parts[0] {
		case "o":
			s.Click(i, mines.ModeMine)
		case "f":
			s.Click(i, mines.ModeFlag)
		default:
			s.ClickCurrent(i)
		}
		return nil
	case "m":
		mode, err := mines.ParseMode(parts[1])
		if err != nil {
			return err
		}
		s.SetMode(mode)
		return nil
	case "r":
		s.ToggleAnswer()
		return nil
	case "q":
		s.Forfeit()
		return nil
	}
	return errors.New("invalid command")
}

// executeBatch runs the commands of text, one per line, skipping blank
// lines. It stops at the first command that fails.
func executeBatch(s *mines.Session, text string) error {
	for _, c := range iterBySep(text, "\n") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if err := executeCommand(s, c); err != nil {
			return err
		}
	}
	return nil
}
