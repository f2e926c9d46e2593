package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/vancomm/minefield/internal/app"
	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/mines"
)

func main() {
	mainCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	fs := config.Flags()
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		logrus.Fatal("unable to parse flags: ", err)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		logrus.Fatal("unable to load config: ", err)
	}

	log, err := config.NewLogger(*cfg)
	if err != nil {
		logrus.Fatal("unable to set up logging: ", err)
	}
	mines.Log = log

	log.Info("starting up, mode = ", cfg.Mode)
	log.WithFields(cfg.Fields()).Debug("config")

	a, err := app.New(log, *cfg)
	if err != nil {
		log.Fatal(err)
	}

	if err := a.Start(mainCtx); err != nil {
		log.Fatal(err)
	}

	log.Info("bye")
}
