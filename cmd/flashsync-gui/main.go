//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"

	"flashsync/internal/app"
	"flashsync/internal/audio"
	"flashsync/internal/core"
	"flashsync/internal/logging"
	"flashsync/internal/sims/swarm"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	factory, err := core.Lookup(cfg.Sim)
	if err != nil {
		log.Fatal(err)
	}

	sim := factory(nil)
	sim.Reset(cfg.Seed)

	if s, ok := sim.(*swarm.Swarm); ok && cfg.Sound {
		chirp := audio.DefaultChirpConfig()
		spk, err := audio.OpenSpeaker(chirp.SampleRate)
		if err != nil {
			logging.Warn().Add(logging.ErrorField(err)).Msg("audio disabled")
		} else {
			defer spk.Close()
			s.AddResponder(audio.NewChirper(chirp, spk, s.Size().W))
		}
	}

	game := app.New(sim, cfg.Scale, cfg.Seed, cfg.Panel)
	size := sim.Size()

	ebiten.SetWindowTitle("flashsync: " + sim.Name())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(size.W*cfg.Scale+cfg.Panel, size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
