package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lee-cloete/drift/engine"
	"github.com/lee-cloete/drift/preset"
	"github.com/lee-cloete/drift/wavexport"
)

var (
	argMode      string
	argPreset    string
	argPureDrone bool
	argRandomize bool
	argDataDir   string

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Start the drone and play it live",

		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay()
		},
	}
)

func init() {
	playCmd.Flags().StringVarP(&argMode, "mode", "m", "", "mode preset to start from (deep, drift, machine, aurora)")
	playCmd.Flags().StringVarP(&argPreset, "preset", "p", "", "saved preset to load on start")
	playCmd.Flags().BoolVarP(&argPureDrone, "pure-drone", "", false, "mute the pulse and calm the drift")
	playCmd.Flags().BoolVarP(&argRandomize, "randomize", "r", false, "roll a fresh sound before starting")
	playCmd.Flags().StringVarP(&argDataDir, "data-dir", "d", defaultDataDir(), "directory for presets and exported recordings")
	rootCmd.AddCommand(playCmd)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".drift")
}

func newEngine() (*engine.Engine, error) {
	store, err := preset.NewStore(argDataDir)
	if err != nil {
		return nil, fmt.Errorf("open preset store: %w", err)
	}
	return engine.New(engine.Config{
		Store:  store,
		Export: wavexport.NewSink(filepath.Join(argDataDir, "recordings")),
	}), nil
}

func applyStartupFlags(eng *engine.Engine) error {
	if argPreset != "" {
		if !eng.LoadPreset(argPreset) {
			return fmt.Errorf("preset %q not found", argPreset)
		}
	}
	if argMode != "" {
		eng.SetMode(engine.Mode(argMode))
		if eng.Params().Mode != engine.Mode(argMode) {
			return fmt.Errorf("unknown mode %q", argMode)
		}
	}
	if argRandomize {
		eng.Randomize()
	}
	eng.SetPureDrone(argPureDrone)
	return nil
}

func runPlay() error {
	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer eng.Dispose()

	if err := applyStartupFlags(eng); err != nil {
		return err
	}
	if err := eng.Start(); err != nil {
		return err
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   engine.SampleRate,
		ChannelCount: engine.ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	player := otoCtx.NewPlayer(eng)
	player.Play()
	defer player.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	sub, mid, air := eng.Frequencies()
	slog.Info("drone running", "sub_hz", sub, "mid_hz", mid, "air_hz", air)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case sig := <-signalCh:
			slog.Info("caught signal, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				p := eng.Params()
				slog.Info("still drifting", "darkness", p.Darkness, "motion", p.Motion, "density", p.Density)
			}
		}
	})
	if err := g.Wait(); err != nil {
		return err
	}
	eng.Stop()
	return nil
}
