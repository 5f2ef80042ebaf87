package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lee-cloete/drift/engine"
	"github.com/lee-cloete/drift/preset"
	"github.com/lee-cloete/drift/wavexport"
)

var (
	argRenderSeconds float64
	argRenderOut     string

	renderCmd = &cobra.Command{
		Use:   "render",
		Short: "Render the drone offline and export it as WAV",

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender()
		},
	}
)

func init() {
	renderCmd.Flags().Float64VarP(&argRenderSeconds, "seconds", "s", 60, "length of the rendered take in seconds")
	renderCmd.Flags().StringVarP(&argRenderOut, "out", "o", ".", "directory to write the exported file into")
	renderCmd.Flags().StringVarP(&argMode, "mode", "m", "", "mode preset to start from (deep, drift, machine, aurora)")
	renderCmd.Flags().StringVarP(&argPreset, "preset", "p", "", "saved preset to load before rendering")
	renderCmd.Flags().BoolVarP(&argPureDrone, "pure-drone", "", false, "mute the pulse and calm the drift")
	renderCmd.Flags().BoolVarP(&argRandomize, "randomize", "r", false, "roll a fresh sound before rendering")
	renderCmd.Flags().StringVarP(&argDataDir, "data-dir", "d", defaultDataDir(), "directory holding saved presets")
	rootCmd.AddCommand(renderCmd)
}

func runRender() error {
	if argRenderSeconds <= 0 {
		return fmt.Errorf("seconds must be positive, got %v", argRenderSeconds)
	}
	store, err := preset.NewStore(argDataDir)
	if err != nil {
		return fmt.Errorf("open preset store: %w", err)
	}
	// Recordings from this command land in --out, not the data dir.
	eng := engine.New(engine.Config{
		Store:  store,
		Export: wavexport.NewSink(argRenderOut),
	})
	defer eng.Dispose()

	if err := applyStartupFlags(eng); err != nil {
		return err
	}
	if err := eng.Start(); err != nil {
		return err
	}
	defer eng.Stop()

	eng.StartRecording()

	totalBytes := int(argRenderSeconds * engine.SampleRate * engine.ChannelCount * 2)
	totalBytes -= totalBytes % (engine.ChannelCount * 2)
	buf := make([]byte, 16384)
	for rendered := 0; rendered < totalBytes; {
		want := len(buf)
		if remaining := totalBytes - rendered; remaining < want {
			want = remaining
		}
		n, err := eng.Read(buf[:want])
		if err != nil && err != io.EOF {
			return fmt.Errorf("render: %w", err)
		}
		rendered += n
	}

	eng.StopRecording()
	slog.Info("render finished", "seconds", argRenderSeconds, "dir", argRenderOut)
	return nil
}
