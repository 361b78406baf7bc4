package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/tilted/internal/config"
	"firestige.xyz/tilted/internal/dispatch"
	"firestige.xyz/tilted/internal/hci"
	"firestige.xyz/tilted/internal/log"
	"firestige.xyz/tilted/internal/replay"
	"firestige.xyz/tilted/internal/scanner"
)

var replayCmd = &cobra.Command{
	Use:   "replay <capture>",
	Short: "Decode a Bluetooth HCI capture and dispatch its readings",
	Long: `Replay a pcap or pcapng capture of HCI traffic (link type 187 or 201, as
written by btmon or tcpdump -i bluetooth0) through the decoder and the
configured emitters. Rate limits apply as they would live.

Examples:
  tilted replay -c tilted.toml fermentation.pcap`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		_, err := runReplay(ctx, settings, args[0])
		return err
	},
}

func runReplay(ctx context.Context, s *config.Settings, path string) (replay.Stats, error) {
	emitters, err := buildEmitters(s.Config)
	if err != nil {
		return replay.Stats{}, err
	}
	defer closeEmitters(emitters)

	logger := log.GetLogger()
	d := dispatch.New(emitters, s.EmitTimeout)
	readings := 0
	st, err := replay.File(ctx, path, func(ctx context.Context, f hci.Frame) {
		readings += scanner.Process(ctx, f, d, logger)
	})
	logger.WithFields(map[string]interface{}{
		"packets":  st.Packets,
		"frames":   st.Frames,
		"skipped":  st.Skipped,
		"readings": readings,
	}).Info("replay finished")
	return st, err
}
