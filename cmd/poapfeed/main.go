package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "poapfeed",
		Short:        "POAP transfer feed for Discord",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Watch both networks and post transfers",
		RunE:  runFeed,
	}
	addCommonFlags(runCmd.Flags())
	runCmd.Flags().Duration("reconnect-delay", 5*time.Second, "fixed delay between reconnect attempts")
	runCmd.Flags().Int("reconnect-attempts", 20, "consecutive reconnect attempts before giving up")
	runCmd.Flags().Uint64("backfill-max-blocks", 500, "maximum blocks replayed after a reconnect, 0 disables")
	runCmd.Flags().String("metrics-addr", "", "Prometheus listen address, empty disables")

	root.AddCommand(runCmd)

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Replay a block range of one network through the pipeline",
		RunE:  runBackfill,
	}
	addCommonFlags(backfillCmd.Flags())
	backfillCmd.Flags().String("network", "", "network to replay (XDAI or MAINNET)")
	backfillCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	backfillCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")

	root.AddCommand(backfillCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(flags *pflag.FlagSet) {
	flags.String("xdai-ws", "", "Gnosis chain websocket endpoint")
	flags.String("mainnet-ws", "", "Ethereum mainnet websocket endpoint")
	flags.String("contract", "", "POAP token contract address")
	flags.String("discord-token", "", "Discord bot token")
	flags.String("discord-channel", "", "primary channel name")
	flags.String("discord-channel-mainnet", "", "channel name that only receives the restricted network")
	flags.String("restricted-network", "MAINNET", "network delivered to the restricted channel")
	flags.String("api-base", "https://api.poap.xyz", "POAP API base URL")
	flags.Duration("lookup-timeout", 10*time.Second, "timeout of each API lookup")
	flags.Uint64("backfill-batch-size", 100, "blocks per log query")
	flags.Int("max-retries", 5, "maximum retry attempts for log queries")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	flags.Int("max-inflight", 8, "events processed concurrently per network")
	flags.StringSlice("kafka-brokers", nil, "Kafka brokers for the notification mirror (comma-separated)")
	flags.String("kafka-topic", "poap-notifications", "Kafka topic for the notification mirror")
	flags.String("mirror-out", "", "JSONL file mirroring sent notifications, - for stdout")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
