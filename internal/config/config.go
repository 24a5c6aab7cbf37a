package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"poapFeed/internal/model"
	"poapFeed/internal/poap"
)

const envPrefix = "POAPFEED"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	XDAIWS    string
	MainnetWS string
	Contract  string

	DiscordToken          string
	DiscordChannel        string
	DiscordChannelMainnet string
	RestrictedNetwork     model.Network

	APIBase       string
	LookupTimeout time.Duration

	ReconnectDelay    time.Duration
	ReconnectAttempts int
	BackfillMaxBlocks uint64
	BackfillBatchSize uint64
	MaxRetries        int
	RetryBackoff      time.Duration
	MaxInFlight       int

	MetricsAddr  string
	KafkaBrokers []string
	KafkaTopic   string
	MirrorOut    string
	LogLevel     string
}

// legacyEnv maps keys to the unprefixed variables older deployments set.
var legacyEnv = map[string]string{
	"discord-token":           "DISCORD_TOKEN",
	"discord-channel":         "DISCORD_CHANNEL_NAME",
	"discord-channel-mainnet": "DISCORD_CHANNEL_MAINNET_NAME",
	"xdai-ws":                 "XDAI_WS_PROVIDER",
	"mainnet-ws":              "MAINNET_WS_PROVIDER",
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetDefault("contract", poap.ContractAddress)
	v.SetDefault("restricted-network", string(model.NetworkMainnet))
	v.SetDefault("api-base", "https://api.poap.xyz")
	v.SetDefault("lookup-timeout", 10*time.Second)
	v.SetDefault("reconnect-delay", 5*time.Second)
	v.SetDefault("reconnect-attempts", 20)
	v.SetDefault("backfill-max-blocks", uint64(500))
	v.SetDefault("backfill-batch-size", uint64(100))
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("max-inflight", 8)
	v.SetDefault("kafka-topic", "poap-notifications")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("poapfeed")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	restricted, err := model.ParseNetwork(v.GetString("restricted-network"))
	if err != nil {
		return Config{}, fmt.Errorf("restricted-network: %w", err)
	}

	cfg := Config{
		XDAIWS:                v.GetString("xdai-ws"),
		MainnetWS:             v.GetString("mainnet-ws"),
		Contract:              v.GetString("contract"),
		DiscordToken:          v.GetString("discord-token"),
		DiscordChannel:        v.GetString("discord-channel"),
		DiscordChannelMainnet: v.GetString("discord-channel-mainnet"),
		RestrictedNetwork:     restricted,
		APIBase:               strings.TrimRight(v.GetString("api-base"), "/"),
		LookupTimeout:         v.GetDuration("lookup-timeout"),
		ReconnectDelay:        v.GetDuration("reconnect-delay"),
		ReconnectAttempts:     v.GetInt("reconnect-attempts"),
		BackfillMaxBlocks:     v.GetUint64("backfill-max-blocks"),
		BackfillBatchSize:     v.GetUint64("backfill-batch-size"),
		MaxRetries:            v.GetInt("max-retries"),
		RetryBackoff:          v.GetDuration("retry-backoff"),
		MaxInFlight:           v.GetInt("max-inflight"),
		MetricsAddr:           v.GetString("metrics-addr"),
		KafkaBrokers:          getStringSlice(v, "kafka-brokers"),
		KafkaTopic:            v.GetString("kafka-topic"),
		MirrorOut:             v.GetString("mirror-out"),
		LogLevel:              v.GetString("log-level"),
	}

	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 1
	}

	return cfg, nil
}

// Endpoint returns the websocket endpoint configured for network.
func (c Config) Endpoint(network model.Network) string {
	switch network {
	case model.NetworkXDAI:
		return c.XDAIWS
	case model.NetworkMainnet:
		return c.MainnetWS
	default:
		return ""
	}
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		// A single env or flag value may still carry commas.
		if len(typed) == 1 {
			return splitAndClean(typed[0])
		}
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
