package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BackfillConfig holds settings for the backfill command.
type BackfillConfig struct {
	RPCURL            string
	CurveAddress      string
	FromBlock         uint64
	ToBlock           uint64
	EventTypes        []string
	Tokens            []string
	Pools             []string
	MaxSpan           uint64
	Concurrency       int
	RequestsPerSecond float64
	MaxRetries        int
	RetryBackoff      time.Duration
	StrictDecode      bool
	Out               string
	PgDSN             string
	LogLevel          string
}

// Load merges config file, environment variables, and flags into BackfillConfig.
func Load(cfgFile string, flags *pflag.FlagSet) (BackfillConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return BackfillConfig{}, err
	}

	v.SetDefault("max-span", uint64(2000))
	v.SetDefault("concurrency", 4)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	cfg := BackfillConfig{
		RPCURL:            v.GetString("rpc"),
		CurveAddress:      v.GetString("curve"),
		FromBlock:         v.GetUint64("from"),
		ToBlock:           v.GetUint64("to"),
		EventTypes:        getStringSlice(v, "event"),
		Tokens:            getStringSlice(v, "token"),
		Pools:             getStringSlice(v, "pool"),
		MaxSpan:           v.GetUint64("max-span"),
		Concurrency:       v.GetInt("concurrency"),
		RequestsPerSecond: v.GetFloat64("rps"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		StrictDecode:      v.GetBool("strict-decode"),
		Out:               v.GetString("out"),
		PgDSN:             v.GetString("pg-dsn"),
		LogLevel:          v.GetString("log-level"),
	}

	return cfg, nil
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	WSURL         string
	CurveAddress  string
	EventTypes    []string
	Tokens        []string
	Pools         []string
	MaxReconnects int
	BaseBackoff   time.Duration
	MaxBackoff    time.Duration
	Buffer        int
	Out           string
	PgDSN         string
	LogLevel      string
}

// LoadWatch merges config file, environment variables, and flags into WatchConfig.
func LoadWatch(cfgFile string, flags *pflag.FlagSet) (WatchConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return WatchConfig{}, err
	}

	v.SetDefault("max-reconnects", 10)
	v.SetDefault("base-backoff", time.Second)
	v.SetDefault("max-backoff", 60*time.Second)
	v.SetDefault("buffer", 64)
	v.SetDefault("log-level", "info")

	cfg := WatchConfig{
		WSURL:         v.GetString("ws"),
		CurveAddress:  v.GetString("curve"),
		EventTypes:    getStringSlice(v, "event"),
		Tokens:        getStringSlice(v, "token"),
		Pools:         getStringSlice(v, "pool"),
		MaxReconnects: v.GetInt("max-reconnects"),
		BaseBackoff:   v.GetDuration("base-backoff"),
		MaxBackoff:    v.GetDuration("max-backoff"),
		Buffer:        v.GetInt("buffer"),
		Out:           v.GetString("out"),
		PgDSN:         v.GetString("pg-dsn"),
		LogLevel:      v.GetString("log-level"),
	}

	return cfg, nil
}

// PoolsConfig holds settings for the pools command.
type PoolsConfig struct {
	RPCURL      string
	Factory     string
	Quote       string
	Tokens      []string
	Parallelism int
	LogLevel    string
}

// LoadPools merges config file, environment variables, and flags into PoolsConfig.
func LoadPools(cfgFile string, flags *pflag.FlagSet) (PoolsConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return PoolsConfig{}, err
	}

	v.SetDefault("parallelism", 4)
	v.SetDefault("log-level", "info")

	cfg := PoolsConfig{
		RPCURL:      v.GetString("rpc"),
		Factory:     v.GetString("factory"),
		Quote:       v.GetString("quote"),
		Tokens:      getStringSlice(v, "token"),
		Parallelism: v.GetInt("parallelism"),
		LogLevel:    v.GetString("log-level"),
	}

	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("CURVESCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
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
