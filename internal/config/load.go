package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. NUMBENCH_REPEAT.
const EnvPrefix = "NUMBENCH"

// Settings is the typed view of the loaded configuration.
type Settings struct {
	VectorLen     int
	MatrixSize    int
	Repeat        int
	Seed          uint64
	Tolerance     float64
	StoreType     string
	StoreDSN      string
	Save          bool
	Compare       bool
	Threshold     float64
	FailThreshold float64
	MetricsAddr   string
	MetricsFile   string
	Verbose       bool
	LogFile       string
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"vector-len":     "vector_len",
	"matrix-size":    "matrix_size",
	"repeat":         "repeat",
	"seed":           "seed",
	"tolerance":      "tolerance",
	"store":          "store.type",
	"dsn":            "store.dsn",
	"save":           "save",
	"compare":        "compare",
	"threshold":      "threshold",
	"fail-threshold": "fail_threshold",
	"metrics-addr":   "metrics_addr",
	"metrics-file":   "metrics_file",
	"verbose":        "verbose",
	"log-file":       "log_file",
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("vector_len", 1_000_000)
	viper.SetDefault("matrix_size", 1000)
	viper.SetDefault("repeat", 1)
	viper.SetDefault("seed", 42)
	viper.SetDefault("tolerance", 1e-9)
	viper.SetDefault("store.type", "sqlite")
	viper.SetDefault("store.dsn", "")
	viper.SetDefault("save", false)
	viper.SetDefault("compare", false)
	viper.SetDefault("threshold", 10.0)
	viper.SetDefault("fail_threshold", 0.0)
	viper.SetDefault("metrics_addr", "")
	viper.SetDefault("metrics_file", "")
	viper.SetDefault("verbose", false)
	viper.SetDefault("log_file", "")
}

// BindFlags binds every known flag present in fs to its configuration key.
func BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load initializes the configuration from file and environment variables.
// A missing config.yaml is not an error; an explicit cfgFile that cannot be read is.
func Load(cfgFile string) error {
	// .env is optional
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		return nil
	}
	slog.Debug("using config file", "path", viper.ConfigFileUsed())
	return nil
}

// Current returns the settings as currently resolved by viper.
func Current() Settings {
	return Settings{
		VectorLen:     viper.GetInt("vector_len"),
		MatrixSize:    viper.GetInt("matrix_size"),
		Repeat:        viper.GetInt("repeat"),
		Seed:          viper.GetUint64("seed"),
		Tolerance:     viper.GetFloat64("tolerance"),
		StoreType:     viper.GetString("store.type"),
		StoreDSN:      viper.GetString("store.dsn"),
		Save:          viper.GetBool("save"),
		Compare:       viper.GetBool("compare"),
		Threshold:     viper.GetFloat64("threshold"),
		FailThreshold: viper.GetFloat64("fail_threshold"),
		MetricsAddr:   viper.GetString("metrics_addr"),
		MetricsFile:   viper.GetString("metrics_file"),
		Verbose:       viper.GetBool("verbose"),
		LogFile:       viper.GetString("log_file"),
	}
}
