package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/silk/internal/guard"
	"github.com/mesh-intelligence/silk/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "SILK"
)

// Config keys.
const (
	cfgKeyBackend          = "backend"
	cfgKeyDataDir          = "data_dir"
	cfgKeyDSN              = "dsn"
	cfgKeyGuardEnabled     = "guard.enabled"
	cfgKeyGuardTimeout     = "guard.timeout"
	cfgKeyGuardMaxFailures = "guard.max_failures"
	cfgKeyGuardOpenTimeout = "guard.open_timeout"
	cfgKeyGuardRate        = "guard.rate"
	cfgKeyGuardBurst       = "guard.burst"
)

// envKeys are the config keys SILK_* variables override. data_dir is left
// out: SILK_DATA_DIR ranks below config.yaml and is handled by paths.
var envKeys = []string{
	cfgKeyBackend,
	cfgKeyDSN,
	cfgKeyGuardEnabled,
	cfgKeyGuardTimeout,
	cfgKeyGuardMaxFailures,
	cfgKeyGuardOpenTimeout,
	cfgKeyGuardRate,
	cfgKeyGuardBurst,
}

// loadConfig reads config.yaml from configDir using Viper. A missing file is
// not an error; defaults and SILK_* overrides still apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyGuardEnabled, false)
	v.SetDefault(cfgKeyGuardTimeout, 5*time.Second)
	v.SetDefault(cfgKeyGuardMaxFailures, 5)
	v.SetDefault(cfgKeyGuardOpenTimeout, 30*time.Second)
	v.SetDefault(cfgKeyGuardRate, 0)
	v.SetDefault(cfgKeyGuardBurst, 1)

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// guardConfig returns the guard settings, and whether the guard is on.
func guardConfig(v *viper.Viper) (guard.Config, bool) {
	return guard.Config{
		Timeout:     v.GetDuration(cfgKeyGuardTimeout),
		MaxFailures: v.GetUint32(cfgKeyGuardMaxFailures),
		OpenTimeout: v.GetDuration(cfgKeyGuardOpenTimeout),
		Rate:        v.GetFloat64(cfgKeyGuardRate),
		Burst:       v.GetInt(cfgKeyGuardBurst),
	}, v.GetBool(cfgKeyGuardEnabled)
}
