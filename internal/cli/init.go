package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/silk/internal/paths"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend string    `yaml:"backend"`
	DataDir string    `yaml:"data_dir,omitempty"`
	DSN     string    `yaml:"dsn,omitempty"`
	Guard   guardFile `yaml:"guard"`
}

type guardFile struct {
	Enabled     bool    `yaml:"enabled"`
	Timeout     string  `yaml:"timeout"`
	MaxFailures uint32  `yaml:"max_failures"`
	OpenTimeout string  `yaml:"open_timeout"`
	Rate        float64 `yaml:"rate"`
	Burst       int     `yaml:"burst"`
}

func newInitCmd(a *app) *cobra.Command {
	var backend, dsn string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize silk storage",
		Long: `Create the configuration directory and config.yaml, then initialize the
storage backend. An existing config.yaml is left untouched.

Example:
  silk init
  silk init --backend postgres --dsn postgres://localhost/silk`,
		Args: cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			if backend != "" {
				a.conf.Set(cfgKeyBackend, backend)
			}
			if dsn != "" {
				a.conf.Set(cfgKeyDSN, dsn)
			}
			return a.runInit(cmd)
		}),
	}
	cmd.Flags().StringVar(&backend, "backend", "", "backend to configure (sqlite, postgres)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "connection string for the postgres backend")
	return cmd
}

func (a *app) runInit(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}

	cfg := configFile{
		Backend: a.conf.GetString(cfgKeyBackend),
		DataDir: a.flags.dataDir,
		DSN:     a.conf.GetString(cfgKeyDSN),
		Guard: guardFile{
			Enabled:     a.conf.GetBool(cfgKeyGuardEnabled),
			Timeout:     a.conf.GetDuration(cfgKeyGuardTimeout).String(),
			MaxFailures: a.conf.GetUint32(cfgKeyGuardMaxFailures),
			OpenTimeout: a.conf.GetDuration(cfgKeyGuardOpenTimeout).String(),
			Rate:        a.conf.GetFloat64(cfgKeyGuardRate),
			Burst:       a.conf.GetInt(cfgKeyGuardBurst),
		},
	}
	configPath := filepath.Join(configDir, configFileExt)
	written, err := writeConfigIfMissing(configPath, cfg)
	if err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}
	if written {
		a.logger.Debug("config written", "path", configPath)
	}

	s, err := a.open()
	if err != nil {
		return err
	}
	defer a.close(s)

	fmt.Fprintf(cmd.OutOrStdout(), "silk initialized (%s, data in %s)\n", a.conf.GetString(cfgKeyBackend), s.dataDir)
	return nil
}

// writeConfigIfMissing creates config.yaml from cfg if the file does not
// exist. It reports whether the file was written.
func writeConfigIfMissing(path string, cfg configFile) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	return true, os.WriteFile(path, append([]byte("# silk configuration\n"), data...), 0o644)
}
