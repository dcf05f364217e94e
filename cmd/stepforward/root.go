// ABOUTME: Root Cobra command for the stepforward collector CLI.
// ABOUTME: Handles config, logger, and cache lifecycle via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/stepforwardrx/stepforward/internal/cache"
	"github.com/stepforwardrx/stepforward/internal/config"
	"github.com/stepforwardrx/stepforward/internal/engine"
	"github.com/stepforwardrx/stepforward/internal/logging"
	"github.com/stepforwardrx/stepforward/internal/remote"
	"github.com/stepforwardrx/stepforward/internal/sensor"
	"go.uber.org/zap"
)

var (
	appConfig  config.AppConfig
	logger     *zap.Logger
	cacheStore cache.Store
	dayCache   *cache.DayCache
)

var rootCmd = &cobra.Command{
	Use:   "stepforward",
	Short: "Gait health data collector for the StepforwardRx study",
	Long: `Stepforward collects daily gait metrics on-device and uploads them to
the study's remote store.

WHAT IT TRACKS (per calendar day):

  double_support_time   Double support time (s)        worsens when it rises
  walking_asymmetry     Walking asymmetry (%)          worsens when it rises
  walking_speed         Walking speed (m/s)            worsens when it falls
  walking_step_length   Step length (m)                worsens when it falls
  walking_steadiness    Walking steadiness (%)         worsens when it falls

QUICK START:

  $ stepforward setup P001 --pharmacy PH01   # Enroll this device
  $ stepforward sync                         # Collect and upload today's window
  $ stepforward run                          # Keep collecting in the background
  $ stepforward status                       # Check enrollment and last upload

CACHING:

  Samples are cached locally for today plus the previous 7 days. Entries
  older than 7 days are never uploaded. A failed sensor read never
  overwrites cached data.

MCP INTEGRATION:

  Run 'stepforward mcp' to start the Model Context Protocol server for use
  with MCP-compatible AI assistants:

  {
    "mcpServers": {
      "stepforward": { "command": "stepforward", "args": ["mcp"] }
    }
  }

CONFIGURATION:

  Settings come from ~/.config/stepforward/config.yaml or STEPFORWARD_*
  environment variables (STEPFORWARD_REMOTE_URL, STEPFORWARD_REMOTE_API_KEY,
  STEPFORWARD_DATA_DIR, STEPFORWARD_SENSOR_SOURCE, ...). The cache lives
  under the data directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands that never touch config or the cache
		switch cmd.Name() {
		case "version", "help", "completion":
			return nil
		}

		var err error
		appConfig, err = config.Load(config.NewViper())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, err = logging.NewLogger(appConfig.LogLevel)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		cacheStore, err = cache.OpenBadgerStore(filepath.Join(appConfig.DataDir, "cache"))
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		dayCache = cache.NewDayCache(cacheStore, nil)

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logger != nil {
			_ = logger.Sync()
		}
		if cacheStore != nil {
			return cacheStore.Close()
		}
		return nil
	},
}

// newRemoteClient builds the remote store client, failing early when the
// remote settings are missing.
func newRemoteClient() (*remote.Client, error) {
	if err := appConfig.RequireRemote(); err != nil {
		return nil, err
	}
	return remote.NewClient(remote.Config{
		BaseURL: appConfig.RemoteURL,
		APIKey:  appConfig.RemoteAPIKey,
		Timeout: appConfig.RemoteTimeout,
	}, logger), nil
}

// newSensorSource builds the configured sensor source.
func newSensorSource() (sensor.Source, error) {
	switch appConfig.SensorSource {
	case config.SensorSimulated:
		return sensor.NewSimulated(), nil
	case config.SensorFile:
		return sensor.NewFile(config.ExpandPath(appConfig.SensorFile)), nil
	default:
		return nil, fmt.Errorf("unknown sensor source: %q", appConfig.SensorSource)
	}
}

// newEngine wires the cache, remote client, and sensor into an engine.
func newEngine() (*engine.Engine, error) {
	client, err := newRemoteClient()
	if err != nil {
		return nil, err
	}
	source, err := newSensorSource()
	if err != nil {
		return nil, err
	}
	return engine.New(dayCache, client, source, logger, nil), nil
}

func formatLastUpload(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(time.RFC3339)
}
