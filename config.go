package main

import (
	"os"
	"path/filepath"
	"time"

	flags "github.com/jessevdk/go-flags"
)

type updaterConfig struct {
	Manifest     string        `long:"manifest" description:"URL of the plugin manifest"`
	Artifact     string        `long:"artifact" description:"Path of the temporary download artifact"`
	RestartDelay time.Duration `long:"restart-delay" description:"Pause before an automatic restart so the final message can render"`
}

type config struct {
	ShowVersion  bool           `short:"v" long:"version" description:"Display version information and exit"`
	Debug        bool           `long:"debug" description:"Start in debug mode"`
	DataDir      string         `long:"datadir" description:"The directory to store plugd's data within"`
	PluginDir    string         `long:"plugindir" description:"The directory plugins are installed into"`
	Listen       string         `long:"listen" description:"Interface/port to listen on for API connections"`
	Restarter    string         `long:"restarter" description:"How to restart the host process" choice:"exec" choice:"none"`
	Locale       string         `long:"locale" description:"Language for user-facing messages"`
	LocaleDir    string         `long:"localedir" description:"Directory with additional translation files"`
	Connectivity string         `long:"connectivity" description:"URL probed to decide whether the device is online; empty assumes online"`
	Tick         time.Duration  `long:"tick" description:"Interval of the foreground update loop"`
	Updater      *updaterConfig `group:"Updater" namespace:"updater"`
}

func defaultConfig() config {
	return config{
		DataDir:   "./data",
		PluginDir: "./plugins",
		Listen:    ":9000",
		Restarter: "exec",
		Locale:    "en",
		Tick:      100 * time.Millisecond,
		Updater: &updaterConfig{
			Artifact:     filepath.Join(os.TempDir(), "plugd.download"),
			RestartDelay: 2 * time.Second,
		},
	}
}

func loadConfig() (*config, error) {
	cfg := defaultConfig()

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
