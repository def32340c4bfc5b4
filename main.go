package main

import (
	"net/http"
	"os"
	"os/signal"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/plugland/plugd/api"
	"github.com/plugland/plugd/catalog"
	"github.com/plugland/plugd/connectivity"
	"github.com/plugland/plugd/daemon"
	"github.com/plugland/plugd/fetch"
	"github.com/plugland/plugd/install"
	"github.com/plugland/plugd/locale"
	"github.com/plugland/plugd/plugdb"
	"github.com/plugland/plugd/plugdlog"
	"github.com/plugland/plugd/restart"
	"github.com/plugland/plugd/updating"
	"github.com/plugland/plugd/verify"
	log "github.com/sirupsen/logrus"
)

var (
	// Commit stores the current commit hash of this build. This should be set using -ldflags during compilation.
	Commit string
	// Version stores the version string of this build. This should be set using -ldflags during compilation.
	Version string
	// Date stores the date of this build. This should be set using -ldflags during compilation.
	Date string
)

// plugdMain is the true entry point for plugd. This is required since defers
// created in the top-level scope of a main method aren't executed if os.Exit() is called.
func plugdMain() error {
	plugLog := plugdlog.New()

	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
	log.AddHook(plugLog)

	// Load CLI configuration and defaults
	cfg, err := loadConfig()
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		return nil
	} else if err != nil {
		return errors.Errorf("Failed parsing arguments: %v", err)
	}

	// Set logger into debug mode if called with --debug
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
		log.Info("Setting debug mode.")
	}

	log.Debug("Loaded config.")

	// Print version of the daemon
	log.Infof("Version %s (commit %s)", Version, Commit)
	log.Infof("Built on %s", Date)

	// Stop here if only version was requested
	if cfg.ShowVersion {
		return nil
	}

	// plug.db persistently stores the installed plugin versions and settings
	plugDB, err := plugdb.Open(cfg.DataDir)
	if err != nil {
		return errors.Errorf("Could not open plug.db: %v", err)
	}

	log.Infof("Opened plug.db")

	defer func() {
		err := plugDB.Close()
		if err != nil {
			log.Errorf("Could not close plug.db: %v", err)
		} else {
			log.Info("Closed plug.db.")
		}
	}()

	// The restarter, which replaces the host process once updates are in
	var r updating.Restarter

	switch cfg.Restarter {
	case "none":
		r = restart.NewNoopRestarter(&restart.Config{
			Logger: log.New().WithField("system", "restart"),
		})

		log.Info("Created noop restarter.")
	case "exec":
		r = restart.NewExecRestarter(&restart.Config{
			Logger: log.New().WithField("system", "restart"),
		})

		log.Info("Created exec restarter.")
	default:
		return errors.Errorf("Unknown restarter type %v", cfg.Restarter)
	}

	// User-facing message texts
	translations, err := locale.NewTranslations(cfg.Locale, cfg.LocaleDir)
	if err != nil {
		return errors.Errorf("Could not load translations: %v", err)
	}

	log.Infof("Loaded translations for %v", cfg.Locale)

	// Connectivity decides whether an update cycle is attempted at all
	var reporter connectivity.Reporter

	if cfg.Connectivity != "" {
		reporter = connectivity.NewProbeReporter(cfg.Connectivity)

		log.Infof("Probing connectivity through %v", cfg.Connectivity)
	} else {
		reporter = connectivity.NewAlwaysOnline()

		log.Info("Assuming connectivity.")
	}

	// The update-detection source
	var source catalog.Source

	if cfg.Updater.Manifest != "" {
		source = catalog.NewHTTPSource(&catalog.Config{
			URL:    cfg.Updater.Manifest,
			DB:     plugDB,
			Logger: log.New().WithField("system", "catalog"),
		})

		log.Infof("Using plugin manifest at %v", cfg.Updater.Manifest)
	} else {
		source = catalog.NewStaticSource(nil)

		log.Warn("No manifest configured, no updates will be found.")
	}

	fetcher := fetch.NewHTTPFetcher(&fetch.Config{
		Client: &http.Client{},
		Logger: log.New().WithField("system", "fetch"),
	})

	installer := install.NewDirInstaller(&install.Config{
		PluginDir: cfg.PluginDir,
		DB:        plugDB,
		Logger:    log.New().WithField("system", "install"),
	})

	// create subsystem responsible for the HTTP API
	api := api.New(&api.Config{
		PlugLog: plugLog,
		Version: Version,
		Log:     log.New().WithField("system", "api"),
	})

	log.Infof("Created API")

	// central controller for everything plugd does
	daemon := daemon.New(&daemon.Config{
		Source:       source,
		Fetcher:      fetcher,
		Verifier:     verify.NewSHA256Verifier(),
		Installer:    installer,
		Restarter:    r,
		Locale:       translations,
		Connectivity: reporter,
		ArtifactPath: cfg.Updater.Artifact,
		RestartDelay: cfg.Updater.RestartDelay,
		TickInterval: cfg.Tick,
		Listen:       cfg.Listen,
		Logger:       log.New().WithField("system", "daemon"),
		Api:          api,
	})

	log.Infof("Created daemon.")

	// Handle interrupt signals correctly
	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt)
		sig := <-signals
		log.Info(sig)
		log.Info("Received an interrupt, stopping daemon...")
		daemon.Shutdown()
	}()

	// blocks until the daemon is shut down
	err = daemon.Run()
	if err != nil {
		return errors.Errorf("Failed running daemon: %v", err)
	}

	// finish with no error
	return nil
}

func main() {
	// Call the "real" main in a nested manner so the defers will properly
	// be executed in the case of a graceful shutdown.
	if err := plugdMain(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		} else {
			log.WithError(err).Println("Failed running plugd.")
		}
		os.Exit(1)
	}
}
