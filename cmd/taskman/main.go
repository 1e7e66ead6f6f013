package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/chukwudi34/task-manager/internal/api"
	"github.com/chukwudi34/task-manager/internal/config"
	"github.com/chukwudi34/task-manager/internal/logging"
	"github.com/chukwudi34/task-manager/internal/session"
	"github.com/chukwudi34/task-manager/internal/store/jsonstore"
	"github.com/chukwudi34/task-manager/internal/tui"
)

const version = "1.0.0"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  = pflag.String("config", "", "path to config file (HuJSON)")
		apiURL      = pflag.String("api-url", "", "base URL of the task API")
		dataDir     = pflag.String("data-dir", "", "directory for the local cache")
		logFile     = pflag.String("log-file", "", "write JSON logs to this file (default: discard)")
		logLevel    = pflag.String("log-level", "info", "log level (debug, info, warn, error)")
		showVersion = pflag.BoolP("version", "V", false, "print version and exit")
	)
	pflag.Parse()

	if *showVersion {
		fmt.Println("taskman " + version)
		return 0
	}

	cfg, err := config.Load(*configPath, config.Overrides{APIURL: *apiURL, DataDir: *dataDir})
	if err != nil {
		fmt.Fprintln(os.Stderr, "taskman: "+err.Error())
		return 2
	}

	// stdout belongs to the TUI, so logs go to a file or nowhere
	logger := logging.Discard()
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "taskman: open log file: "+err.Error())
			return 1
		}
		defer f.Close()
		logger = logging.New(f, *logLevel)
	}

	dir := cfg.DataDir
	if dir == "" {
		dir, err = jsonstore.DefaultDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "taskman: "+err.Error())
			return 1
		}
	}
	sess := session.New(jsonstore.New(dir))
	client := api.NewClient(cfg.APIURL, cfg.Timeout, logger)

	if err := tui.Run(cfg, sess, client, logger); err != nil {
		fmt.Fprintln(os.Stderr, "taskman: "+err.Error())
		return 1
	}
	return 0
}
