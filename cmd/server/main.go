package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/cardcsv/pkg/config"
	"github.com/yurifrl/cardcsv/pkg/server"
)

func main() {
	var (
		port    = flag.String("port", "3000", "Server port")
		cfgFile = flag.String("config", "", "Config file (default is ./cardcsv.yaml)")
	)
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "cardcsv",
	})

	cfg, err := config.Build(*cfgFile, nil)
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	logger.SetLevel(cfg.Level())

	srv := server.New(cfg, logger)
	addr := fmt.Sprintf("0.0.0.0:%s", *port)
	logger.Info("starting server", "addr", addr, "profile", cfg.Profile)
	if err := srv.Start(addr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
