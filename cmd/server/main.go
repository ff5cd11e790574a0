package main

import (
	"github.com/OFFIS-RIT/claimnet/internal/server"
	"github.com/OFFIS-RIT/claimnet/internal/util"
	"github.com/OFFIS-RIT/claimnet/pkg/logger"
	"github.com/OFFIS-RIT/claimnet/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  debug,
		Format: util.GetEnvString("LOG_FORMAT", console.FormatText),
	})
	logger.Init(consoleLogger)

	server.Init()
}
