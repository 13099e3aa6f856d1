package main

import (
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"
)

var logFile *os.File

func setupLogging(dataDir string, logDebug, logTrace bool) {

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:  true,
		DisableSorting: true,
	})

	if logDebug {
		log.SetLevel(log.DebugLevel)
	}
	if logTrace {
		log.SetLevel(log.TraceLevel)
	}

	runID := time.Now().Format("circlepot-2006-01-02-15-04-05")
	logLocation := filepath.Join(dataDir, runID+".log")

	var err error
	logFile, err = os.OpenFile(logLocation, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("Failed to open log file %s for output: %s", logLocation, err)
	}

	// Write everything to log file too
	log.AddHook(&writer.Hook{
		Writer: logFile,
		LogLevels: []log.Level{
			log.PanicLevel,
			log.FatalLevel,
			log.ErrorLevel,
			log.WarnLevel,
			log.InfoLevel,
			log.DebugLevel,
		},
	})
}

func closeLogging() {
	if logFile != nil {
		logFile.Close()
	}
}
