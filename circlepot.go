package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"circlepot/engine"
	"circlepot/escrow"
	"circlepot/notifications"
	"circlepot/storage"
	"circlepot/webserver"
)

var (
	version    = "1.0"
	commitHash = "dev"

	server *CirclePotServer
)

type CirclePotServer struct {
	*engine.Engine
	*notifications.NotificationHandler
	*webserver.WebServer
	*storage.Storage
	Ledger *escrow.MemoryLedger
	Flags

	// Last round already notified per cycle, so the watcher does not
	// re-announce the same boundary every tick
	notifiedRounds map[string]uint64
}

// Flags Server flags
type Flags struct {
	logDebug      bool
	logTrace      bool
	bindAddr      string
	bindPort      int
	dataDir       string
	watchInterval int
}

func main() {
	// Used throughout main
	var (
		err error
		wg  sync.WaitGroup
	)

	server = new(CirclePotServer)
	server.notifiedRounds = make(map[string]uint64)
	server.parseArgs()

	// Logging
	setupLogging(server.dataDir, server.logDebug, server.logTrace)

	// Clean exits
	shutdownChannel := setupCloseChannel()

	// Open/Init database
	server.Storage, err = storage.InitStorage(server.dataDir)
	if err != nil {
		log.WithError(err).Fatal("Could not open storage")
	}

	// Start
	log.Infof("=== CirclePot v%s (%s) ===", version, commitHash)

	// Global notifications handler
	server.NotificationHandler, err = notifications.NewHandler(server.Storage)
	if err != nil {
		log.WithError(err).Error("Unable to load notifiers")
	}

	// In-process escrow ledger; the reference custody collaborator
	server.Ledger = escrow.NewMemoryLedger()

	// Settlement engine over storage + escrow + wall clock
	server.Engine = engine.New(server.Storage, server.Ledger, engine.SystemClock{}, server.NotificationHandler)

	// Start web API
	wg.Add(1)
	args := webserver.WebServerArgs{
		Engine:              server.Engine,
		Storage:             server.Storage,
		NotificationHandler: server.NotificationHandler,
		Ledger:              server.Ledger,
		BindAddr:            server.bindAddr,
		BindPort:            server.bindPort,
		ShutdownChannel:     shutdownChannel,
		WG:                  &wg,
	}
	server.WebServer, err = webserver.Start(args)
	if err != nil {
		log.WithError(err).Error("Unable to start web server")
		os.Exit(1)
	}

	// Watch for cycles crossing their round boundary
	ticker := time.NewTicker(time.Duration(server.watchInterval) * time.Second)

Main:
	for {

		select {
		case <-ticker.C:
			server.watchRounds()

		case <-shutdownChannel:
			log.Warn("Shutting things down...")
			ticker.Stop()
			break Main
		}
	}

	// Wait for threads to finish
	wg.Wait()

	// Clean close DB, logs
	server.Storage.Close()
	closeLogging()

	os.Exit(0)
}

// watchRounds scans active cycles and announces any that have crossed their
// round boundary, once per round. Operations stay caller-driven; the
// watcher only observes and notifies.
func (s *CirclePotServer) watchRounds() {

	cycles, err := s.Storage.ListActiveCycles()
	if err != nil {
		log.WithError(err).Error("Unable to list active cycles")
		return
	}

	now := time.Now().Unix()

	for _, c := range cycles {

		if !c.RoundDue(now) {
			continue
		}

		key := fmt.Sprintf("%s/%d", c.Organizer, c.Nonce)
		if s.notifiedRounds[key] > c.CurrentRound {
			continue
		}
		s.notifiedRounds[key] = c.CurrentRound + 1

		fields := log.Fields{
			"Organizer": c.Organizer, "Nonce": c.Nonce,
			"Round": c.CurrentRound, "NextRoundTime": c.NextRoundTime,
		}

		if recipient, ok := c.DueRecipient(); ok {
			log.WithFields(fields).WithField("Recipient", recipient).Info("Payout round due")
			s.SendNotification(fmt.Sprintf("Cycle %s round %d due: payout to %s", key, c.CurrentRound, recipient))
		} else {
			log.WithFields(fields).Info("Round boundary reached")
			s.SendNotification(fmt.Sprintf("Cycle %s round %d boundary reached", key, c.CurrentRound))
		}
	}
}

func setupCloseChannel() chan interface{} {

	// Create channels for signals
	signalChan := make(chan os.Signal, 1)
	closingChan := make(chan interface{}, 1)

	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signalChan
		close(closingChan)
	}()

	return closingChan
}

func (s *CirclePotServer) parseArgs() {

	// Args
	flag.BoolVar(&s.logDebug, "debug", false, "Enable debug-level logging")
	flag.BoolVar(&s.logTrace, "trace", false, "Enable trace-level logging")

	flag.StringVar(&s.bindAddr, "bind", "127.0.0.1", "Address on which to bind the API server")
	flag.IntVar(&s.bindPort, "port", 8090, "Port on which to bind the API server")

	flag.StringVar(&s.dataDir, "datadir", "./", "Location of database")
	flag.IntVar(&s.watchInterval, "watch-interval", 30, "Seconds between round-boundary scans")

	printVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	// Handle print version and exit
	if *printVersion {
		fmt.Printf("CirclePot %s (%s)\n", version, commitHash)
		os.Exit(0)
	}
}
