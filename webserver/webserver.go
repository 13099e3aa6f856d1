package webserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	log "github.com/sirupsen/logrus"

	"circlepot/engine"
	"circlepot/escrow"
	"circlepot/notifications"
	"circlepot/storage"
)

type WebServer struct {
	httpSvr *http.Server

	engine              *engine.Engine
	storage             *storage.Storage
	notificationHandler *notifications.NotificationHandler
	ledger              *escrow.MemoryLedger
}

type WebServerArgs struct {
	Engine              *engine.Engine
	Storage             *storage.Storage
	NotificationHandler *notifications.NotificationHandler

	// Ledger enables the dev faucet endpoint when the in-process escrow
	// ledger is in use; nil when custody is external.
	Ledger *escrow.MemoryLedger

	BindAddr        string
	BindPort        int
	ShutdownChannel <-chan interface{}
	WG              *sync.WaitGroup
}

func Start(args WebServerArgs) (*WebServer, error) {

	ws := &WebServer{
		engine:              args.Engine,
		storage:             args.Storage,
		notificationHandler: args.NotificationHandler,
		ledger:              args.Ledger,
	}

	router := mux.NewRouter()

	router.HandleFunc("/api/health", ws.health).Methods(http.MethodGet)

	router.HandleFunc("/api/cycle/create", ws.createCycle).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/cycle/{org}/{nonce}", ws.getCycle).Methods(http.MethodGet)
	router.HandleFunc("/api/cycle/{org}/{nonce}/join", ws.joinCycle).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/cycle/{org}/{nonce}/contribute", ws.submitContribution).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/cycle/{org}/{nonce}/payout", ws.triggerPayout).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/cycle/{org}/{nonce}/report", ws.reportDefault).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/cycle/{org}/{nonce}/claim", ws.claimCollateral).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/cycle/{org}/{nonce}/exit", ws.exitCycle).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/cycle/{org}/{nonce}/close", ws.closeCycle).Methods(http.MethodPost, http.MethodOptions)

	router.HandleFunc("/api/organizer/{org}", ws.getOrganizer).Methods(http.MethodGet)

	router.HandleFunc("/api/notifiers", ws.getNotifiers).Methods(http.MethodGet)
	router.HandleFunc("/api/notifiers/telegram", ws.saveTelegram).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/notifiers/webhook", ws.saveWebhook).Methods(http.MethodPost, http.MethodOptions)

	if ws.ledger != nil {
		router.HandleFunc("/api/faucet", ws.faucet).Methods(http.MethodPost, http.MethodOptions)
	}

	// CORS for UI development; requests logged through logrus
	corsRouter := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(router)
	loggedRouter := handlers.LoggingHandler(log.StandardLogger().WriterLevel(log.DebugLevel), corsRouter)

	httpAddr := fmt.Sprintf("%s:%d", args.BindAddr, args.BindPort)
	ws.httpSvr = &http.Server{
		Handler:      loggedRouter,
		Addr:         httpAddr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	log.WithField("Addr", httpAddr).Info("CirclePot API listening")

	// Launch webserver in background
	go func() {
		if err := ws.httpSvr.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Httpserver: ListenAndServe()")
		}
		log.Info("Httpserver: Shutdown")
	}()

	// Wait for shutdown signal on channel
	go func() {
		<-args.ShutdownChannel

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := ws.httpSvr.Shutdown(ctx); err != nil {
			log.WithError(err).Error("Httpserver: Shutdown()")
		}

		args.WG.Done()
	}()

	return ws, nil
}
