package webserver

import (
	"io/ioutil"
	"net/http"

	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"

	"circlepot/notifications"
)

func (ws *WebServer) getNotifiers(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - getNotifiers")

	config, err := ws.notificationHandler.GetConfig()
	if err != nil {
		log.WithError(err).Error("API getNotifiers")
		apiError(errors.Wrap(err, "Failed to get notifiers config"), w)

		return
	}

	apiReturnJSON(w, config)
}

func (ws *WebServer) saveTelegram(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - saveTelegram")

	if r.Method == http.MethodOptions {
		return
	}

	// Read the POST body as a string
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		log.WithError(err).Error("API saveTelegram")
		apiError(errors.Wrap(err, "Failed to parse body"), w)

		return
	}

	// Send string to configure for JSON unmarshaling; make sure to save config to db
	if err := ws.notificationHandler.Configure(notifications.TELEGRAM, body, true); err != nil {
		log.WithError(err).Error("API saveTelegram")
		apiError(errors.Wrap(err, "Failed to configure telegram"), w)

		return
	}

	if err := ws.notificationHandler.TestSend(notifications.TELEGRAM, "Test message from CirclePot"); err != nil {
		log.WithError(err).Error("API saveTelegram")
		apiError(errors.Wrap(err, "Failed to execute telegram test"), w)

		return
	}

	apiReturnOk(w)
}

func (ws *WebServer) saveWebhook(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - saveWebhook")

	if r.Method == http.MethodOptions {
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		log.WithError(err).Error("API saveWebhook")
		apiError(errors.Wrap(err, "Failed to parse body"), w)

		return
	}

	if err := ws.notificationHandler.Configure(notifications.WEBHOOK, body, true); err != nil {
		log.WithError(err).Error("API saveWebhook")
		apiError(errors.Wrap(err, "Failed to configure webhook"), w)

		return
	}

	if err := ws.notificationHandler.TestSend(notifications.WEBHOOK, "Test message from CirclePot"); err != nil {
		log.WithError(err).Error("API saveWebhook")
		apiError(errors.Wrap(err, "Failed to execute webhook test"), w)

		return
	}

	apiReturnOk(w)
}
