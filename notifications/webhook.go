package notifications

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"

	"circlepot/storage"
)

// NotifyWebhook POSTs each message as a small JSON document to a caller
// supplied URL; the generic integration point for chat bridges and pagers.
type NotifyWebhook struct {
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
	Storage *storage.Storage `json:"-"`
}

func (n *NotificationHandler) NewWebhook(config []byte, saveConfig bool) (*NotifyWebhook, error) {

	nw := &NotifyWebhook{
		Storage: n.Storage,
	}

	// empty config from db?
	if config != nil {
		if err := json.Unmarshal(config, nw); err != nil {
			return nw, errors.Wrap(err, "Unable to unmarshal webhook config")
		}
	}

	if saveConfig {
		if err := nw.SaveConfig(); err != nil {
			return nw, err
		}
	}

	return nw, nil
}

func (n *NotifyWebhook) IsEnabled() bool {
	return n.Enabled && n.URL != ""
}

func (n *NotifyWebhook) Send(msg string) error {

	payload, err := json.Marshal(map[string]string{"text": msg})
	if err != nil {
		return errors.Wrap(err, "Unable to marshal webhook payload")
	}

	// HTTP client 10s timeout
	client := &http.Client{
		Timeout: time.Second * 10,
	}

	resp, err := client.Post(n.URL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "Unable to send webhook message")
	}

	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "Unable to read webhook response")
	}

	log.WithField("Resp", string(body)).Debug("Webhook Reply")

	return nil
}

func (n *NotifyWebhook) SaveConfig() error {

	config, err := json.Marshal(n)
	if err != nil {
		return errors.Wrap(err, "Unable to marshal webhook config")
	}

	if err := n.Storage.SaveNotifiersConfig(WEBHOOK, config); err != nil {
		return errors.Wrap(err, "Unable to save webhook config")
	}

	return nil
}
