package notifications

import (
	"encoding/json"

	"github.com/pkg/errors"

	"circlepot/storage"
)

const (
	TELEGRAM = "telegram"
	WEBHOOK  = "webhook"
)

type Notifier interface {
	Send(string) error
	IsEnabled() bool
}

type NotificationHandler struct {
	Storage   *storage.Storage
	Notifiers map[string]Notifier
}

// NewHandler loads any persisted notifier configs from storage and returns
// the handler used by the engine and round watcher.
func NewHandler(db *storage.Storage) (*NotificationHandler, error) {

	n := &NotificationHandler{
		Storage:   db,
		Notifiers: make(map[string]Notifier, 2),
	}

	if err := n.LoadNotifiers(); err != nil {
		return nil, errors.Wrap(err, "Failed to load notifiers")
	}

	return n, nil
}

func (n *NotificationHandler) LoadNotifiers() error {

	// Get telegram notifications config from DB, as []byte string
	tConfig, err := n.Storage.GetNotifiersConfig(TELEGRAM)
	if err != nil {
		return errors.Wrap(err, "Unable to load telegram config")
	}

	// Configure telegram; Don't save what we just loaded
	if err := n.Configure(TELEGRAM, tConfig, false); err != nil {
		return errors.Wrap(err, "Unable to init telegram")
	}

	// Get webhook notifications config from DB
	wConfig, err := n.Storage.GetNotifiersConfig(WEBHOOK)
	if err != nil {
		return errors.Wrap(err, "Unable to load webhook config")
	}

	// Configure webhook; Don't save what we just loaded
	if err := n.Configure(WEBHOOK, wConfig, false); err != nil {
		return errors.Wrap(err, "Unable to init webhook")
	}

	return nil
}

func (n *NotificationHandler) Configure(notifier string, config []byte, saveConfig bool) error {

	switch notifier {
	case TELEGRAM:
		nt, err := n.NewTelegram(config, saveConfig)
		if err != nil {
			return err
		}
		n.Notifiers[TELEGRAM] = nt

	case WEBHOOK:
		nw, err := n.NewWebhook(config, saveConfig)
		if err != nil {
			return err
		}
		n.Notifiers[WEBHOOK] = nw

	default:
		return errors.New("Unknown notification type")
	}

	return nil
}

// SendNotification fans the message out to every enabled notifier.
func (n *NotificationHandler) SendNotification(message string) {

	for _, notifier := range n.Notifiers {
		if notifier.IsEnabled() {
			//nolint:errcheck
			notifier.Send(message)
		}
	}
}

func (n *NotificationHandler) TestSend(notifier string, message string) error {

	nt, ok := n.Notifiers[notifier]
	if !ok {
		return errors.New("Unknown notification type")
	}

	return nt.Send(message)
}

func (n *NotificationHandler) GetConfig() (json.RawMessage, error) {

	// Marshal the current Notifiers as the current config
	// Return RawMessage so as not to double Marshal
	bts, err := json.Marshal(n.Notifiers)
	return json.RawMessage(bts), err
}
