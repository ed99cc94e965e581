package main

import (
	"log/slog"

	"github.com/gooscar/icq2000/client"
)

// logEvent renders the library's closed Event set to the demo's
// logger, one line per event, the way a real embedder would fan
// events out to a UI (spec.md §6).
func logEvent(logger *slog.Logger, ev client.Event) {
	switch e := ev.(type) {
	case client.ConnectedEvent:
		logger.Info("connected to BOS")
	case client.DisconnectedEvent:
		logger.Info("disconnected", "reason", e.Reason.String())
	case client.LogEvent:
		logger.Debug("library log", "message", e.Message)
	case client.NormalMessageEvent:
		logger.Info("message received", "from", e.From, "text", e.Text)
	case client.URLMessageEvent:
		logger.Info("url message received", "from", e.From, "url", e.URL, "description", e.Description)
	case client.SMSMessageEvent:
		logger.Info("sms message received", "sender", e.Sender, "text", e.Text)
	case client.SMSReceiptEvent:
		logger.Info("sms receipt received")
	case client.AuthReqEvent:
		logger.Info("authorization request", "from", e.From, "nick", e.Nick, "message", e.Message)
	case client.AuthAckEvent:
		logger.Info("authorization response", "from", e.From, "granted", e.Granted, "reason", e.Reason)
	case client.AwayMessageEvent:
		logger.Info("away message received", "from", e.From, "text", e.Text)
	case client.UserAddEvent:
		logger.Info("added you", "from", e.From)
	case client.ContactListEvent:
		logger.Info("contact list change", "kind", e.Kind, "uin", e.UIN)
	case client.MyStatusChangeEvent:
		logger.Info("own status changed", "status", e.Status)
	case client.MyUserInfoChangeEvent:
		logger.Info("own external ip changed", "external_ip", e.ExternalIP)
	case client.SearchResultEvent:
		logger.Info("search result", "uin", e.UIN, "alias", e.Alias, "more", e.More)
	case client.NewUINEvent:
		logger.Info("new uin registered", "uin", e.UIN)
	case client.RateInfoChangeEvent:
		logger.Info("rate status changed", "class", e.Class, "status", e.Status)
	case client.MessageAckEvent:
		logger.Info("message ack", "to", e.ToUIN, "delivered", e.Delivered, "direct", e.Direct, "away_text", e.AwayText)
	case client.SocketAddEvent, client.SocketRemoveEvent:
		// socket bookkeeping is driven directly by the AddSocketHandleFunc
		// callback passed to NewClient; nothing to log here.
	default:
		logger.Debug("unhandled event", "type", e)
	}
}
