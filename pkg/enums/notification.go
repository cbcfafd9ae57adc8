package enums

import "fmt"

// NotificationChannel identifies a sink the dispatcher fans alert events out to.
type NotificationChannel string

const (
	NotificationChannelPubSub   NotificationChannel = "pubsub"
	NotificationChannelNATS     NotificationChannel = "nats"
	NotificationChannelRealtime NotificationChannel = "realtime"
	NotificationChannelInbox    NotificationChannel = "inbox"
)

var validNotificationChannels = []NotificationChannel{
	NotificationChannelPubSub,
	NotificationChannelNATS,
	NotificationChannelRealtime,
	NotificationChannelInbox,
}

// IsValid checks whether the given channel matches the canonical enum.
func (n NotificationChannel) IsValid() bool {
	for _, candidate := range validNotificationChannels {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationChannel converts raw strings into NotificationChannel.
func ParseNotificationChannel(value string) (NotificationChannel, error) {
	for _, candidate := range validNotificationChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification channel %q", value)
}
