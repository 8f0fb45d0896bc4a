package service

import "context"

// PreferenceProvider exposes the recipient-level notification preferences
// the dispatcher consults before selecting channels. The authoritative
// preference data lives in the upstream application.
type PreferenceProvider interface {
	// TypeDisabled reports whether the recipient muted this notification type.
	TypeDisabled(ctx context.Context, recipientID, notifType string) (bool, error)
	// PushEnabled reports whether the recipient accepts push notifications.
	PushEnabled(ctx context.Context, recipientID string) (bool, error)
	// EmailForActions reports whether the recipient wants email for
	// notifications that require action.
	EmailForActions(ctx context.Context, recipientID string) (bool, error)
}

// allowAllPrefs is the default provider used when no preference backend is
// configured: nothing muted, push on, email off.
type allowAllPrefs struct{}

// NewAllowAllPrefs returns the permissive default preference provider.
func NewAllowAllPrefs() PreferenceProvider {
	return allowAllPrefs{}
}

func (allowAllPrefs) TypeDisabled(context.Context, string, string) (bool, error) {
	return false, nil
}

func (allowAllPrefs) PushEnabled(context.Context, string) (bool, error) {
	return true, nil
}

func (allowAllPrefs) EmailForActions(context.Context, string) (bool, error) {
	return false, nil
}
