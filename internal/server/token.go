package server

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tartampluch/go-hijri/internal/config"
	"github.com/zalando/go-keyring"
)

// FeedToken returns the feed access token kept in the OS keyring, creating it on first use.
// When the keyring cannot store it, a fresh token is still returned with the error.
func FeedToken() (string, error) {
	if token, err := keyring.Get(config.KeyringService, config.KeyringFeedUser); err == nil && token != "" {
		return token, nil
	}

	token := uuid.NewString()
	if err := keyring.Set(config.KeyringService, config.KeyringFeedUser, token); err != nil {
		return token, fmt.Errorf("%s: %w", config.ErrFeedToken, err)
	}
	return token, nil
}
