package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_WrapCategory(t *testing.T) {
	tests := []struct {
		err      error
		category error
	}{
		{ErrEmptyEntry, ErrValidation},
		{ErrUnknownPersona, ErrValidation},
		{ErrUnknownFeature, ErrValidation},
		{ErrNotPurchasable, ErrValidation},
		{ErrPersonaLocked, ErrAuthorization},
		{ErrFeatureLocked, ErrAuthorization},
		{ErrUnauthorized, ErrAuthorization},
		{ErrInvalidToken, ErrAuthorization},
		{ErrSessionNotFound, ErrNotFound},
		{ErrBrokerUnavailable, ErrExternalUnavailable},
		{ErrStoreUnavailable, ErrExternalUnavailable},
		{ErrSummarizerUnavailable, ErrExternalUnavailable},
		{ErrObjectStoreUnavailable, ErrExternalUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.category)

			wrapped := fmt.Errorf("%w: %w", tt.err, errors.New("cause"))
			assert.ErrorIs(t, wrapped, tt.err)
			assert.ErrorIs(t, wrapped, tt.category)
		})
	}
}

func TestErrors_CategoriesAreDistinct(t *testing.T) {
	assert.NotErrorIs(t, ErrPersonaLocked, ErrValidation)
	assert.NotErrorIs(t, ErrEmptyEntry, ErrAuthorization)
	assert.NotErrorIs(t, ErrStoreUnavailable, ErrBrokerUnavailable)
}
