// Package common defines the error taxonomy and shared constants used across
// the journal server. Concrete errors wrap one of the category sentinels, so
// callers may match either the precise error or its category with errors.Is.
package common

import (
	"errors"
	"fmt"
)

// Categories.
var (
	ErrValidation          = errors.New("validation error")
	ErrAuthorization       = errors.New("authorization error")
	ErrNotFound            = errors.New("not found")
	ErrExternalUnavailable = errors.New("external service unavailable")
	ErrInternal            = errors.New("internal error")
)

var (
	// Validation errors.
	ErrEmptyEntry     = fmt.Errorf("%w: entry text is empty", ErrValidation)
	ErrUnknownPersona = fmt.Errorf("%w: unknown persona", ErrValidation)
	ErrUnknownFeature = fmt.Errorf("%w: unknown feature", ErrValidation)
	ErrNotPurchasable = fmt.Errorf("%w: feature is not purchasable", ErrValidation)

	// Authorization errors.
	ErrPersonaLocked = fmt.Errorf("%w: persona is locked", ErrAuthorization)
	ErrFeatureLocked = fmt.Errorf("%w: feature is locked", ErrAuthorization)
	ErrUnauthorized  = fmt.Errorf("%w: unauthorized", ErrAuthorization)
	ErrInvalidToken  = fmt.Errorf("%w: invalid token", ErrAuthorization)

	ErrSessionNotFound = fmt.Errorf("%w: checkout session", ErrNotFound)

	// Collaborator failures. Retryable by the caller.
	ErrBrokerUnavailable      = fmt.Errorf("%w: payment broker", ErrExternalUnavailable)
	ErrStoreUnavailable       = fmt.Errorf("%w: store", ErrExternalUnavailable)
	ErrSummarizerUnavailable  = fmt.Errorf("%w: summarizer", ErrExternalUnavailable)
	ErrObjectStoreUnavailable = fmt.Errorf("%w: object store", ErrExternalUnavailable)
)
