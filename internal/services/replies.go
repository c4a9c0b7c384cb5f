package services

import (
	"errors"
	"fmt"

	"shopmate/internal/domain"
)

// RetrievedDataMarker delimits retrieved content spliced into an outbound
// provider message.
const RetrievedDataMarker = "[RETRIEVED DATA]"

// RetrievalFailedMarker delimits a retrieval failure note; the failure is
// folded into context for the provider to reason about, never aborting the
// turn.
const RetrievalFailedMarker = "[RETRIEVAL FAILED]"

// ConfigPromptReply is returned when the selected provider has no
// credential configured. The caller is expected to prompt for credentials;
// the conversation store is not mutated.
const ConfigPromptReply = "I'm not fully set up yet — please add an API key for your AI provider " +
	"in the extension settings, then ask me again."

// FallbackNotice prefixes a reply produced by the secondary provider after
// the primary failed.
const FallbackNotice = "(Note: your primary assistant was unavailable, so a backup provider answered.)\n\n"

// ApologyFor maps a failure classification to the user-facing apology for
// that turn. The mapping is a pure function; every failure path still
// produces a usable conversational reply.
func ApologyFor(err error) string {
	var f *domain.Failure
	if !errors.As(err, &f) {
		return "Sorry, something unexpected went wrong on my end. Please try again."
	}

	switch f.Kind {
	case domain.FailOffline:
		return "It looks like you're offline right now. I'll be ready to help as soon as your connection is back."
	case domain.FailTimeout:
		return "Sorry, that took too long and the request timed out. Please try again in a moment."
	case domain.FailNetwork:
		return "Sorry, I'm having trouble reaching the assistant service right now. Please try again shortly."
	case domain.FailRateLimited:
		return "I'm receiving too many requests at the moment. Please wait a little and try again."
	case domain.FailAuthentication:
		return "My API credentials seem to be invalid. Please check the configured API key in settings."
	default:
		if f.Status > 0 {
			return fmt.Sprintf("Sorry, the assistant service returned an error (status %d). Please try again later.", f.Status)
		}
		return "Sorry, something unexpected went wrong on my end. Please try again."
	}
}

// retrievalNote renders a short explanation of a failed retrieval for
// splicing into the outbound message.
func retrievalNote(err error) string {
	var f *domain.Failure
	if !errors.As(err, &f) {
		return "the lookup failed for an unknown reason"
	}
	switch f.Kind {
	case domain.FailPolicyDenied:
		return "the requested site is not on the allowed list"
	case domain.FailRateLimited:
		return "the site is being queried too frequently right now"
	case domain.FailTimeout:
		return "the site took too long to respond"
	case domain.FailNetwork:
		return "the site could not be reached"
	case domain.FailValidation:
		return "the lookup request was malformed"
	case domain.FailNotFound:
		return "no matching results were found"
	default:
		return "the lookup failed"
	}
}
