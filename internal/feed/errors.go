package feed

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrTransport marks every failure to obtain a document: connection and
	// timeout errors, non-success statuses and empty bodies.
	ErrTransport = errors.New("feed transport failure")
	// ErrMalformedDocument marks bodies that are not well-formed XML.
	ErrMalformedDocument = errors.New("malformed feed document")

	ErrEmptyBody   = errors.New("empty response body")
	ErrReadTimeout = errors.New("read timeout")
)

// TransportError reports a failed fetch. StatusCode is zero when no HTTP
// response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("fetching %s failed", e.URL)
	}
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// MalformedDocumentError reports a body that could not be built into a tree.
type MalformedDocumentError struct {
	Err error
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed feed document: %v", e.Err)
}

func (e *MalformedDocumentError) Unwrap() []error {
	return []error{ErrMalformedDocument, e.Err}
}

// Outcome classifies the result of one fetch-and-parse call.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNoEpisodes
	OutcomeTransport
	OutcomeMalformed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNoEpisodes:
		return "no episodes"
	case OutcomeTransport:
		return "transport failure"
	case OutcomeMalformed:
		return "malformed document"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Classify maps the pair returned by Service.Fetch to an Outcome. Only an
// explicit cancellation is OutcomeCancelled; an expired deadline is a
// timeout and therefore a transport failure.
func Classify(f *Feed, err error) Outcome {
	switch {
	case err == nil && f != nil && f.EpisodeCount() == 0:
		return OutcomeNoEpisodes
	case err == nil && f != nil:
		return OutcomeOK
	case errors.Is(err, ErrMalformedDocument):
		return OutcomeMalformed
	case errors.Is(err, ErrReadTimeout):
		return OutcomeTransport
	case errors.Is(err, context.Canceled):
		return OutcomeCancelled
	default:
		return OutcomeTransport
	}
}
