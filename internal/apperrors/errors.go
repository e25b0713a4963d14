package apperrors

import "fmt"

// RemoteCallKind classifies how a catalog call failed.
type RemoteCallKind string

const (
	// KindNetwork covers transport failures: DNS, refused connections, timeouts.
	KindNetwork RemoteCallKind = "network"
	// KindStatus is a response outside the 2xx range.
	KindStatus RemoteCallKind = "status"
	// KindDecode is a success response whose body is not the expected JSON.
	KindDecode RemoteCallKind = "decode"
)

// ErrRemoteCall is the single failure kind of the catalog: the call did not produce usable data.
type ErrRemoteCall struct {
	Op         string
	URL        string
	Kind       RemoteCallKind
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *ErrRemoteCall) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("%s: catalog returned status %d for %s", e.Op, e.StatusCode, e.URL)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s failure calling %s: %v", e.Op, e.Kind, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s: %s failure calling %s", e.Op, e.Kind, e.URL)
	}
}

// Unwrap exposes the underlying transport or decoding error.
func (e *ErrRemoteCall) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrRemoteCall) Is(target error) bool {
	_, ok := target.(*ErrRemoteCall)
	return ok
}

// NewStatusError creates an ErrRemoteCall for a non-success HTTP status.
func NewStatusError(op, url string, status int) *ErrRemoteCall {
	return &ErrRemoteCall{Op: op, URL: url, Kind: KindStatus, StatusCode: status}
}

// NewNetworkError creates an ErrRemoteCall for a transport failure.
func NewNetworkError(op, url string, err error) *ErrRemoteCall {
	return &ErrRemoteCall{Op: op, URL: url, Kind: KindNetwork, Err: err}
}

// NewDecodeError creates an ErrRemoteCall for a malformed response body.
func NewDecodeError(op, url string, err error) *ErrRemoteCall {
	return &ErrRemoteCall{Op: op, URL: url, Kind: KindDecode, Err: err}
}

// ErrUnknownControl is returned when an activated control is not an episode control
// of the currently rendered show cards.
type ErrUnknownControl struct {
	Key string
}

// Error implements the error interface.
func (e *ErrUnknownControl) Error() string {
	return fmt.Sprintf("no episodes control %q in the current show list", e.Key)
}

// Is allows for error checking with errors.Is().
func (e *ErrUnknownControl) Is(target error) bool {
	_, ok := target.(*ErrUnknownControl)
	return ok
}
