package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// FetchError represents a failed remote fetch. Transient network
// failures are retriable; malformed responses are not, since retrying a
// response the server already produced wrong cannot help.
type FetchError struct {
	Op        string // operation that failed (e.g. "orders", "statistics")
	Err       error  // underlying error
	Retriable bool
}

func (e *FetchError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *FetchError) IsRetriable() bool {
	return e.Retriable
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewTransientFetchError creates a retriable fetch error
func NewTransientFetchError(op string, err error) *FetchError {
	return &FetchError{Op: op, Err: err, Retriable: true}
}

// NewMalformedResponseError creates a non-retriable fetch error wrapping
// ErrMalformedResponse so callers can match it with errors.Is.
func NewMalformedResponseError(op string, err error) *FetchError {
	return &FetchError{Op: op, Err: errors.Join(ErrMalformedResponse, err), Retriable: false}
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrMalformedResponse is returned when a remote response is missing
	// expected fields. Not retriable.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrUnknownSlot is returned when a slot index does not exist in the
	// record store for the current catalog load.
	ErrUnknownSlot = errors.New("unknown slot")

	// ErrConfigNotFound is returned when the configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)
