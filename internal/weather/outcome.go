package weather

import "fmt"

// ErrorKind classifies a failed fetch.
type ErrorKind string

const (
	// ErrorTransport covers network-level failures: timeouts, connection
	// errors, an open circuit breaker. No upstream status is available.
	ErrorTransport ErrorKind = "transport"
	// ErrorUpstream is a non-2xx HTTP response from the provider.
	ErrorUpstream ErrorKind = "upstream"
	// ErrorParse is a malformed or incomplete response body on an
	// otherwise successful exchange.
	ErrorParse ErrorKind = "parse"
	// ErrorNoData is the sentinel state before the first fetch completes.
	ErrorNoData ErrorKind = "no_data"
)

// FetchError describes one failed fetch. StatusCode is only set for
// upstream errors.
type FetchError struct {
	Kind       ErrorKind `json:"kind"`
	StatusCode int       `json:"statusCode,omitempty"`
	Cause      string    `json:"cause"`
}

func (e *FetchError) Error() string {
	if e.Kind == ErrorUpstream {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Cause)
}

// FetchOutcome is the result of one poll cycle: exactly one of Reading or
// Err is set. It is the unit of replacement in the store.
type FetchOutcome struct {
	Reading *Reading    `json:"reading,omitempty"`
	Err     *FetchError `json:"error,omitempty"`
}

// Success wraps a fully populated reading.
func Success(r Reading) FetchOutcome {
	return FetchOutcome{Reading: &r}
}

// Failure wraps a fetch error.
func Failure(err *FetchError) FetchOutcome {
	return FetchOutcome{Err: err}
}

// NoData is the outcome a freshly created store holds before the first
// fetch has completed.
func NoData() FetchOutcome {
	return Failure(&FetchError{Kind: ErrorNoData, Cause: "no fetch has completed yet"})
}

// OK reports whether the outcome carries a reading.
func (o FetchOutcome) OK() bool {
	return o.Reading != nil
}

// Clone returns a deep copy. Callers receive copies from the store, never
// references into it.
func (o FetchOutcome) Clone() FetchOutcome {
	out := FetchOutcome{}
	if o.Reading != nil {
		r := *o.Reading
		r.Rain1h = clonePtr(o.Reading.Rain1h)
		r.Rain3h = clonePtr(o.Reading.Rain3h)
		r.Snow1h = clonePtr(o.Reading.Snow1h)
		r.Snow3h = clonePtr(o.Reading.Snow3h)
		r.Visibility = clonePtr(o.Reading.Visibility)
		if o.Reading.Conditions != nil {
			r.Conditions = append([]Condition(nil), o.Reading.Conditions...)
		}
		out.Reading = &r
	}
	if o.Err != nil {
		e := *o.Err
		out.Err = &e
	}
	return out
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
