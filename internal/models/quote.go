package models

// QuoteFailure distinguishes why a quote could not be obtained. The
// distinction is internal only: every failure is presented to callers as the
// quote simply being unavailable.
type QuoteFailure string

const (
	FailureNone          QuoteFailure = ""
	FailureRemoteError   QuoteFailure = "remote_error"   // the source reported an error for the symbol
	FailureTransport     QuoteFailure = "transport"      // network problem, including timeouts
	FailureMalformed     QuoteFailure = "malformed"      // payload could not be parsed or misses required fields
	FailureRedirectLimit QuoteFailure = "redirect_limit" // more than the allowed redirect hops
)

// Quote is the live price data for one symbol. It is fetched fresh on every
// request and never persisted.
type Quote struct {
	Price  float64 `json:"price"`  // current market price, rounded to 2 decimals
	Change float64 `json:"change"` // price minus previous close, rounded to 2 decimals, signed
}

// QuoteResult is either a quote or an unavailability marker with its cause.
type QuoteResult struct {
	Quote   Quote
	Failure QuoteFailure
}

// Available reports whether the quote was obtained.
func (r QuoteResult) Available() bool {
	return r.Failure == FailureNone
}

// Unavailable builds a failed result with the given cause.
func Unavailable(cause QuoteFailure) QuoteResult {
	return QuoteResult{Failure: cause}
}
