package netstate

// ErrorKind is a coarse transport-error classification used alongside HTTP
// status codes to decide retryability.
type ErrorKind int

const (
	// ErrorKindNone: no transport error (a response was received).
	ErrorKindNone ErrorKind = iota
	// ErrorKindConnection: connect/reset style failures.
	ErrorKindConnection
	// ErrorKindTimeout: the attempt timed out.
	ErrorKindTimeout
	// ErrorKindOther: anything else.
	ErrorKindOther
)

// nonRetryableCodes are client errors where retrying the same request can
// never succeed.
var nonRetryableCodes = map[int]bool{
	400: true,
	401: true,
	403: true,
	404: true,
}

// Retryable decides whether a failed sync attempt is worth retrying. Rules
// apply in order; status-code exclusions win over error kind, so a 403 that
// also saw a connection error stays non-retryable.
//
//  1. 400/401/403/404: never retry.
//  2. Any 5xx: retry.
//  3. Connection errors: retry.
//  4. Timeouts: retry.
//  5. Everything else: don't.
func Retryable(statusCode int, kind ErrorKind) bool {
	if nonRetryableCodes[statusCode] {
		return false
	}

	if statusCode >= 500 {
		return true
	}

	if kind == ErrorKindConnection || kind == ErrorKindTimeout {
		return true
	}

	return false
}
