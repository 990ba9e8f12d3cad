package netstate

import "testing"

func TestRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code int
		kind ErrorKind
		want bool
	}{
		{"404 never retries", 404, ErrorKindNone, false},
		{"400 never retries", 400, ErrorKindNone, false},
		{"401 never retries", 401, ErrorKindNone, false},
		{"500 retries", 500, ErrorKindNone, true},
		{"503 retries", 503, ErrorKindOther, true},
		{"timeout on a 200 retries", 200, ErrorKindTimeout, true},
		{"connection error without response retries", 0, ErrorKindConnection, true},
		{"timeout without response retries", 0, ErrorKindTimeout, true},
		// Status-code exclusions take precedence over error kind.
		{"403 with connection error stays non-retryable", 403, ErrorKindConnection, false},
		{"404 with timeout stays non-retryable", 404, ErrorKindTimeout, false},
		{"plain 200 does not retry", 200, ErrorKindNone, false},
		{"422 does not retry", 422, ErrorKindOther, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := Retryable(tc.code, tc.kind); got != tc.want {
				t.Fatalf("Retryable(%d, %v) = %v, want %v", tc.code, tc.kind, got, tc.want)
			}
		})
	}
}
