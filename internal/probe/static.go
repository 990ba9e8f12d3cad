package probe

import (
	"context"

	"github.com/tonimelisma/netstate-go/internal/netstate"
)

// Static always returns a fixed classification. Used in tests and by glue
// code that needs a tracker without real network probing.
type Static struct {
	Result netstate.Reachability
}

// Classify returns the fixed classification.
func (s Static) Classify(context.Context) netstate.Reachability {
	return s.Result
}
