// Package topology defines the contract the core consumes from the
// network-topology collaborator: sub-network decomposition, slack-bus
// selection, and the cycle/tree/susceptance/PTDF matrices the passive
// branch flow formulations read. Discovering this structure from raw
// branch connectivity is out of scope for the core; this package only
// describes what the core expects to receive, plus one reference
// implementation exercised by the test suite and cmd/demo.
package topology

import (
	"context"
	"fmt"

	"lopf/internal/model"
)

// Provider determines sub-network membership, slack buses, and the
// per-sub-network matrices a passive-branch formulation needs, writing
// the result into net.SubNetworks and each PassiveBranch.SubNetwork.
//
// A Provider returns a TopologyError-kind error (see Error) on a missing
// slack bus or inconsistent sub-network membership; the driver treats any
// such error as fatal and does not attempt a solve.
type Provider interface {
	DetermineNetworkTopology(ctx context.Context, net *model.Network, formulation string) error
}

// ErrKind distinguishes the one error kind this package raises.
type ErrKind string

const KindTopologyError ErrKind = "TopologyError"

// Error wraps a topology failure with its kind, so callers can type-switch
// without string matching.
type Error struct {
	Kind ErrKind
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Msg) }

func newError(format string, args ...any) error {
	return &Error{Kind: KindTopologyError, Msg: fmt.Sprintf(format, args...)}
}

// needsMatrices reports whether formulation requires the cycle/tree/
// susceptance/PTDF matrices to be populated, or whether slack-bus and
// sub-network membership alone suffice ("angles" builds its own balance
// from bus voltage-angle variables and never reads C/T/B/PTDF).
func needsMatrices(formulation string) bool {
	return formulation != "angles"
}
