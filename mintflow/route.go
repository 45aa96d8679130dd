package mintflow

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"candymint/candyguard"
	"candymint/chain"
)

// Route is a required pre-flight step ahead of minting. Instruction is nil
// when the step was already satisfied on chain (proof record exists) and
// nothing needs to be submitted.
type Route struct {
	Instruction solana.Instruction
}

// BuildRoute checks whether the chosen guard set requires a pre-flight
// route instruction and builds it. Returns (nil, nil) when no route is
// needed at all; a non-nil Route with a nil Instruction means the route was
// submitted previously and must not be resubmitted.
func BuildRoute(
	ctx context.Context,
	gw chain.Gateway,
	machine *candyguard.CandyMachine,
	candyGuard solana.PublicKey,
	set *candyguard.GuardSet,
	label string,
	payer solana.PublicKey,
	allowlists candyguard.Allowlists,
) (*Route, error) {
	if set.AllowList == nil {
		return nil, nil
	}

	entries, ok := allowlists[label]
	if !ok {
		return nil, fmt.Errorf("group %q: %w", label, ErrAllowlistMissing)
	}
	root, err := candyguard.MerkleRoot(entries)
	if err != nil {
		return nil, fmt.Errorf("group %q allowlist: %w", label, err)
	}

	existing, err := candyguard.FetchAllowListProof(ctx, gw, root, payer, candyGuard, machine.Address)
	if err != nil {
		return nil, fmt.Errorf("check allow list proof: %w", err)
	}
	if existing != nil {
		return &Route{}, nil
	}

	proof, err := candyguard.MerkleProof(entries, payer.String())
	if err != nil {
		return nil, fmt.Errorf("group %q proof: %w", label, err)
	}

	instruction, err := candyguard.BuildRouteInstruction(machine, candyGuard, label, payer, root, proof)
	if err != nil {
		return nil, fmt.Errorf("build route instruction: %w", err)
	}
	return &Route{Instruction: instruction}, nil
}
