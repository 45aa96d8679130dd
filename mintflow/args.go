package mintflow

import (
	"fmt"

	"candymint/candyguard"
)

// BuildMintArgs translates the chosen guard set into the argument payload
// the mint instruction needs. Only inputs the program cannot derive itself
// are included. A configured allowList guard whose membership set is
// missing is a configuration error, distinct from runtime ineligibility.
func BuildMintArgs(
	set *candyguard.GuardSet,
	label string,
	allowlists candyguard.Allowlists,
) (candyguard.MintArgs, error) {
	var args candyguard.MintArgs

	if set.Allocation != nil {
		args.Allocation = &candyguard.AllocationArg{ID: set.Allocation.ID}
	}

	if set.AllowList != nil {
		entries, ok := allowlists[label]
		if !ok {
			return args, fmt.Errorf("group %q: %w", label, ErrAllowlistMissing)
		}
		root, err := candyguard.MerkleRoot(entries)
		if err != nil {
			return args, fmt.Errorf("group %q allowlist: %w", label, err)
		}
		args.AllowList = &candyguard.AllowListArg{MerkleRoot: root}
	}

	if set.FreezeSolPayment != nil {
		args.FreezeSolPayment = &candyguard.DestinationArg{
			Destination: set.FreezeSolPayment.Destination,
		}
	}

	if set.MintLimit != nil {
		args.MintLimit = &candyguard.MintLimitArg{ID: set.MintLimit.ID}
	}

	if set.SolPayment != nil {
		args.SolPayment = &candyguard.DestinationArg{
			Destination: set.SolPayment.Destination,
		}
	}

	if set.TokenPayment != nil {
		args.TokenPayment = &candyguard.TokenPaymentArg{
			Mint:           set.TokenPayment.Mint,
			DestinationAta: set.TokenPayment.DestinationAta,
		}
	}

	if set.ThirdPartySigner != nil {
		args.ThirdPartySigner = &candyguard.SignerArg{
			Signer: set.ThirdPartySigner.SignerKey,
		}
	}

	return args, nil
}
