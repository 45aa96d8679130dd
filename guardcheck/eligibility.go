package guardcheck

import (
	"context"
	"log"

	"github.com/gagliardetto/solana-go"

	"candymint/candyguard"
	"candymint/chain"
)

// GuardReturn is the eligibility verdict for one guard group. Reason is set
// exactly when Allowed is false, and a denied group never reports a
// non-zero MaxAmount.
type GuardReturn struct {
	Label     string
	Allowed   bool
	Reason    Reason
	MaxAmount uint64
}

// Checker evaluates guard groups against current chain and wallet state.
// Evaluation only reads chain state and can be re-run at any time.
type Checker struct {
	gw            chain.Gateway
	allowlists    candyguard.Allowlists
	maxMintAmount uint64
}

// NewChecker creates an eligibility checker. maxMintAmount of 0 disables
// the global per-request cap.
func NewChecker(gw chain.Gateway, allowlists candyguard.Allowlists, maxMintAmount uint64) *Checker {
	return &Checker{gw: gw, allowlists: allowlists, maxMintAmount: maxMintAmount}
}

// Check evaluates every guard group for the wallet, returning one verdict
// per group in configuration order with the synthetic default group last,
// plus the wallet's owned assets when any group needed them. An all-denied
// pass is a normal result, not an error.
func (c *Checker) Check(
	ctx context.Context,
	wallet solana.PublicKey,
	machine *candyguard.CandyMachine,
	guard *candyguard.CandyGuard,
	solanaTime int64,
) ([]GuardReturn, []candyguard.Asset, error) {
	if guard == nil {
		return nil, nil, nil
	}

	candidates := make([]candyguard.Group, 0, len(guard.Groups)+1)
	candidates = append(candidates, guard.Groups...)
	candidates = append(candidates, candyguard.Group{
		Label:  candyguard.DefaultGroupLabel,
		Guards: guard.Guards,
	})

	// No wallet or sold out: deny everything before touching the chain.
	if wallet.IsZero() || machine.ItemsRemaining() == 0 {
		return denyAll(candidates, ReasonNoWallet), nil, nil
	}

	var solBalance uint64
	if solBalanceRequired(candidates) {
		balance, err := c.gw.GetBalance(ctx, wallet)
		if err != nil {
			log.Printf("[guards] balance fetch for %s failed: %v", wallet, err)
			return denyAll(candidates, ReasonWalletNotFound), nil, nil
		}
		solBalance = balance
	}

	var ownedAssets []candyguard.Asset
	if assetsRequired(candidates) {
		assets, err := candyguard.FetchAssetsByOwner(ctx, c.gw, wallet)
		if err != nil {
			log.Printf("[guards] owned asset fetch for %s failed: %v", wallet, err)
		} else {
			ownedAssets = assets
		}
	}

	results := make([]GuardReturn, 0, len(candidates))
	for _, group := range candidates {
		results = append(results, c.checkGroup(ctx, group, wallet, machine, solBalance, solanaTime))
	}
	return results, ownedAssets, nil
}

// checkGroup runs the group's configured predicates in fixed order and
// stops at the first failure. MaxAmount is the minimum of the remaining
// supply and every capacity contribution seen along the way.
func (c *Checker) checkGroup(
	ctx context.Context,
	group candyguard.Group,
	wallet solana.PublicKey,
	machine *candyguard.CandyMachine,
	solBalance uint64,
	solanaTime int64,
) GuardReturn {
	set := group.Guards
	mintable := machine.ItemsRemaining()

	deny := func(reason Reason) GuardReturn {
		log.Printf("[guards] group %q denied: %s", group.Label, reason)
		return GuardReturn{Label: group.Label, Reason: reason}
	}

	if set.AddressGate != nil {
		if !addressGateAllows(wallet, set.AddressGate.Address) {
			return deny(ReasonWrongAddress)
		}
	}

	if set.Allocation != nil {
		remaining := allocationRemaining(ctx, c.gw, machine, &set)
		mintable = min(mintable, remaining)
		if remaining < 1 {
			return deny(ReasonAllocationReached)
		}
	}

	if set.AllowList != nil {
		if !allowlistContains(c.allowlists, group.Label, wallet) {
			return deny(ReasonNotAllowed)
		}
	}

	if set.EndDate != nil {
		if solanaTime > set.EndDate.Date {
			return deny(ReasonMintTimeOver)
		}
	}

	if set.FreezeSolPayment != nil {
		if count, constrained := payableCount(solBalance, set.FreezeSolPayment.Lamports); constrained {
			mintable = min(mintable, count)
		}
		if set.FreezeSolPayment.Lamports > solBalance {
			return deny(ReasonNotEnoughSOL)
		}
	}

	if set.MintLimit != nil {
		remaining := mintLimitRemaining(ctx, c.gw, machine, wallet, &set)
		mintable = min(mintable, remaining)
		if remaining < 1 {
			return deny(ReasonMintLimitReached)
		}
	}

	if set.SolPayment != nil {
		if count, constrained := payableCount(solBalance, set.SolPayment.Lamports); constrained {
			mintable = min(mintable, count)
		}
		if set.SolPayment.Lamports > solBalance {
			return deny(ReasonNotEnoughSOL)
		}
	}

	if set.StartDate != nil {
		if solanaTime < set.StartDate.Date {
			return deny(ReasonStartNotReached)
		}
	}

	if c.maxMintAmount > 0 {
		mintable = min(mintable, c.maxMintAmount)
	}

	return GuardReturn{Label: group.Label, Allowed: true, MaxAmount: mintable}
}

func denyAll(candidates []candyguard.Group, reason Reason) []GuardReturn {
	results := make([]GuardReturn, 0, len(candidates))
	for _, group := range candidates {
		results = append(results, GuardReturn{Label: group.Label, Reason: reason})
	}
	return results
}
