package guardcheck

import (
	"context"
	"log"

	"github.com/gagliardetto/solana-go"

	"candymint/candyguard"
	"candymint/chain"
)

// Guard predicates. Each evaluates one guard condition against the wallet
// and chain state; remote-reading predicates take the gateway explicitly.

// addressGateAllows checks the wallet against the gate address.
func addressGateAllows(wallet, gate solana.PublicKey) bool {
	return wallet.Equals(gate)
}

// allocationRemaining returns how many mints the guard-wide allocation still
// permits. An uninitialized tracker account leaves the full limit available.
func allocationRemaining(ctx context.Context, gw chain.Gateway, machine *candyguard.CandyMachine, set *candyguard.GuardSet) uint64 {
	allocation := set.Allocation
	if allocation == nil {
		return 0
	}

	tracker, err := candyguard.FetchAllocationTracker(ctx, gw, allocation.ID, machine.MintAuthority, machine.Address)
	if err != nil {
		log.Printf("[guards] allocation tracker fetch failed: %v", err)
		return 0
	}
	if tracker == nil {
		log.Printf("[guards] allocation guard %d not initialized, minting may fail", allocation.ID)
		return uint64(allocation.Limit)
	}
	if tracker.Count >= allocation.Limit {
		return 0
	}
	return uint64(allocation.Limit - tracker.Count)
}

// mintLimitRemaining returns how many mints the wallet's per-guard limit
// still permits. An absent counter means the wallet has not minted yet.
func mintLimitRemaining(ctx context.Context, gw chain.Gateway, machine *candyguard.CandyMachine, wallet solana.PublicKey, set *candyguard.GuardSet) uint64 {
	mintLimit := set.MintLimit
	if mintLimit == nil {
		return 0
	}

	counter, err := candyguard.FetchMintCounter(ctx, gw, mintLimit.ID, wallet, machine.MintAuthority, machine.Address)
	if err != nil {
		log.Printf("[guards] mint counter fetch failed: %v", err)
		return 0
	}
	if counter == nil {
		return uint64(mintLimit.Limit)
	}
	if counter.Count >= mintLimit.Limit {
		return 0
	}
	return uint64(mintLimit.Limit - counter.Count)
}

// allowlistContains checks group membership. A configured allowlist guard
// without local membership data is a configuration error and denies.
func allowlistContains(lists candyguard.Allowlists, label string, wallet solana.PublicKey) bool {
	entries, ok := lists[label]
	if !ok {
		log.Printf("[guards] allowlist for group %q missing from configuration", label)
		return false
	}
	walletStr := wallet.String()
	for _, entry := range entries {
		if entry == walletStr {
			return true
		}
	}
	return false
}

// payableCount returns how many mints the balance affords at the given
// price, rounding down. A zero price does not constrain.
func payableCount(balance, lamports uint64) (uint64, bool) {
	if lamports == 0 {
		return 0, false
	}
	return balance / lamports, true
}

// OwnedCollectionCount counts owned assets whose verified collection
// matches the required one. It feeds display and mint-argument selection,
// not a hard gate.
func OwnedCollectionCount(assets []candyguard.Asset, collection solana.PublicKey) uint64 {
	var count uint64
	for _, asset := range assets {
		if asset.HasCollection && asset.CollectionVerified && asset.Collection.Equals(collection) {
			count++
		}
	}
	return count
}

// solBalanceRequired reports whether any candidate group configures a
// lamport-payment guard, so the balance is fetched at most once per pass.
func solBalanceRequired(groups []candyguard.Group) bool {
	for _, g := range groups {
		if g.Guards.SolPayment != nil || g.Guards.FreezeSolPayment != nil {
			return true
		}
	}
	return false
}

// assetsRequired reports whether any candidate group inspects owned NFTs.
func assetsRequired(groups []candyguard.Group) bool {
	for _, g := range groups {
		if g.Guards.NftBurn != nil || g.Guards.NftGate != nil || g.Guards.NftPayment != nil {
			return true
		}
	}
	return false
}
