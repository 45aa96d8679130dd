package candyguard

import (
	"context"
	"fmt"
	"log"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"candymint/chain"
)

const anchorDiscLen = 8

// FetchCandyMachine fetches and decodes a candy machine account.
func FetchCandyMachine(ctx context.Context, gw chain.Gateway, address solana.PublicKey) (*CandyMachine, error) {
	account, err := gw.GetAccount(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("fetch candy machine: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("candy machine %s not found", address)
	}
	if len(account.Data) < anchorDiscLen {
		return nil, fmt.Errorf("candy machine %s: account data too short", address)
	}

	var cm CandyMachine
	decoder := bin.NewBorshDecoder(account.Data[anchorDiscLen:])
	if err := decoder.Decode(&cm); err != nil {
		return nil, fmt.Errorf("decode candy machine %s: %w", address, err)
	}
	cm.Address = address
	return &cm, nil
}

// FetchCandyGuard fetches and decodes the guard configuration account a
// machine's mintAuthority points at. Returns (nil, nil) when no guard
// account exists.
func FetchCandyGuard(ctx context.Context, gw chain.Gateway, address solana.PublicKey) (*CandyGuard, error) {
	account, err := gw.GetAccount(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("fetch candy guard: %w", err)
	}
	if account == nil {
		return nil, nil
	}
	if len(account.Data) < anchorDiscLen {
		return nil, fmt.Errorf("candy guard %s: account data too short", address)
	}

	var cg CandyGuard
	decoder := bin.NewBorshDecoder(account.Data[anchorDiscLen:])
	if err := decoder.Decode(&cg); err != nil {
		return nil, fmt.Errorf("decode candy guard %s: %w", address, err)
	}
	cg.Address = address
	return &cg, nil
}

// FetchMintCounter fetches the per-wallet mint_limit counter. An absent
// counter means the wallet has not minted through this guard yet and is
// reported as (nil, nil).
func FetchMintCounter(ctx context.Context, gw chain.Gateway, id uint8, user, candyGuard, candyMachine solana.PublicKey) (*MintCounter, error) {
	pda, _, err := FindMintCounterPDA(id, user, candyGuard, candyMachine)
	if err != nil {
		return nil, fmt.Errorf("derive mint counter PDA: %w", err)
	}
	account, err := gw.GetAccount(ctx, pda)
	if err != nil {
		return nil, fmt.Errorf("fetch mint counter: %w", err)
	}
	if account == nil {
		return nil, nil
	}
	if len(account.Data) < anchorDiscLen {
		return nil, fmt.Errorf("mint counter %s: account data too short", pda)
	}

	var counter MintCounter
	decoder := bin.NewBorshDecoder(account.Data[anchorDiscLen:])
	if err := decoder.Decode(&counter); err != nil {
		return nil, fmt.Errorf("decode mint counter %s: %w", pda, err)
	}
	return &counter, nil
}

// FetchAllocationTracker fetches the per-guard allocation counter; (nil,
// nil) when the guard authority has not initialized it yet.
func FetchAllocationTracker(ctx context.Context, gw chain.Gateway, id uint8, candyGuard, candyMachine solana.PublicKey) (*AllocationTracker, error) {
	pda, _, err := FindAllocationTrackerPDA(id, candyGuard, candyMachine)
	if err != nil {
		return nil, fmt.Errorf("derive allocation tracker PDA: %w", err)
	}
	account, err := gw.GetAccount(ctx, pda)
	if err != nil {
		return nil, fmt.Errorf("fetch allocation tracker: %w", err)
	}
	if account == nil {
		return nil, nil
	}
	if len(account.Data) < anchorDiscLen {
		return nil, fmt.Errorf("allocation tracker %s: account data too short", pda)
	}

	var tracker AllocationTracker
	decoder := bin.NewBorshDecoder(account.Data[anchorDiscLen:])
	if err := decoder.Decode(&tracker); err != nil {
		return nil, fmt.Errorf("decode allocation tracker %s: %w", pda, err)
	}
	return &tracker, nil
}

// FetchAllowListProof checks whether the wallet already submitted its merkle
// proof for this guard; (nil, nil) when no proof record exists.
func FetchAllowListProof(ctx context.Context, gw chain.Gateway, merkleRoot [32]byte, user, candyGuard, candyMachine solana.PublicKey) (*AllowListProof, error) {
	pda, _, err := FindAllowListProofPDA(merkleRoot, user, candyGuard, candyMachine)
	if err != nil {
		return nil, fmt.Errorf("derive allow list proof PDA: %w", err)
	}
	account, err := gw.GetAccount(ctx, pda)
	if err != nil {
		return nil, fmt.Errorf("fetch allow list proof: %w", err)
	}
	if account == nil {
		return nil, nil
	}
	if len(account.Data) < anchorDiscLen {
		return nil, fmt.Errorf("allow list proof %s: account data too short", pda)
	}

	var proof AllowListProof
	decoder := bin.NewBorshDecoder(account.Data[anchorDiscLen:])
	if err := decoder.Decode(&proof); err != nil {
		return nil, fmt.Errorf("decode allow list proof %s: %w", pda, err)
	}
	return &proof, nil
}

// metadataAccount mirrors the token metadata layout up to the collection
// field; trailing fields are not decoded.
type metadataAccount struct {
	Key                  uint8
	UpdateAuthority      solana.PublicKey
	Mint                 solana.PublicKey
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             *[]Creator `bin:"optional"`
	PrimarySaleHappened  bool
	IsMutable            bool
	EditionNonce         *uint8           `bin:"optional"`
	TokenStandard        *uint8           `bin:"optional"`
	Collection           *assetCollection `bin:"optional"`
}

type assetCollection struct {
	Verified bool
	Key      solana.PublicKey
}

// FetchMetadata fetches and decodes the token metadata account of a mint.
func FetchMetadata(ctx context.Context, gw chain.Gateway, mint solana.PublicKey) (*Asset, error) {
	pda, _, err := FindMetadataPDA(mint)
	if err != nil {
		return nil, fmt.Errorf("derive metadata PDA: %w", err)
	}
	account, err := gw.GetAccount(ctx, pda)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}
	if account == nil {
		return nil, nil
	}

	var md metadataAccount
	decoder := bin.NewBorshDecoder(account.Data)
	if err := decoder.Decode(&md); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", pda, err)
	}

	asset := &Asset{
		Mint: mint,
		Name: trimNul(md.Name),
		URI:  trimNul(md.URI),
	}
	if md.Collection != nil {
		asset.HasCollection = true
		asset.Collection = md.Collection.Key
		asset.CollectionVerified = md.Collection.Verified
	}
	return asset, nil
}

// FetchAssetsByOwner lists the wallet's NFTs with their collection
// references. Tokens whose metadata cannot be fetched are skipped.
func FetchAssetsByOwner(ctx context.Context, gw chain.Gateway, owner solana.PublicKey) ([]Asset, error) {
	tokenAccounts, err := gw.GetTokenAccountsByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list token accounts: %w", err)
	}

	var assets []Asset
	for _, ta := range tokenAccounts {
		// NFTs hold exactly one unit
		if ta.Amount != 1 {
			continue
		}
		asset, err := FetchMetadata(ctx, gw, ta.Mint)
		if err != nil {
			log.Printf("[assets] metadata fetch for %s failed: %v", ta.Mint, err)
			continue
		}
		if asset == nil {
			continue
		}
		assets = append(assets, *asset)
	}
	return assets, nil
}

// Metadata names are fixed-width on chain and NUL padded.
func trimNul(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return s[:i]
		}
	}
	return s
}
