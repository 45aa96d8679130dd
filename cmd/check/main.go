package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"

	"candymint/candyguard"
	"candymint/chain"
	"candymint/config"
	"candymint/guardcheck"
)

func main() {
	walletFlag := flag.String("wallet", "", "wallet address to check (defaults to KEYPAIR's address)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found")
	}
	cfg := config.Load()
	if cfg.CandyMachine == "" {
		log.Fatal("CANDY_MACHINE is required")
	}

	wallet := resolveWallet(*walletFlag, cfg.KeypairBase58)

	allowlists, err := config.LoadAllowlists(cfg.AllowlistPath)
	if err != nil {
		log.Fatalf("load allowlists: %v", err)
	}

	ctx := context.Background()
	gw := chain.NewRPCGateway(cfg.RPCURL)

	clock := chain.NewClock(gw)
	if err := clock.Refresh(ctx); err != nil {
		log.Fatalf("read chain clock: %v", err)
	}
	price := chain.NewPriceFeed(chain.DefaultPriceURL)
	if err := price.Refresh(ctx); err != nil {
		log.Printf("price feed unavailable: %v", err)
	}

	machineAddr, err := solana.PublicKeyFromBase58(cfg.CandyMachine)
	if err != nil {
		log.Fatalf("invalid candy machine address: %v", err)
	}
	machine, err := candyguard.FetchCandyMachine(ctx, gw, machineAddr)
	if err != nil {
		log.Fatalf("fetch candy machine: %v", err)
	}
	if machine.Version != candyguard.AccountVersionV2 {
		log.Fatalf("unsupported candy machine account version %d", machine.Version)
	}
	guard, err := candyguard.FetchCandyGuard(ctx, gw, machine.MintAuthority)
	if err != nil {
		log.Fatalf("fetch candy guard: %v", err)
	}
	if guard == nil {
		log.Fatalf("candy machine %s has no guard account", machine.Address)
	}

	fmt.Printf("Candy machine %s (%s)\n", machine.Address, machine.Data.Symbol)
	fmt.Printf("Minted %d of %d, %d remaining\n",
		machine.ItemsRedeemed, machine.Data.ItemsAvailable, machine.ItemsRemaining())
	if p := price.Price(); p > 0 {
		fmt.Printf("SOL price: $%.2f\n", p)
	}
	fmt.Println()

	checker := guardcheck.NewChecker(gw, allowlists, cfg.MaxMintAmount)
	returns, assets, err := checker.Check(ctx, wallet, machine, guard, clock.Now())
	if err != nil {
		log.Fatalf("check eligibility: %v", err)
	}

	if !machine.CollectionMint.IsZero() {
		owned := guardcheck.OwnedCollectionCount(assets, machine.CollectionMint)
		fmt.Printf("Owned from collection %s: %d\n\n", machine.CollectionMint, owned)
	}

	for _, ret := range returns {
		if ret.Allowed {
			fmt.Printf("  %-12s eligible, up to %d\n", ret.Label, ret.MaxAmount)
		} else {
			fmt.Printf("  %-12s denied: %s\n", ret.Label, ret.Reason)
		}
	}
}

func resolveWallet(flagVal, keypair string) solana.PublicKey {
	if flagVal != "" {
		wallet, err := solana.PublicKeyFromBase58(flagVal)
		if err != nil {
			log.Fatalf("invalid wallet address: %v", err)
		}
		return wallet
	}
	if keypair != "" {
		key, err := solana.PrivateKeyFromBase58(keypair)
		if err != nil {
			log.Fatalf("invalid KEYPAIR: %v", err)
		}
		return key.PublicKey()
	}
	// No wallet: eligibility still runs and reports every group denied.
	return solana.PublicKey{}
}
