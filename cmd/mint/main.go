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
	"candymint/mintflow"
)

func main() {
	groupFlag := flag.String("group", "", "guard group label (defaults to the default guard set)")
	quantityFlag := flag.Int("quantity", 1, "number of mints to attempt")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found")
	}
	cfg := config.Load()
	if cfg.CandyMachine == "" {
		log.Fatal("CANDY_MACHINE is required")
	}
	if cfg.KeypairBase58 == "" {
		log.Fatal("KEYPAIR is required")
	}
	payer, err := solana.PrivateKeyFromBase58(cfg.KeypairBase58)
	if err != nil {
		log.Fatalf("invalid KEYPAIR: %v", err)
	}

	allowlists, err := config.LoadAllowlists(cfg.AllowlistPath)
	if err != nil {
		log.Fatalf("load allowlists: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gw := chain.NewRPCGateway(cfg.RPCURL)

	clock := chain.NewClock(gw)
	if err := clock.Refresh(ctx); err != nil {
		log.Fatalf("read chain clock: %v", err)
	}
	go clock.Run(ctx, chain.DefaultClockInterval)

	price := chain.NewPriceFeed(chain.DefaultPriceURL)
	if err := price.Refresh(ctx); err != nil {
		log.Printf("price feed unavailable: %v", err)
	}
	go price.Run(ctx, chain.DefaultPriceInterval)

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

	// Gate on eligibility before paying for any transaction.
	checker := guardcheck.NewChecker(gw, allowlists, cfg.MaxMintAmount)
	returns, _, err := checker.Check(ctx, payer.PublicKey(), machine, guard, clock.Now())
	if err != nil {
		log.Fatalf("check eligibility: %v", err)
	}
	label := *groupFlag
	if label == "" {
		label = candyguard.DefaultGroupLabel
	}
	verdict := findVerdict(returns, label)
	if verdict == nil {
		log.Fatalf("no guard group %q", label)
	}
	if !verdict.Allowed {
		log.Fatalf("group %q: %s", label, verdict.Reason)
	}
	if uint64(*quantityFlag) > verdict.MaxAmount {
		log.Fatalf("group %q allows at most %d mints, asked for %d",
			label, verdict.MaxAmount, *quantityFlag)
	}

	opts := mintflow.MinterOptions{DevFee: cfg.DevFee}
	if cfg.LookupTable != "" {
		table, err := solana.PublicKeyFromBase58(cfg.LookupTable)
		if err != nil {
			log.Fatalf("invalid LOOKUP_TABLE: %v", err)
		}
		opts.LookupTable = &table
	}
	minter := mintflow.NewMinter(gw, allowlists, opts)

	result, err := minter.Mint(ctx, machine, guard, mintflow.MintRequest{
		Label:    *groupFlag,
		Quantity: *quantityFlag,
		Payer:    payer,
	})
	if err != nil {
		log.Fatalf("mint: %v", err)
	}

	fmt.Printf("Minted %d of %d\n", len(result.Minted), *quantityFlag)
	for _, nft := range result.Minted {
		if nft.Name != "" {
			fmt.Printf("  %s  %s\n", nft.Mint, nft.Name)
		} else {
			fmt.Printf("  %s\n", nft.Mint)
		}
	}
	for _, sig := range result.Signatures {
		fmt.Println(chain.ExplorerTxURL(cfg.Network, sig.String()))
	}
}

func findVerdict(returns []guardcheck.GuardReturn, label string) *guardcheck.GuardReturn {
	for i := range returns {
		if returns[i].Label == label {
			return &returns[i]
		}
	}
	return nil
}
