package mintflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"

	"candymint/candyguard"
	"candymint/chain"
)

// Mint transactions carry a raised compute ceiling; the token-metadata CPI
// chain of mint_v2 does not fit in the default budget.
const DefaultComputeUnitLimit uint32 = 800_000

// DefaultDevFeeLamports is the optional per-mint developer fee (0.005 SOL).
const DefaultDevFeeLamports uint64 = 5_000_000

// DefaultDevFeeDestination receives the developer fee when it is enabled.
var DefaultDevFeeDestination = solana.MustPublicKeyFromBase58("B6NpJRGQrKbZxuUY6x8G4Y7mr4jo77ea4WvYc9mJmY2k")

// MinterOptions tunes the mint flow. Zero values select the defaults.
type MinterOptions struct {
	// LookupTable, when set, is attached to every mint transaction as an
	// address lookup table.
	LookupTable *solana.PublicKey

	// DevFee prepends a developer fee transfer to each mint transaction.
	DevFee            bool
	DevFeeLamports    uint64
	DevFeeDestination solana.PublicKey

	ComputeUnitLimit uint32

	ConfirmRetries int
	ConfirmDelay   time.Duration

	// HTTPClient fetches off-chain metadata JSON after a successful mint.
	HTTPClient *http.Client
}

// MintRequest asks for Quantity mints of one guard group paid and signed
// by Payer.
type MintRequest struct {
	Label    string
	Quantity int
	Payer    solana.PrivateKey
}

// MintedNFT is one successfully minted asset. Name, URI and Metadata are
// best-effort enrichment; the mint address alone proves the mint.
type MintedNFT struct {
	Mint     solana.PublicKey
	Name     string
	URI      string
	Metadata *OffchainMetadata
}

// OffchainMetadata is the subset of the token metadata JSON the client
// surfaces.
type OffchainMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// MintResult aggregates the per-transaction outcomes of one request.
// Minted and Failed together cover every submitted transaction.
type MintResult struct {
	Minted     []MintedNFT
	Failed     []VerifyOutcome
	Signatures []solana.Signature
}

// Minter drives the full mint flow: guard selection, route pre-flight,
// transaction assembly, concurrent submission, and verification.
type Minter struct {
	gw         chain.Gateway
	allowlists candyguard.Allowlists
	opts       MinterOptions
}

func NewMinter(gw chain.Gateway, allowlists candyguard.Allowlists, opts MinterOptions) *Minter {
	if opts.ComputeUnitLimit == 0 {
		opts.ComputeUnitLimit = DefaultComputeUnitLimit
	}
	if opts.DevFeeLamports == 0 {
		opts.DevFeeLamports = DefaultDevFeeLamports
	}
	if opts.DevFeeDestination.IsZero() {
		opts.DevFeeDestination = DefaultDevFeeDestination
	}
	if opts.ConfirmRetries <= 0 {
		opts.ConfirmRetries = DefaultConfirmRetries
	}
	if opts.ConfirmDelay <= 0 {
		opts.ConfirmDelay = DefaultConfirmDelay
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Minter{gw: gw, allowlists: allowlists, opts: opts}
}

// Mint executes one mint request. Independent transactions fail
// independently; Minted and Failed together account for every requested
// unit. The request as a whole fails only when nothing could be submitted
// at all, and even then the returned result carries the failure ledger.
func (m *Minter) Mint(
	ctx context.Context,
	machine *candyguard.CandyMachine,
	guard *candyguard.CandyGuard,
	req MintRequest,
) (*MintResult, error) {
	if req.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1, got %d", req.Quantity)
	}
	label, set, err := ChooseGuard(req.Label, guard)
	if err != nil {
		return nil, err
	}

	args, err := BuildMintArgs(set, label, m.allowlists)
	if err != nil {
		return nil, err
	}

	if err := m.runRoute(ctx, machine, guard.Address, set, label, req.Payer); err != nil {
		return nil, err
	}

	var tables map[solana.PublicKey]solana.PublicKeySlice
	if m.opts.LookupTable != nil {
		addresses, err := m.gw.GetLookupTable(ctx, *m.opts.LookupTable)
		if err != nil {
			return nil, fmt.Errorf("resolve lookup table: %w", err)
		}
		tables = map[solana.PublicKey]solana.PublicKeySlice{*m.opts.LookupTable: addresses}
	}

	// All transactions of one request share a blockhash; they are built and
	// submitted well inside its validity window.
	blockhash, err := m.gw.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("get blockhash: %w", err)
	}

	result := &MintResult{}
	type candidate struct {
		tx  *solana.Transaction
		nft solana.PublicKey
	}
	candidates := make([]candidate, 0, req.Quantity)
	for i := 0; i < req.Quantity; i++ {
		nft := solana.NewWallet()
		tx, err := m.buildMintTransaction(machine, guard.Address, label, req.Payer, nft, args, blockhash, tables)
		if err != nil {
			log.Printf("[mint] build transaction %d: %v", i, err)
			result.Failed = append(result.Failed, VerifyOutcome{Reason: FailSigning})
			continue
		}
		candidates = append(candidates, candidate{tx: tx, nft: nft.PublicKey()})
	}
	if len(candidates) == 0 {
		return result, ErrNoTransactionsSent
	}

	sigs := make([]solana.Signature, len(candidates))
	errs := make([]error, len(candidates))
	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		go func(i int, tx *solana.Transaction) {
			defer wg.Done()
			// Preflight simulation is skipped so guard failures land as
			// bot-taxed transactions instead of node-side rejections.
			sigs[i], errs[i] = m.gw.SendTransaction(ctx, tx, chain.SendOpts{SkipPreflight: true})
		}(i, c.tx)
	}
	wg.Wait()

	var submitted []solana.Signature
	for i := range candidates {
		if errs[i] != nil {
			log.Printf("[mint] submit for %s: %s", candidates[i].nft, candyguard.ParseProgramError(errs[i]))
			result.Failed = append(result.Failed, VerifyOutcome{Reason: FailSubmission})
			continue
		}
		submitted = append(submitted, sigs[i])
	}
	if len(submitted) == 0 {
		return result, ErrNoTransactionsSent
	}
	result.Signatures = submitted

	outcomes := VerifySignatures(ctx, m.gw, submitted, m.opts.ConfirmRetries, m.opts.ConfirmDelay)
	for _, outcome := range outcomes {
		if !outcome.Success {
			log.Printf("[mint] %s: %s", outcome.Signature, outcome.Reason)
			result.Failed = append(result.Failed, outcome)
			continue
		}
		result.Minted = append(result.Minted, m.enrich(ctx, outcome.Mint))
	}
	return result, nil
}

// runRoute submits the pre-flight route transaction when the chosen guard
// set needs one, and blocks until it lands. Mint transactions reference the
// proof account the route creates.
func (m *Minter) runRoute(
	ctx context.Context,
	machine *candyguard.CandyMachine,
	candyGuard solana.PublicKey,
	set *candyguard.GuardSet,
	label string,
	payer solana.PrivateKey,
) error {
	route, err := BuildRoute(ctx, m.gw, machine, candyGuard, set, label, payer.PublicKey(), m.allowlists)
	if err != nil {
		return err
	}
	if route == nil || route.Instruction == nil {
		return nil
	}

	blockhash, err := m.gw.GetLatestBlockhash(ctx)
	if err != nil {
		return fmt.Errorf("route blockhash: %w", err)
	}
	tx, err := solana.NewTransaction(
		[]solana.Instruction{route.Instruction},
		blockhash,
		solana.TransactionPayer(payer.PublicKey()),
	)
	if err != nil {
		return fmt.Errorf("build route transaction: %w", err)
	}
	if _, err := tx.Sign(signerFor(payer, nil)); err != nil {
		return fmt.Errorf("sign route transaction: %w", err)
	}
	sig, err := m.gw.SendTransaction(ctx, tx, chain.SendOpts{SkipPreflight: true})
	if err != nil {
		return fmt.Errorf("submit route transaction: %s", candyguard.ParseProgramError(err))
	}
	log.Printf("[mint] route submitted: %s", sig)

	if err := m.awaitTransaction(ctx, sig); err != nil {
		return fmt.Errorf("route transaction %s: %w", sig, err)
	}
	return nil
}

// awaitTransaction polls until the signature is visible on chain or the
// retry budget runs out.
func (m *Minter) awaitTransaction(ctx context.Context, sig solana.Signature) error {
	for attempt := 0; attempt < m.opts.ConfirmRetries; attempt++ {
		rec, err := m.gw.GetTransaction(ctx, sig)
		if err != nil {
			log.Printf("[mint] await %s: %v", sig, err)
		} else if rec != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.opts.ConfirmDelay):
		}
	}
	return fmt.Errorf("not confirmed after %d attempts", m.opts.ConfirmRetries)
}

func (m *Minter) buildMintTransaction(
	machine *candyguard.CandyMachine,
	candyGuard solana.PublicKey,
	label string,
	payer solana.PrivateKey,
	nft *solana.Wallet,
	args candyguard.MintArgs,
	blockhash solana.Hash,
	tables map[solana.PublicKey]solana.PublicKeySlice,
) (*solana.Transaction, error) {
	mintIx, err := candyguard.BuildMintInstruction(machine, candyGuard, label, payer.PublicKey(), nft.PublicKey(), args)
	if err != nil {
		return nil, fmt.Errorf("build mint instruction: %w", err)
	}

	instructions := []solana.Instruction{
		computebudget.NewSetComputeUnitLimitInstruction(m.opts.ComputeUnitLimit).Build(),
	}
	if m.opts.DevFee {
		instructions = append(instructions, system.NewTransferInstruction(
			m.opts.DevFeeLamports,
			payer.PublicKey(),
			m.opts.DevFeeDestination,
		).Build())
	}
	instructions = append(instructions, mintIx)

	txOpts := []solana.TransactionOption{solana.TransactionPayer(payer.PublicKey())}
	if len(tables) > 0 {
		txOpts = append(txOpts, solana.TransactionAddressTables(tables))
	}
	tx, err := solana.NewTransaction(instructions, blockhash, txOpts...)
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}
	if _, err := tx.Sign(signerFor(payer, nft)); err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return tx, nil
}

// signerFor resolves the payer key and, when present, the fresh NFT mint
// key.
func signerFor(payer solana.PrivateKey, nft *solana.Wallet) func(key solana.PublicKey) *solana.PrivateKey {
	return func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			return &payer
		}
		if nft != nil && key.Equals(nft.PublicKey()) {
			return &nft.PrivateKey
		}
		return nil
	}
}

// enrich attaches on-chain and off-chain metadata to a minted address.
// Enrichment failures are logged and never downgrade the mint itself.
func (m *Minter) enrich(ctx context.Context, mint solana.PublicKey) MintedNFT {
	minted := MintedNFT{Mint: mint}

	asset, err := candyguard.FetchMetadata(ctx, m.gw, mint)
	if err != nil || asset == nil {
		log.Printf("[mint] metadata for %s unavailable: %v", mint, err)
		return minted
	}
	minted.Name = asset.Name
	minted.URI = asset.URI

	if asset.URI != "" {
		md, err := m.fetchOffchain(ctx, asset.URI)
		if err != nil {
			log.Printf("[mint] off-chain metadata for %s: %v", mint, err)
		} else {
			minted.Metadata = md
		}
	}
	return minted
}

func (m *Minter) fetchOffchain(ctx context.Context, uri string) (*OffchainMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	res, err := m.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", res.Status)
	}

	var md OffchainMetadata
	if err := json.NewDecoder(res.Body).Decode(&md); err != nil {
		return nil, fmt.Errorf("decode metadata json: %w", err)
	}
	return &md, nil
}
