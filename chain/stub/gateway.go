// Package stub provides an in-memory chain.Gateway for tests.
package stub

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"

	"candymint/chain"
)

// Gateway implements chain.Gateway from in-memory maps. Every method call
// is counted by name so tests can assert on which remote calls happened.
type Gateway struct {
	mu sync.Mutex

	Accounts      map[solana.PublicKey]*chain.Account
	Balances      map[solana.PublicKey]uint64
	Slot          uint64
	BlockTime     int64
	Blockhash     solana.Hash
	Transactions  map[solana.Signature]*chain.TransactionRecord
	TokenAccounts map[solana.PublicKey][]chain.TokenAccount
	LookupTables  map[solana.PublicKey]solana.PublicKeySlice

	// BalanceErr makes GetBalance fail when set.
	BalanceErr error
	// SendFunc overrides submission; when nil each sent transaction gets a
	// sequential signature.
	SendFunc func(n int, tx *solana.Transaction) (solana.Signature, error)

	Sent     []*solana.Transaction
	SentOpts []chain.SendOpts
	Calls    map[string]int
}

// New creates an empty stub gateway.
func New() *Gateway {
	return &Gateway{
		Accounts:      make(map[solana.PublicKey]*chain.Account),
		Balances:      make(map[solana.PublicKey]uint64),
		Transactions:  make(map[solana.Signature]*chain.TransactionRecord),
		TokenAccounts: make(map[solana.PublicKey][]chain.TokenAccount),
		LookupTables:  make(map[solana.PublicKey]solana.PublicKeySlice),
		Calls:         make(map[string]int),
	}
}

func (g *Gateway) record(method string) {
	g.mu.Lock()
	g.Calls[method]++
	g.mu.Unlock()
}

// CallCount returns how many times the named method was invoked.
func (g *Gateway) CallCount(method string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Calls[method]
}

func (g *Gateway) GetAccount(_ context.Context, pubkey solana.PublicKey) (*chain.Account, error) {
	g.record("GetAccount")
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Accounts[pubkey], nil
}

func (g *Gateway) GetBalance(_ context.Context, pubkey solana.PublicKey) (uint64, error) {
	g.record("GetBalance")
	if g.BalanceErr != nil {
		return 0, g.BalanceErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Balances[pubkey], nil
}

func (g *Gateway) GetSlot(_ context.Context) (uint64, error) {
	g.record("GetSlot")
	return g.Slot, nil
}

func (g *Gateway) GetBlockTime(_ context.Context, _ uint64) (int64, error) {
	g.record("GetBlockTime")
	return g.BlockTime, nil
}

func (g *Gateway) GetLatestBlockhash(_ context.Context) (solana.Hash, error) {
	g.record("GetLatestBlockhash")
	return g.Blockhash, nil
}

func (g *Gateway) SendTransaction(_ context.Context, tx *solana.Transaction, opts chain.SendOpts) (solana.Signature, error) {
	g.record("SendTransaction")
	g.mu.Lock()
	n := len(g.Sent)
	g.Sent = append(g.Sent, tx)
	g.SentOpts = append(g.SentOpts, opts)
	g.mu.Unlock()

	if g.SendFunc != nil {
		return g.SendFunc(n, tx)
	}
	var sig solana.Signature
	sig[0] = byte(n + 1)
	return sig, nil
}

func (g *Gateway) GetTransaction(_ context.Context, sig solana.Signature) (*chain.TransactionRecord, error) {
	g.record("GetTransaction")
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Transactions[sig], nil
}

func (g *Gateway) GetTokenAccountsByOwner(_ context.Context, owner solana.PublicKey) ([]chain.TokenAccount, error) {
	g.record("GetTokenAccountsByOwner")
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.TokenAccounts[owner], nil
}

func (g *Gateway) GetLookupTable(_ context.Context, address solana.PublicKey) (solana.PublicKeySlice, error) {
	g.record("GetLookupTable")
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.LookupTables[address], nil
}
