package chain

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	addresslookuptable "github.com/gagliardetto/solana-go/programs/address-lookup-table"
	"github.com/gagliardetto/solana-go/rpc"
)

// Account is a minimal on-chain account snapshot.
type Account struct {
	Lamports uint64
	Owner    solana.PublicKey
	Data     []byte
}

// TokenAccount is one SPL token holding of a wallet.
type TokenAccount struct {
	Mint   solana.PublicKey
	Amount uint64
}

// TransactionRecord is the finalized-transaction view needed for mint
// verification: program logs plus the static account list of the message.
type TransactionRecord struct {
	Slot     uint64
	Logs     []string
	Accounts []solana.PublicKey
}

// SendOpts controls transaction submission.
type SendOpts struct {
	SkipPreflight bool
}

// Gateway is the chain access surface the mint flow depends on. Absent
// accounts and transactions are reported as (nil, nil), not as errors;
// seed-addressed guard counters are expected to be missing before first use.
type Gateway interface {
	GetAccount(ctx context.Context, pubkey solana.PublicKey) (*Account, error)
	GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error)
	GetSlot(ctx context.Context) (uint64, error)
	GetBlockTime(ctx context.Context, slot uint64) (int64, error)
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction, opts SendOpts) (solana.Signature, error)
	GetTransaction(ctx context.Context, sig solana.Signature) (*TransactionRecord, error)
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]TokenAccount, error)
	GetLookupTable(ctx context.Context, address solana.PublicKey) (solana.PublicKeySlice, error)
}

// RPCGateway implements Gateway over a Solana JSON-RPC endpoint.
type RPCGateway struct {
	rpc *rpc.Client
}

// NewRPCGateway creates a gateway for the given RPC URL.
func NewRPCGateway(rpcURL string) *RPCGateway {
	return &RPCGateway{rpc: rpc.New(rpcURL)}
}

func (g *RPCGateway) GetAccount(ctx context.Context, pubkey solana.PublicKey) (*Account, error) {
	res, err := g.rpc.GetAccountInfo(ctx, pubkey)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account %s: %w", pubkey, err)
	}
	if res == nil || res.Value == nil {
		return nil, nil
	}
	return &Account{
		Lamports: res.Value.Lamports,
		Owner:    res.Value.Owner,
		Data:     res.Value.Data.GetBinary(),
	}, nil
}

func (g *RPCGateway) GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	res, err := g.rpc.GetBalance(ctx, pubkey, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("get balance %s: %w", pubkey, err)
	}
	return res.Value, nil
}

func (g *RPCGateway) GetSlot(ctx context.Context) (uint64, error) {
	return g.rpc.GetSlot(ctx, rpc.CommitmentFinalized)
}

// GetBlockTime returns the estimated unix time of the slot, or 0 when the
// node has no block-time for it.
func (g *RPCGateway) GetBlockTime(ctx context.Context, slot uint64) (int64, error) {
	t, err := g.rpc.GetBlockTime(ctx, slot)
	if err != nil {
		return 0, fmt.Errorf("get block time for slot %d: %w", slot, err)
	}
	if t == nil {
		return 0, nil
	}
	return int64(*t), nil
}

func (g *RPCGateway) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	res, err := g.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("get latest blockhash: %w", err)
	}
	return res.Value.Blockhash, nil
}

func (g *RPCGateway) SendTransaction(ctx context.Context, tx *solana.Transaction, opts SendOpts) (solana.Signature, error) {
	sig, err := g.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}
	return sig, nil
}

func (g *RPCGateway) GetTransaction(ctx context.Context, sig solana.Signature) (*TransactionRecord, error) {
	maxVersion := uint64(0)
	res, err := g.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction %s: %w", sig, err)
	}
	if res == nil {
		return nil, nil
	}

	rec := &TransactionRecord{Slot: res.Slot}
	if res.Meta != nil {
		rec.Logs = res.Meta.LogMessages
	}
	if res.Transaction != nil {
		parsed, err := res.Transaction.GetTransaction()
		if err != nil {
			return nil, fmt.Errorf("decode transaction %s: %w", sig, err)
		}
		rec.Accounts = parsed.Message.AccountKeys
	}
	return rec, nil
}

// GetTokenAccountsByOwner lists the wallet's SPL token holdings. Token
// account layout: mint at [0:32], owner at [32:64], amount at [64:72].
func (g *RPCGateway) GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]TokenAccount, error) {
	tokenProgram := solana.TokenProgramID
	res, err := g.rpc.GetTokenAccountsByOwner(
		ctx,
		owner,
		&rpc.GetTokenAccountsConfig{ProgramId: &tokenProgram},
		&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingBase64},
	)
	if err != nil {
		return nil, fmt.Errorf("get token accounts for %s: %w", owner, err)
	}

	accounts := make([]TokenAccount, 0, len(res.Value))
	for _, item := range res.Value {
		data := item.Account.Data.GetBinary()
		if len(data) < 72 {
			continue
		}
		accounts = append(accounts, TokenAccount{
			Mint:   solana.PublicKeyFromBytes(data[0:32]),
			Amount: binary.LittleEndian.Uint64(data[64:72]),
		})
	}
	return accounts, nil
}

func (g *RPCGateway) GetLookupTable(ctx context.Context, address solana.PublicKey) (solana.PublicKeySlice, error) {
	state, err := addresslookuptable.GetAddressLookupTable(ctx, g.rpc, address)
	if err != nil {
		return nil, fmt.Errorf("get lookup table %s: %w", address, err)
	}
	return state.Addresses, nil
}

// ExplorerTxURL builds a Solana explorer link for a signature.
func ExplorerTxURL(network, signature string) string {
	baseURL := "https://explorer.solana.com/tx/"
	switch network {
	case "devnet":
		return baseURL + signature + "?cluster=devnet"
	case "testnet":
		return baseURL + signature + "?cluster=testnet"
	default:
		return baseURL + signature
	}
}
