package mintflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candymint/candyguard"
	"candymint/chain"
	"candymint/chain/stub"
)

func fastOptions() MinterOptions {
	return MinterOptions{ConfirmRetries: 2, ConfirmDelay: time.Millisecond}
}

// recordSends makes submitted transactions visible to verification: each
// accepted transaction gets a sequential signature and a matching record.
func recordSends(gw *stub.Gateway, failAt map[int]bool, logsAt map[int][]string) {
	var mu sync.Mutex
	gw.SendFunc = func(n int, tx *solana.Transaction) (solana.Signature, error) {
		if failAt[n] {
			return solana.Signature{}, errors.New("node rejected transaction")
		}
		var sig solana.Signature
		sig[0] = byte(n + 1)
		mu.Lock()
		gw.Transactions[sig] = &chain.TransactionRecord{
			Logs:     logsAt[n],
			Accounts: tx.Message.AccountKeys,
		}
		mu.Unlock()
		return sig, nil
	}
}

func TestMint_InvalidQuantity(t *testing.T) {
	minter := NewMinter(stub.New(), nil, fastOptions())

	machine := machineFixture()
	guard := guardFixture(machine, candyguard.GuardSet{})
	_, err := minter.Mint(context.Background(), machine, guard, MintRequest{
		Quantity: 0,
		Payer:    solana.NewWallet().PrivateKey,
	})
	require.Error(t, err)
}

func TestMint_AllSucceed(t *testing.T) {
	gw := stub.New()
	recordSends(gw, nil, nil)
	machine := machineFixture()
	guard := guardFixture(machine, candyguard.GuardSet{})
	minter := NewMinter(gw, nil, fastOptions())

	result, err := minter.Mint(context.Background(), machine, guard, MintRequest{
		Quantity: 3,
		Payer:    solana.NewWallet().PrivateKey,
	})
	require.NoError(t, err)
	require.Len(t, result.Minted, 3)
	assert.Empty(t, result.Failed)
	assert.Len(t, result.Signatures, 3)
	assert.Len(t, gw.Sent, 3)

	seen := make(map[solana.PublicKey]bool)
	for _, nft := range result.Minted {
		assert.False(t, nft.Mint.IsZero())
		assert.False(t, seen[nft.Mint], "mint addresses must be distinct")
		seen[nft.Mint] = true
	}
}

func TestMint_SubmissionsSkipPreflight(t *testing.T) {
	gw := stub.New()
	recordSends(gw, nil, nil)
	payer := solana.NewWallet()
	machine := machineFixture()
	guard := guardFixture(machine, candyguard.GuardSet{
		AllowList: &candyguard.AllowList{},
	})
	lists := candyguard.Allowlists{
		candyguard.DefaultGroupLabel: {payer.PublicKey().String(), solana.NewWallet().PublicKey().String()},
	}
	minter := NewMinter(gw, lists, fastOptions())

	_, err := minter.Mint(context.Background(), machine, guard, MintRequest{
		Quantity: 2,
		Payer:    payer.PrivateKey,
	})
	require.NoError(t, err)

	// Route and mints alike must land on chain rather than be filtered by
	// node-side simulation; guard failures surface as bot tax, not as
	// submission rejections.
	require.Len(t, gw.SentOpts, 3)
	for i, opts := range gw.SentOpts {
		assert.True(t, opts.SkipPreflight, "submission %d ran preflight", i)
	}
}

func TestMint_UnsignableTransactionsTracked(t *testing.T) {
	gw := stub.New()
	recordSends(gw, nil, nil)
	machine := machineFixture()
	// A third-party co-signer whose key the client does not hold makes every
	// transaction unsignable.
	guard := guardFixture(machine, candyguard.GuardSet{
		ThirdPartySigner: &candyguard.ThirdPartySigner{SignerKey: solana.NewWallet().PublicKey()},
	})
	minter := NewMinter(gw, nil, fastOptions())

	result, err := minter.Mint(context.Background(), machine, guard, MintRequest{
		Quantity: 2,
		Payer:    solana.NewWallet().PrivateKey,
	})
	require.ErrorIs(t, err, ErrNoTransactionsSent)
	require.NotNil(t, result)
	assert.Empty(t, result.Minted)
	require.Len(t, result.Failed, 2)
	for _, outcome := range result.Failed {
		assert.Equal(t, FailSigning, outcome.Reason)
	}
	assert.Empty(t, gw.Sent)
}

func TestMint_PartialSubmissionFailure(t *testing.T) {
	gw := stub.New()
	recordSends(gw, map[int]bool{1: true}, nil)
	machine := machineFixture()
	guard := guardFixture(machine, candyguard.GuardSet{})
	minter := NewMinter(gw, nil, fastOptions())

	result, err := minter.Mint(context.Background(), machine, guard, MintRequest{
		Quantity: 3,
		Payer:    solana.NewWallet().PrivateKey,
	})
	require.NoError(t, err)
	assert.Len(t, result.Minted, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, FailSubmission, result.Failed[0].Reason)
}

func TestMint_TotalSubmissionFailure(t *testing.T) {
	gw := stub.New()
	gw.SendFunc = func(int, *solana.Transaction) (solana.Signature, error) {
		return solana.Signature{}, errors.New("node rejected transaction")
	}
	machine := machineFixture()
	guard := guardFixture(machine, candyguard.GuardSet{})
	minter := NewMinter(gw, nil, fastOptions())

	result, err := minter.Mint(context.Background(), machine, guard, MintRequest{
		Quantity: 2,
		Payer:    solana.NewWallet().PrivateKey,
	})
	require.ErrorIs(t, err, ErrNoTransactionsSent)
	require.NotNil(t, result)
	require.Len(t, result.Failed, 2)
	for _, outcome := range result.Failed {
		assert.Equal(t, FailSubmission, outcome.Reason)
	}
}

func TestMint_BotTaxedTransactionNotMinted(t *testing.T) {
	gw := stub.New()
	recordSends(gw, nil, map[int][]string{
		1: {"Program log: Candy Guard Botting is taxed"},
	})
	machine := machineFixture()
	guard := guardFixture(machine, candyguard.GuardSet{})
	minter := NewMinter(gw, nil, fastOptions())

	result, err := minter.Mint(context.Background(), machine, guard, MintRequest{
		Quantity: 2,
		Payer:    solana.NewWallet().PrivateKey,
	})
	require.NoError(t, err)
	assert.Len(t, result.Minted, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, FailBotTax, result.Failed[0].Reason)
}

func TestMint_RouteSubmittedBeforeMints(t *testing.T) {
	gw := stub.New()
	recordSends(gw, nil, nil)
	payer := solana.NewWallet()
	machine := machineFixture()
	guard := guardFixture(machine, candyguard.GuardSet{
		AllowList: &candyguard.AllowList{},
	})
	lists := candyguard.Allowlists{
		candyguard.DefaultGroupLabel: {payer.PublicKey().String(), solana.NewWallet().PublicKey().String()},
	}
	minter := NewMinter(gw, lists, fastOptions())

	result, err := minter.Mint(context.Background(), machine, guard, MintRequest{
		Quantity: 1,
		Payer:    payer.PrivateKey,
	})
	require.NoError(t, err)
	assert.Len(t, result.Minted, 1)

	// Route first, then the mint transaction.
	require.Len(t, gw.Sent, 2)
	assert.Len(t, gw.Sent[0].Message.Instructions, 1)
	assert.Greater(t, len(gw.Sent[1].Message.Instructions), 1)
}

func TestMint_RouteSkippedWhenProofExists(t *testing.T) {
	gw := stub.New()
	recordSends(gw, nil, nil)
	payer := solana.NewWallet()
	machine := machineFixture()
	guard := guardFixture(machine, candyguard.GuardSet{
		AllowList: &candyguard.AllowList{},
	})
	lists := candyguard.Allowlists{
		candyguard.DefaultGroupLabel: {payer.PublicKey().String()},
	}

	root, err := candyguard.MerkleRoot(lists[candyguard.DefaultGroupLabel])
	require.NoError(t, err)
	pda, _, err := candyguard.FindAllowListProofPDA(root, payer.PublicKey(), machine.MintAuthority, machine.Address)
	require.NoError(t, err)
	gw.Accounts[pda] = &chain.Account{Data: make([]byte, 16)}

	minter := NewMinter(gw, lists, fastOptions())
	result, err := minter.Mint(context.Background(), machine, guard, MintRequest{
		Quantity: 1,
		Payer:    payer.PrivateKey,
	})
	require.NoError(t, err)
	assert.Len(t, result.Minted, 1)
	assert.Len(t, gw.Sent, 1)
}

func TestMint_DevFeeAddsTransfer(t *testing.T) {
	gw := stub.New()
	recordSends(gw, nil, nil)
	machine := machineFixture()
	guard := guardFixture(machine, candyguard.GuardSet{})

	opts := fastOptions()
	opts.DevFee = true
	minter := NewMinter(gw, nil, opts)

	_, err := minter.Mint(context.Background(), machine, guard, MintRequest{
		Quantity: 1,
		Payer:    solana.NewWallet().PrivateKey,
	})
	require.NoError(t, err)
	require.Len(t, gw.Sent, 1)
	// Compute budget, fee transfer, mint.
	assert.Len(t, gw.Sent[0].Message.Instructions, 3)
}

func TestMint_WithoutDevFee(t *testing.T) {
	gw := stub.New()
	recordSends(gw, nil, nil)
	machine := machineFixture()
	guard := guardFixture(machine, candyguard.GuardSet{})
	minter := NewMinter(gw, nil, fastOptions())

	_, err := minter.Mint(context.Background(), machine, guard, MintRequest{
		Quantity: 1,
		Payer:    solana.NewWallet().PrivateKey,
	})
	require.NoError(t, err)
	require.Len(t, gw.Sent, 1)
	// Compute budget, mint.
	assert.Len(t, gw.Sent[0].Message.Instructions, 2)
}
