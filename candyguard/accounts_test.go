package candyguard

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candymint/chain"
	"candymint/chain/stub"
)

// anchorAccount wraps borsh payload bytes with a discriminator the way the
// program stores them.
func anchorAccount(payload []byte) *chain.Account {
	data := make([]byte, anchorDiscLen+len(payload))
	copy(data[anchorDiscLen:], payload)
	return &chain.Account{Data: data}
}

func TestFetchCandyMachine_Absent(t *testing.T) {
	gw := stub.New()

	_, err := FetchCandyMachine(context.Background(), gw, solana.NewWallet().PublicKey())
	require.Error(t, err)
}

func TestFetchMintCounter_Absent(t *testing.T) {
	gw := stub.New()
	wallet := solana.NewWallet().PublicKey()
	candyGuard := solana.NewWallet().PublicKey()
	machine := solana.NewWallet().PublicKey()

	counter, err := FetchMintCounter(context.Background(), gw, 1, wallet, candyGuard, machine)
	require.NoError(t, err)
	assert.Nil(t, counter)
}

func TestFetchMintCounter_Present(t *testing.T) {
	gw := stub.New()
	wallet := solana.NewWallet().PublicKey()
	candyGuard := solana.NewWallet().PublicKey()
	machine := solana.NewWallet().PublicKey()

	pda, _, err := FindMintCounterPDA(1, wallet, candyGuard, machine)
	require.NoError(t, err)
	payload := make([]byte, 2)
	binary.LittleEndian.PutUint16(payload, 5)
	gw.Accounts[pda] = anchorAccount(payload)

	counter, err := FetchMintCounter(context.Background(), gw, 1, wallet, candyGuard, machine)
	require.NoError(t, err)
	require.NotNil(t, counter)
	assert.Equal(t, uint16(5), counter.Count)
}

func TestFetchAllocationTracker_Present(t *testing.T) {
	gw := stub.New()
	candyGuard := solana.NewWallet().PublicKey()
	machine := solana.NewWallet().PublicKey()

	pda, _, err := FindAllocationTrackerPDA(2, candyGuard, machine)
	require.NoError(t, err)
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, 41)
	gw.Accounts[pda] = anchorAccount(payload)

	tracker, err := FetchAllocationTracker(context.Background(), gw, 2, candyGuard, machine)
	require.NoError(t, err)
	require.NotNil(t, tracker)
	assert.Equal(t, uint32(41), tracker.Count)
}

func TestFetchPDAAccounts_TruncatedData(t *testing.T) {
	gw := stub.New()
	wallet := solana.NewWallet().PublicKey()
	candyGuard := solana.NewWallet().PublicKey()
	machine := solana.NewWallet().PublicKey()
	short := &chain.Account{Data: make([]byte, anchorDiscLen-1)}

	counterPDA, _, err := FindMintCounterPDA(1, wallet, candyGuard, machine)
	require.NoError(t, err)
	gw.Accounts[counterPDA] = short
	_, err = FetchMintCounter(context.Background(), gw, 1, wallet, candyGuard, machine)
	require.Error(t, err)

	trackerPDA, _, err := FindAllocationTrackerPDA(2, candyGuard, machine)
	require.NoError(t, err)
	gw.Accounts[trackerPDA] = short
	_, err = FetchAllocationTracker(context.Background(), gw, 2, candyGuard, machine)
	require.Error(t, err)

	var root [32]byte
	proofPDA, _, err := FindAllowListProofPDA(root, wallet, candyGuard, machine)
	require.NoError(t, err)
	gw.Accounts[proofPDA] = short
	_, err = FetchAllowListProof(context.Background(), gw, root, wallet, candyGuard, machine)
	require.Error(t, err)
}

func TestItemsRemaining(t *testing.T) {
	machine := &CandyMachine{
		ItemsRedeemed: 3,
		Data:          CandyMachineData{ItemsAvailable: 10},
	}
	assert.Equal(t, uint64(7), machine.ItemsRemaining())

	machine.ItemsRedeemed = 10
	assert.Equal(t, uint64(0), machine.ItemsRemaining())

	// Redeemed beyond available never underflows.
	machine.ItemsRedeemed = 12
	assert.Equal(t, uint64(0), machine.ItemsRemaining())
}

func TestTrimNul(t *testing.T) {
	assert.Equal(t, "Degen #1", trimNul("Degen #1\x00\x00\x00"))
	assert.Equal(t, "plain", trimNul("plain"))
}
