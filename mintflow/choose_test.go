package mintflow

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candymint/candyguard"
	"candymint/chain"
	"candymint/chain/stub"
)

func machineFixture() *candyguard.CandyMachine {
	return &candyguard.CandyMachine{
		Address:        solana.NewWallet().PublicKey(),
		Version:        candyguard.AccountVersionV2,
		Authority:      solana.NewWallet().PublicKey(),
		MintAuthority:  solana.NewWallet().PublicKey(),
		CollectionMint: solana.NewWallet().PublicKey(),
		Data:           candyguard.CandyMachineData{ItemsAvailable: 100},
	}
}

func guardFixture(machine *candyguard.CandyMachine, defaultSet candyguard.GuardSet, groups ...candyguard.Group) *candyguard.CandyGuard {
	return &candyguard.CandyGuard{
		Address: machine.MintAuthority,
		Guards:  defaultSet,
		Groups:  groups,
	}
}

func TestChooseGuard_NilGuard(t *testing.T) {
	_, _, err := ChooseGuard("og", nil)
	require.ErrorIs(t, err, ErrNoGuard)
}

func TestChooseGuard_MatchingGroup(t *testing.T) {
	dest := solana.NewWallet().PublicKey()
	guard := &candyguard.CandyGuard{
		Groups: []candyguard.Group{
			{Label: "og", Guards: candyguard.GuardSet{
				SolPayment: &candyguard.SolPayment{Lamports: 1, Destination: dest},
			}},
		},
	}

	label, set, err := ChooseGuard("og", guard)
	require.NoError(t, err)
	assert.Equal(t, "og", label)
	require.NotNil(t, set.SolPayment)
	assert.Equal(t, dest, set.SolPayment.Destination)
}

func TestChooseGuard_FallsBackToDefault(t *testing.T) {
	guard := &candyguard.CandyGuard{
		Guards: candyguard.GuardSet{StartDate: &candyguard.StartDate{Date: 7}},
		Groups: []candyguard.Group{{Label: "og"}},
	}

	label, set, err := ChooseGuard("unknown", guard)
	require.NoError(t, err)
	assert.Equal(t, candyguard.DefaultGroupLabel, label)
	require.NotNil(t, set.StartDate)
	assert.Equal(t, int64(7), set.StartDate.Date)
}

func TestBuildMintArgs_GuardInputs(t *testing.T) {
	wallet := solana.NewWallet().PublicKey()
	dest := solana.NewWallet().PublicKey()
	set := &candyguard.GuardSet{
		SolPayment: &candyguard.SolPayment{Lamports: 1, Destination: dest},
		MintLimit:  &candyguard.MintLimit{ID: 4, Limit: 2},
		Allocation: &candyguard.Allocation{ID: 9, Limit: 50},
		AllowList:  &candyguard.AllowList{},
	}
	lists := candyguard.Allowlists{"og": {wallet.String()}}

	args, err := BuildMintArgs(set, "og", lists)
	require.NoError(t, err)

	require.NotNil(t, args.SolPayment)
	assert.Equal(t, dest, args.SolPayment.Destination)
	require.NotNil(t, args.MintLimit)
	assert.Equal(t, uint8(4), args.MintLimit.ID)
	require.NotNil(t, args.Allocation)
	assert.Equal(t, uint8(9), args.Allocation.ID)

	root, err := candyguard.MerkleRoot(lists["og"])
	require.NoError(t, err)
	require.NotNil(t, args.AllowList)
	assert.Equal(t, root, args.AllowList.MerkleRoot)
}

func TestBuildMintArgs_AllowlistMissing(t *testing.T) {
	set := &candyguard.GuardSet{AllowList: &candyguard.AllowList{}}

	_, err := BuildMintArgs(set, "og", candyguard.Allowlists{})
	require.ErrorIs(t, err, ErrAllowlistMissing)
}

func TestBuildRoute_NotNeeded(t *testing.T) {
	machine := machineFixture()

	route, err := BuildRoute(context.Background(), stub.New(), machine, machine.MintAuthority,
		&candyguard.GuardSet{}, "og", solana.NewWallet().PublicKey(), nil)
	require.NoError(t, err)
	assert.Nil(t, route)
}

func TestBuildRoute_ProofAlreadyOnChain(t *testing.T) {
	gw := stub.New()
	machine := machineFixture()
	payer := solana.NewWallet().PublicKey()
	lists := candyguard.Allowlists{"og": {payer.String()}}

	root, err := candyguard.MerkleRoot(lists["og"])
	require.NoError(t, err)
	pda, _, err := candyguard.FindAllowListProofPDA(root, payer, machine.MintAuthority, machine.Address)
	require.NoError(t, err)
	gw.Accounts[pda] = &chain.Account{Data: make([]byte, 16)}

	route, err := BuildRoute(context.Background(), gw, machine, machine.MintAuthority,
		&candyguard.GuardSet{AllowList: &candyguard.AllowList{}}, "og", payer, lists)
	require.NoError(t, err)
	require.NotNil(t, route)
	assert.Nil(t, route.Instruction)
}

func TestBuildRoute_BuildsInstruction(t *testing.T) {
	gw := stub.New()
	machine := machineFixture()
	payer := solana.NewWallet().PublicKey()
	lists := candyguard.Allowlists{"og": {payer.String(), solana.NewWallet().PublicKey().String()}}

	route, err := BuildRoute(context.Background(), gw, machine, machine.MintAuthority,
		&candyguard.GuardSet{AllowList: &candyguard.AllowList{}}, "og", payer, lists)
	require.NoError(t, err)
	require.NotNil(t, route)
	require.NotNil(t, route.Instruction)
	assert.Equal(t, candyguard.CandyGuardProgramID, route.Instruction.ProgramID())
}

func TestBuildRoute_AllowlistMissing(t *testing.T) {
	machine := machineFixture()

	_, err := BuildRoute(context.Background(), stub.New(), machine, machine.MintAuthority,
		&candyguard.GuardSet{AllowList: &candyguard.AllowList{}}, "og",
		solana.NewWallet().PublicKey(), candyguard.Allowlists{})
	require.ErrorIs(t, err, ErrAllowlistMissing)
}
