package candyguard

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// MintArgs carries the per-guard payloads the mint_v2 instruction needs.
// Only guards whose on-chain check requires caller-supplied input appear;
// everything else the program derives itself.
type MintArgs struct {
	SolPayment       *DestinationArg
	TokenPayment     *TokenPaymentArg
	ThirdPartySigner *SignerArg
	AllowList        *AllowListArg
	MintLimit        *MintLimitArg
	FreezeSolPayment *DestinationArg
	Allocation       *AllocationArg
}

type DestinationArg struct {
	Destination solana.PublicKey
}

type TokenPaymentArg struct {
	Mint           solana.PublicKey
	DestinationAta solana.PublicKey
}

type SignerArg struct {
	Signer solana.PublicKey
}

type AllowListArg struct {
	MerkleRoot [32]byte
}

type MintLimitArg struct {
	ID uint8
}

type AllocationArg struct {
	ID uint8
}

// encodeMintArgs serializes the guard args: one presence byte per guard
// kind in guard-set order, followed by the guard's payload when present.
func encodeMintArgs(args MintArgs) []byte {
	data := make([]byte, 0, 64)

	appendOption := func(present bool, payload []byte) {
		if !present {
			data = append(data, 0)
			return
		}
		data = append(data, 1)
		data = append(data, payload...)
	}

	appendOption(false, nil) // botTax
	appendOption(args.SolPayment != nil, nil)
	appendOption(args.TokenPayment != nil, nil)
	appendOption(false, nil) // startDate
	appendOption(args.ThirdPartySigner != nil, nil)
	appendOption(false, nil) // tokenGate
	appendOption(false, nil) // gatekeeper
	appendOption(false, nil) // endDate
	if args.AllowList != nil {
		appendOption(true, args.AllowList.MerkleRoot[:])
	} else {
		appendOption(false, nil)
	}
	if args.MintLimit != nil {
		appendOption(true, []byte{args.MintLimit.ID})
	} else {
		appendOption(false, nil)
	}
	appendOption(false, nil) // nftPayment
	appendOption(false, nil) // redeemedAmount
	appendOption(false, nil) // addressGate
	appendOption(false, nil) // nftGate
	appendOption(false, nil) // nftBurn
	appendOption(false, nil) // tokenBurn
	appendOption(args.FreezeSolPayment != nil, nil)
	appendOption(false, nil) // freezeTokenPayment
	appendOption(false, nil) // programGate
	if args.Allocation != nil {
		appendOption(true, []byte{args.Allocation.ID})
	} else {
		appendOption(false, nil)
	}

	return data
}

// appendLabelOption serializes the group label; the synthetic "default"
// group maps to the absent option.
func appendLabelOption(data []byte, label string) []byte {
	if label == "" || label == DefaultGroupLabel {
		return append(data, 0)
	}
	data = append(data, 1)
	lenBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBytes, uint32(len(label)))
	data = append(data, lenBytes...)
	return append(data, []byte(label)...)
}

// DefaultGroupLabel names the synthetic group wrapping the guard-set-level
// guards.
const DefaultGroupLabel = "default"

// BuildMintInstruction builds one mint_v2 instruction for a freshly
// generated NFT mint. The payer also acts as minter and NFT mint authority.
func BuildMintInstruction(
	machine *CandyMachine,
	candyGuard solana.PublicKey,
	label string,
	payer solana.PublicKey,
	nftMint solana.PublicKey,
	args MintArgs,
) (solana.Instruction, error) {
	authorityPDA, _, err := FindCandyMachineAuthorityPDA(machine.Address)
	if err != nil {
		return nil, fmt.Errorf("derive authority PDA: %w", err)
	}
	nftMetadata, _, _ := FindMetadataPDA(nftMint)
	nftMasterEdition, _, _ := FindMasterEditionPDA(nftMint)
	token, _, err := solana.FindAssociatedTokenAddress(payer, nftMint)
	if err != nil {
		return nil, fmt.Errorf("derive token account: %w", err)
	}
	tokenRecord, _, _ := FindTokenRecordPDA(nftMint, token)
	collectionMetadata, _, _ := FindMetadataPDA(machine.CollectionMint)
	collectionMasterEdition, _, _ := FindMasterEditionPDA(machine.CollectionMint)
	collectionDelegateRecord, _, _ := FindCollectionDelegateRecordPDA(
		machine.CollectionMint, machine.Authority, authorityPDA)

	accounts := solana.AccountMetaSlice{
		solana.Meta(candyGuard),
		solana.Meta(CandyMachineProgramID),
		solana.Meta(machine.Address).WRITE(),
		solana.Meta(authorityPDA).WRITE(),
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(payer).WRITE().SIGNER(), // minter
		solana.Meta(nftMint).WRITE().SIGNER(),
		solana.Meta(payer).SIGNER(), // nft mint authority
		solana.Meta(nftMetadata).WRITE(),
		solana.Meta(nftMasterEdition).WRITE(),
		solana.Meta(token).WRITE(),
		solana.Meta(tokenRecord).WRITE(),
		solana.Meta(collectionDelegateRecord),
		solana.Meta(machine.CollectionMint),
		solana.Meta(collectionMetadata).WRITE(),
		solana.Meta(collectionMasterEdition),
		solana.Meta(machine.Authority), // collection update authority
		solana.Meta(solana.TokenMetadataProgramID),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SPLAssociatedTokenAccountProgramID),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarInstructionsPubkey),
		solana.Meta(solana.SysVarSlotHashesPubkey),
	}

	remaining, err := guardAccounts(machine, candyGuard, payer, args)
	if err != nil {
		return nil, err
	}
	accounts = append(accounts, remaining...)

	argBytes := encodeMintArgs(args)
	data := make([]byte, 0, anchorDiscLen+4+len(argBytes)+16)
	data = append(data, MintV2Disc[:]...)
	lenBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBytes, uint32(len(argBytes)))
	data = append(data, lenBytes...)
	data = append(data, argBytes...)
	data = appendLabelOption(data, label)

	return solana.NewInstruction(CandyGuardProgramID, accounts, data), nil
}

// guardAccounts derives the remaining accounts the configured guards
// require, in guard-set order.
func guardAccounts(machine *CandyMachine, candyGuard, payer solana.PublicKey, args MintArgs) (solana.AccountMetaSlice, error) {
	var remaining solana.AccountMetaSlice

	if args.SolPayment != nil {
		remaining = append(remaining, solana.Meta(args.SolPayment.Destination).WRITE())
	}
	if args.TokenPayment != nil {
		payerAta, _, err := solana.FindAssociatedTokenAddress(payer, args.TokenPayment.Mint)
		if err != nil {
			return nil, fmt.Errorf("derive payment token account: %w", err)
		}
		remaining = append(remaining,
			solana.Meta(payerAta).WRITE(),
			solana.Meta(args.TokenPayment.DestinationAta).WRITE(),
			solana.Meta(solana.TokenProgramID),
		)
	}
	if args.ThirdPartySigner != nil {
		remaining = append(remaining, solana.Meta(args.ThirdPartySigner.Signer).SIGNER())
	}
	if args.AllowList != nil {
		proofPDA, _, err := FindAllowListProofPDA(args.AllowList.MerkleRoot, payer, candyGuard, machine.Address)
		if err != nil {
			return nil, fmt.Errorf("derive allow list proof PDA: %w", err)
		}
		remaining = append(remaining, solana.Meta(proofPDA))
	}
	if args.MintLimit != nil {
		counterPDA, _, err := FindMintCounterPDA(args.MintLimit.ID, payer, candyGuard, machine.Address)
		if err != nil {
			return nil, fmt.Errorf("derive mint counter PDA: %w", err)
		}
		remaining = append(remaining, solana.Meta(counterPDA).WRITE())
	}
	if args.FreezeSolPayment != nil {
		remaining = append(remaining, solana.Meta(args.FreezeSolPayment.Destination).WRITE())
	}
	if args.Allocation != nil {
		trackerPDA, _, err := FindAllocationTrackerPDA(args.Allocation.ID, candyGuard, machine.Address)
		if err != nil {
			return nil, fmt.Errorf("derive allocation tracker PDA: %w", err)
		}
		remaining = append(remaining, solana.Meta(trackerPDA).WRITE())
	}

	return remaining, nil
}

// BuildRouteInstruction builds the allow_list route instruction submitting
// the wallet's merkle proof ahead of minting.
func BuildRouteInstruction(
	machine *CandyMachine,
	candyGuard solana.PublicKey,
	label string,
	payer solana.PublicKey,
	merkleRoot [32]byte,
	proof [][32]byte,
) (solana.Instruction, error) {
	proofPDA, _, err := FindAllowListProofPDA(merkleRoot, payer, candyGuard, machine.Address)
	if err != nil {
		return nil, fmt.Errorf("derive allow list proof PDA: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(candyGuard),
		solana.Meta(machine.Address),
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(proofPDA).WRITE(),
		solana.Meta(solana.SystemProgramID),
	}

	// RouteArgs: guard selector + vec of proof nodes
	routeData := make([]byte, 0, 5+len(proof)*32)
	routeData = append(routeData, guardIndexAllowList)
	countBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(countBytes, uint32(len(proof)))
	routeData = append(routeData, countBytes...)
	for _, node := range proof {
		routeData = append(routeData, node[:]...)
	}

	data := make([]byte, 0, anchorDiscLen+len(routeData)+16)
	data = append(data, RouteDisc[:]...)
	data = append(data, routeData...)
	data = appendLabelOption(data, label)

	return solana.NewInstruction(CandyGuardProgramID, accounts, data), nil
}
