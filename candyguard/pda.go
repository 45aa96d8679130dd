package candyguard

import (
	"github.com/gagliardetto/solana-go"
)

// FindCandyMachineAuthorityPDA derives the machine's internal mint authority.
func FindCandyMachineAuthorityPDA(candyMachine solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{SeedCandyMachine, candyMachine.Bytes()},
		CandyMachineProgramID,
	)
}

// FindMintCounterPDA derives the per-wallet mint_limit counter address.
func FindMintCounterPDA(id uint8, user, candyGuard, candyMachine solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			SeedMintLimit,
			{id},
			user.Bytes(),
			candyGuard.Bytes(),
			candyMachine.Bytes(),
		},
		CandyGuardProgramID,
	)
}

// FindAllocationTrackerPDA derives the per-guard allocation counter address.
func FindAllocationTrackerPDA(id uint8, candyGuard, candyMachine solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			SeedAllocation,
			{id},
			candyGuard.Bytes(),
			candyMachine.Bytes(),
		},
		CandyGuardProgramID,
	)
}

// FindAllowListProofPDA derives the wallet's allowlist proof record address.
func FindAllowListProofPDA(merkleRoot [32]byte, user, candyGuard, candyMachine solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			SeedAllowList,
			merkleRoot[:],
			user.Bytes(),
			candyGuard.Bytes(),
			candyMachine.Bytes(),
		},
		CandyGuardProgramID,
	)
}

// FindMetadataPDA derives the token metadata account for a mint.
func FindMetadataPDA(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			SeedMetadata,
			solana.TokenMetadataProgramID.Bytes(),
			mint.Bytes(),
		},
		solana.TokenMetadataProgramID,
	)
}

// FindMasterEditionPDA derives the master edition account for a mint.
func FindMasterEditionPDA(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			SeedMetadata,
			solana.TokenMetadataProgramID.Bytes(),
			mint.Bytes(),
			SeedEdition,
		},
		solana.TokenMetadataProgramID,
	)
}

// FindTokenRecordPDA derives the token record for a (mint, token account)
// pair; required for programmable NFTs.
func FindTokenRecordPDA(mint, token solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			SeedMetadata,
			solana.TokenMetadataProgramID.Bytes(),
			mint.Bytes(),
			SeedTokenRecord,
			token.Bytes(),
		},
		solana.TokenMetadataProgramID,
	)
}

// FindCollectionDelegateRecordPDA derives the metadata delegate record that
// lets the candy machine authority PDA verify the collection.
func FindCollectionDelegateRecordPDA(collectionMint, updateAuthority, delegate solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			SeedMetadata,
			solana.TokenMetadataProgramID.Bytes(),
			collectionMint.Bytes(),
			SeedCollectionDelegate,
			updateAuthority.Bytes(),
			delegate.Bytes(),
		},
		solana.TokenMetadataProgramID,
	)
}
