package candyguard

import (
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

// Program IDs
var (
	// Candy Machine Core v3 program
	CandyMachineProgramID = solana.MustPublicKeyFromBase58("CndyV3LdqHUfDLmE5naZjVN8rBZz4tqhdefbAnjHG3JR")

	// Candy Guard program (candy machine mint authority)
	CandyGuardProgramID = solana.MustPublicKeyFromBase58("Guard1JwRhJkVH6XZhzoYxeBVQe872VH6QggF4BWmS9g")
)

// PDA Seeds
var (
	SeedCandyMachine       = []byte("candy_machine")
	SeedMintLimit          = []byte("mint_limit")
	SeedAllocation         = []byte("allocation")
	SeedAllowList          = []byte("allow_list")
	SeedMetadata           = []byte("metadata")
	SeedEdition            = []byte("edition")
	SeedTokenRecord        = []byte("token_record")
	SeedCollectionDelegate = []byte("collection_delegate")
)

// getDiscriminator derives the 8-byte Anchor instruction discriminator.
func getDiscriminator(name string) [8]byte {
	hash := sha256.Sum256([]byte(name))
	var disc [8]byte
	copy(disc[:], hash[:8])
	return disc
}

var (
	MintV2Disc = getDiscriminator("global:mint_v2")
	RouteDisc  = getDiscriminator("global:route")
)

// Account versions of the candy machine program. Only V2 machines carry the
// token-standard field this client relies on.
const (
	AccountVersionV1 uint8 = 0
	AccountVersionV2 uint8 = 1
)

// BotTaxLogMarker appears in program logs when the candy guard charged the
// bot tax instead of minting. The transaction still lands on chain.
const BotTaxLogMarker = "Candy Guard Botting"

// guardIndexAllowList is the allow_list variant index of the program's
// GuardType enum, passed as the route instruction's guard selector.
const guardIndexAllowList uint8 = 8
