package candyguard

import (
	"github.com/gagliardetto/solana-go"
)

// CandyMachine - on-chain configuration snapshot of a candy machine
type CandyMachine struct {
	Address solana.PublicKey `bin:"-"`

	Version        uint8
	TokenStandard  uint8
	Features       [6]uint8
	Authority      solana.PublicKey
	MintAuthority  solana.PublicKey
	CollectionMint solana.PublicKey
	ItemsRedeemed  uint64
	Data           CandyMachineData
}

// ItemsRemaining - unminted supply; itemsRedeemed never exceeds itemsAvailable
func (cm *CandyMachine) ItemsRemaining() uint64 {
	if cm.ItemsRedeemed >= cm.Data.ItemsAvailable {
		return 0
	}
	return cm.Data.ItemsAvailable - cm.ItemsRedeemed
}

// CandyMachineData - static machine settings
type CandyMachineData struct {
	ItemsAvailable       uint64
	Symbol               string
	SellerFeeBasisPoints uint16
	MaxSupply            uint64
	IsMutable            bool
	Creators             []Creator
	ConfigLineSettings   *ConfigLineSettings `bin:"optional"`
	HiddenSettings       *HiddenSettings     `bin:"optional"`
}

type Creator struct {
	Address         solana.PublicKey
	Verified        bool
	PercentageShare uint8
}

type ConfigLineSettings struct {
	PrefixName   string
	NameLength   uint32
	PrefixURI    string
	URILength    uint32
	IsSequential bool
}

type HiddenSettings struct {
	Name string
	URI  string
	Hash [32]uint8
}

// CandyGuard - guard configuration owned by a candy machine. The machine's
// mintAuthority points at this account.
type CandyGuard struct {
	Address solana.PublicKey `bin:"-"`

	Base      solana.PublicKey
	Bump      uint8
	Authority solana.PublicKey
	Guards    GuardSet
	Groups    []Group
}

// Group - a named guard set
type Group struct {
	Label  string
	Guards GuardSet
}

// GuardSet - one optional configuration per guard kind. Field order matches
// the program's serialized layout; do not reorder.
type GuardSet struct {
	BotTax             *BotTax             `bin:"optional"`
	SolPayment         *SolPayment         `bin:"optional"`
	TokenPayment       *TokenPayment       `bin:"optional"`
	StartDate          *StartDate          `bin:"optional"`
	ThirdPartySigner   *ThirdPartySigner   `bin:"optional"`
	TokenGate          *TokenGate          `bin:"optional"`
	Gatekeeper         *Gatekeeper         `bin:"optional"`
	EndDate            *EndDate            `bin:"optional"`
	AllowList          *AllowList          `bin:"optional"`
	MintLimit          *MintLimit          `bin:"optional"`
	NftPayment         *NftPayment         `bin:"optional"`
	RedeemedAmount     *RedeemedAmount     `bin:"optional"`
	AddressGate        *AddressGate        `bin:"optional"`
	NftGate            *NftGate            `bin:"optional"`
	NftBurn            *NftBurn            `bin:"optional"`
	TokenBurn          *TokenBurn          `bin:"optional"`
	FreezeSolPayment   *FreezeSolPayment   `bin:"optional"`
	FreezeTokenPayment *FreezeTokenPayment `bin:"optional"`
	ProgramGate        *ProgramGate        `bin:"optional"`
	Allocation         *Allocation         `bin:"optional"`
}

type BotTax struct {
	Lamports        uint64
	LastInstruction bool
}

type SolPayment struct {
	Lamports    uint64
	Destination solana.PublicKey
}

type TokenPayment struct {
	Amount         uint64
	Mint           solana.PublicKey
	DestinationAta solana.PublicKey
}

type StartDate struct {
	Date int64
}

type ThirdPartySigner struct {
	SignerKey solana.PublicKey
}

type TokenGate struct {
	Amount uint64
	Mint   solana.PublicKey
}

type Gatekeeper struct {
	GatekeeperNetwork solana.PublicKey
	ExpireOnUse       bool
}

type EndDate struct {
	Date int64
}

type AllowList struct {
	MerkleRoot [32]uint8
}

type MintLimit struct {
	ID    uint8
	Limit uint16
}

type NftPayment struct {
	RequiredCollection solana.PublicKey
	Destination        solana.PublicKey
}

type RedeemedAmount struct {
	Maximum uint64
}

type AddressGate struct {
	Address solana.PublicKey
}

type NftGate struct {
	RequiredCollection solana.PublicKey
}

type NftBurn struct {
	RequiredCollection solana.PublicKey
}

type TokenBurn struct {
	Amount uint64
	Mint   solana.PublicKey
}

type FreezeSolPayment struct {
	Lamports    uint64
	Destination solana.PublicKey
}

type FreezeTokenPayment struct {
	Amount         uint64
	Mint           solana.PublicKey
	DestinationAta solana.PublicKey
}

type ProgramGate struct {
	Additional []solana.PublicKey
}

type Allocation struct {
	ID    uint8
	Limit uint32
}

// MintCounter - per-wallet per-guard mint count, seed-addressed
type MintCounter struct {
	Count uint16
}

// AllocationTracker - per-guard mint count, seed-addressed
type AllocationTracker struct {
	Count uint32
}

// AllowListProof - record that a wallet's merkle proof was submitted via a
// route instruction
type AllowListProof struct {
	Timestamp int64
}

// Asset - an NFT owned by the wallet, with its verified collection when the
// metadata carries one
type Asset struct {
	Mint               solana.PublicKey
	Name               string
	URI                string
	Collection         solana.PublicKey
	CollectionVerified bool
	HasCollection      bool
}

// Allowlists maps a guard-group label to the wallet addresses allowed to
// mint from it. Treated as trusted local configuration, injected by the
// caller.
type Allowlists map[string][]string
