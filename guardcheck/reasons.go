package guardcheck

// Reason is a closed enumeration of denial causes. Display text is attached
// here so callers and tests assert on the kind, never on the string.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonNoWallet
	ReasonWalletNotFound
	ReasonWrongAddress
	ReasonAllocationReached
	ReasonNotAllowed
	ReasonMintTimeOver
	ReasonNotEnoughSOL
	ReasonMintLimitReached
	ReasonStartNotReached
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonNoWallet:
		return "Please connect your wallet to mint"
	case ReasonWalletNotFound:
		return "Wallet does not exist. Do you have SOL?"
	case ReasonWrongAddress:
		return "AddressGate: Wrong Address"
	case ReasonAllocationReached:
		return "Allocation of this guard reached"
	case ReasonNotAllowed:
		return "Wallet not allowed"
	case ReasonMintTimeOver:
		return "Mint time is over!"
	case ReasonNotEnoughSOL:
		return "Not enough SOL!"
	case ReasonMintLimitReached:
		return "Mint limit of this wallet reached"
	case ReasonStartNotReached:
		return "StartDate not reached!"
	default:
		return "Not eligible"
	}
}
