package candyguard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// guardErrors maps the commonly hit custom error codes of the candy guard
// program to readable messages.
var guardErrors = map[int]string{
	6007: "RequiredGroupLabelNotFound - a group label is required to mint",
	6008: "GroupNotFound - no guard group with this label",
	6010: "CandyMachineEmpty - the candy machine is sold out",
	6016: "MintNotLive - the mint has not started yet",
	6017: "NotEnoughSOL - not enough SOL to pay for the mint",
	6023: "AfterEndDate - the mint has ended",
	6025: "AddressNotAuthorized - this wallet is not authorized to mint",
	6026: "MissingAllowedListProof - submit the allow list proof first",
	6028: "MintLimitReached - the wallet's mint limit is reached",
	6033: "AllocationLimitReached - the group's allocation is exhausted",
}

var (
	customCodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`"Custom":\s*(\d+)`),
		regexp.MustCompile(`Custom:\s*(\d+)`),
		regexp.MustCompile(`Error Number:\s*(\d+)`),
	}
	hexCodePattern = regexp.MustCompile(`custom program error: 0x([0-9a-fA-F]+)`)
)

// ExtractErrorCode pulls the custom program error code out of an RPC error,
// whichever of the node's formats it arrived in.
func ExtractErrorCode(err error) *int {
	if err == nil {
		return nil
	}
	errStr := err.Error()

	for _, pattern := range customCodePatterns {
		if matches := pattern.FindStringSubmatch(errStr); len(matches) > 1 {
			if code, err := strconv.Atoi(matches[1]); err == nil {
				return &code
			}
		}
	}
	if matches := hexCodePattern.FindStringSubmatch(errStr); len(matches) > 1 {
		if code, err := strconv.ParseInt(matches[1], 16, 64); err == nil {
			intCode := int(code)
			return &intCode
		}
	}
	return nil
}

// ParseProgramError renders a submission error for display: known custom
// guard codes get their message, expired blockhashes and balance problems
// get a hint, everything else passes through truncated.
func ParseProgramError(err error) string {
	if err == nil {
		return ""
	}
	errStr := err.Error()

	if strings.Contains(errStr, "BlockhashNotFound") ||
		strings.Contains(errStr, "Blockhash not found") {
		return "Transaction expired. Fetch a fresh blockhash and try again."
	}

	if code := ExtractErrorCode(err); code != nil {
		if msg, ok := guardErrors[*code]; ok {
			return msg
		}
		return fmt.Sprintf("Custom program error code: %d", *code)
	}

	if strings.Contains(errStr, "insufficient funds") {
		return "Insufficient SOL balance to pay for transaction"
	}

	if len(errStr) > 300 {
		return errStr[:300] + "..."
	}
	return errStr
}
