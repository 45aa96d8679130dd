package mintflow

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"

	"candymint/candyguard"
	"candymint/chain"
)

// Confirmation polling bounds, matching the bounded retry window of the
// mint flow: absence after the budget is exhausted is a final verdict.
const (
	DefaultConfirmRetries = 30
	DefaultConfirmDelay   = 3 * time.Second
)

// FailReason is a closed enumeration of per-transaction failure causes.
type FailReason uint8

const (
	FailNone FailReason = iota
	FailSigning
	FailSubmission
	FailNotFound
	FailBotTax
)

func (r FailReason) String() string {
	switch r {
	case FailNone:
		return ""
	case FailSigning:
		return "signing failed"
	case FailSubmission:
		return "submission rejected"
	case FailNotFound:
		return "no transaction found"
	case FailBotTax:
		return "bot tax detected"
	default:
		return "failed"
	}
}

// VerifyOutcome is the finality verdict for one submitted signature.
type VerifyOutcome struct {
	Signature solana.Signature
	Success   bool
	Mint      solana.PublicKey
	Reason    FailReason
}

// VerifySignatures polls each signature to finality concurrently. One
// signature's failure never affects its siblings; the slice preserves
// input order.
func VerifySignatures(ctx context.Context, gw chain.Gateway, sigs []solana.Signature, retries int, delay time.Duration) []VerifyOutcome {
	if retries <= 0 {
		retries = DefaultConfirmRetries
	}
	if delay <= 0 {
		delay = DefaultConfirmDelay
	}

	outcomes := make([]VerifyOutcome, len(sigs))
	var wg sync.WaitGroup
	for i, sig := range sigs {
		wg.Add(1)
		go func(i int, sig solana.Signature) {
			defer wg.Done()
			outcomes[i] = verifySignature(ctx, gw, sig, retries, delay)
		}(i, sig)
	}
	wg.Wait()
	return outcomes
}

// verifySignature polls for the transaction record within the retry
// budget, then inspects the program logs for the bot-tax marker. The
// minted asset sits at index 1 of the message's account list; that
// position is a layout contract of the mint instruction.
func verifySignature(ctx context.Context, gw chain.Gateway, sig solana.Signature, retries int, delay time.Duration) VerifyOutcome {
	outcome := VerifyOutcome{Signature: sig}

	var record *chain.TransactionRecord
	for attempt := 0; attempt < retries; attempt++ {
		rec, err := gw.GetTransaction(ctx, sig)
		if err != nil {
			log.Printf("[verify] %s: fetch failed: %v", sig, err)
		} else if rec != nil {
			record = rec
			break
		}
		select {
		case <-ctx.Done():
			outcome.Reason = FailNotFound
			return outcome
		case <-time.After(delay):
		}
	}
	if record == nil {
		outcome.Reason = FailNotFound
		return outcome
	}

	for _, line := range record.Logs {
		if strings.Contains(line, candyguard.BotTaxLogMarker) {
			outcome.Reason = FailBotTax
			return outcome
		}
	}

	if len(record.Accounts) < 2 {
		log.Printf("[verify] %s: unexpected account list length %d", sig, len(record.Accounts))
		outcome.Reason = FailNotFound
		return outcome
	}

	outcome.Success = true
	outcome.Mint = record.Accounts[1]
	return outcome
}
