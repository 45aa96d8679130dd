package candyguard

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"
)

// The allow_list guard verifies membership with a keccak-256 merkle tree:
// leaves are keccak(wallet bytes), parents keccak of the pair in byte order,
// and an odd node is promoted unchanged. Root and proof built here must
// match what the on-chain verifier recomputes.

func keccak(parts ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func hashPair(a, b [32]byte) [32]byte {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return keccak(a[:], b[:])
	}
	return keccak(b[:], a[:])
}

func leaves(addresses []string) ([][32]byte, error) {
	out := make([][32]byte, 0, len(addresses))
	for _, addr := range addresses {
		raw, err := base58.Decode(addr)
		if err != nil {
			return nil, fmt.Errorf("allowlist entry %q: %w", addr, err)
		}
		out = append(out, keccak(raw))
	}
	return out, nil
}

// MerkleRoot computes the allowlist merkle root over base58 wallet
// addresses.
func MerkleRoot(addresses []string) ([32]byte, error) {
	if len(addresses) == 0 {
		return [32]byte{}, fmt.Errorf("empty allowlist")
	}
	level, err := leaves(addresses)
	if err != nil {
		return [32]byte{}, err
	}

	for len(level) > 1 {
		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, hashPair(level[i], level[i+1]))
			} else {
				next = append(next, level[i])
			}
		}
		level = next
	}
	return level[0], nil
}

// MerkleProof computes the sibling path proving that wallet belongs to the
// allowlist.
func MerkleProof(addresses []string, wallet string) ([][32]byte, error) {
	level, err := leaves(addresses)
	if err != nil {
		return nil, err
	}

	raw, err := base58.Decode(wallet)
	if err != nil {
		return nil, fmt.Errorf("wallet %q: %w", wallet, err)
	}
	target := keccak(raw)

	index := -1
	for i, leaf := range level {
		if leaf == target {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, fmt.Errorf("wallet %s not in allowlist", wallet)
	}

	var proof [][32]byte
	for len(level) > 1 {
		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				if i == index || i+1 == index {
					if i == index {
						proof = append(proof, level[i+1])
					} else {
						proof = append(proof, level[i])
					}
				}
				next = append(next, hashPair(level[i], level[i+1]))
			} else {
				next = append(next, level[i])
			}
		}
		index /= 2
		level = next
	}
	return proof, nil
}
