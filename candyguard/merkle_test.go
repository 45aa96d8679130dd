package candyguard

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddresses(t *testing.T, n int) []string {
	t.Helper()
	out := make([]string, n)
	for i := range out {
		out[i] = solana.NewWallet().PublicKey().String()
	}
	return out
}

// foldProof recomputes the root from a leaf and its sibling path the way
// the on-chain verifier does.
func foldProof(leaf [32]byte, proof [][32]byte) [32]byte {
	node := leaf
	for _, sibling := range proof {
		node = hashPair(node, sibling)
	}
	return node
}

func TestMerkleRoot_EmptyList(t *testing.T) {
	_, err := MerkleRoot(nil)
	require.Error(t, err)
}

func TestMerkleRoot_SingleLeaf(t *testing.T) {
	addrs := testAddresses(t, 1)

	root, err := MerkleRoot(addrs)
	require.NoError(t, err)

	lvs, err := leaves(addrs)
	require.NoError(t, err)
	assert.Equal(t, lvs[0], root)
}

func TestMerkleRoot_PairOrderIrrelevant(t *testing.T) {
	addrs := testAddresses(t, 2)

	root1, err := MerkleRoot(addrs)
	require.NoError(t, err)
	root2, err := MerkleRoot([]string{addrs[1], addrs[0]})
	require.NoError(t, err)

	assert.Equal(t, root1, root2)
}

func TestMerkleRoot_InvalidAddress(t *testing.T) {
	_, err := MerkleRoot([]string{"not base58 0OIl"})
	require.Error(t, err)
}

func TestMerkleProof_AllMembersVerify(t *testing.T) {
	// Odd list size exercises the promoted-node case.
	addrs := testAddresses(t, 5)
	root, err := MerkleRoot(addrs)
	require.NoError(t, err)

	lvs, err := leaves(addrs)
	require.NoError(t, err)

	for i, addr := range addrs {
		proof, err := MerkleProof(addrs, addr)
		require.NoError(t, err, "proof for %s", addr)
		assert.Equal(t, root, foldProof(lvs[i], proof), "proof for %s does not fold to root", addr)
	}
}

func TestMerkleProof_NonMember(t *testing.T) {
	addrs := testAddresses(t, 3)
	outsider := solana.NewWallet().PublicKey().String()

	_, err := MerkleProof(addrs, outsider)
	require.Error(t, err)
}
