package chain_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candymint/chain"
	"candymint/chain/stub"
)

func TestClock_RefreshReadsBlockTime(t *testing.T) {
	gw := stub.New()
	gw.Slot = 250_000_000
	gw.BlockTime = 1_756_500_000

	clock := chain.NewClock(gw)
	assert.Zero(t, clock.Now())

	require.NoError(t, clock.Refresh(context.Background()))
	assert.Equal(t, int64(1_756_500_000), clock.Now())
	assert.Equal(t, 1, gw.CallCount("GetSlot"))
	assert.Equal(t, 1, gw.CallCount("GetBlockTime"))
}

func TestPriceFeed_Refresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"solana":{"usd":142.37}}`))
	}))
	defer srv.Close()

	feed := chain.NewPriceFeed(srv.URL)
	assert.Zero(t, feed.Price())

	require.NoError(t, feed.Refresh(context.Background()))
	assert.Equal(t, 142.37, feed.Price())
}

func TestPriceFeed_BadStatusKeepsValue(t *testing.T) {
	ok := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !ok {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"solana":{"usd":100.5}}`))
	}))
	defer srv.Close()

	feed := chain.NewPriceFeed(srv.URL)
	require.NoError(t, feed.Refresh(context.Background()))
	require.Equal(t, 100.5, feed.Price())

	ok = false
	require.Error(t, feed.Refresh(context.Background()))
	assert.Equal(t, 100.5, feed.Price())
}

func TestExplorerTxURL(t *testing.T) {
	assert.Equal(t,
		"https://explorer.solana.com/tx/abc",
		chain.ExplorerTxURL("mainnet", "abc"))
	assert.Equal(t,
		"https://explorer.solana.com/tx/abc?cluster=devnet",
		chain.ExplorerTxURL("devnet", "abc"))
	assert.Equal(t,
		"https://explorer.solana.com/tx/abc?cluster=testnet",
		chain.ExplorerTxURL("testnet", "abc"))
}
