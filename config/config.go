package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"candymint/candyguard"
)

// Config holds the runtime settings of the mint client, read from the
// environment (with .env support in the commands).
type Config struct {
	// Cluster
	Network string
	RPCURL  string

	// Target candy machine
	CandyMachine string

	// Wallet
	KeypairBase58 string

	// Mint flow
	LookupTable   string
	DevFee        bool
	MaxMintAmount uint64 // 0 leaves the per-wallet cap to the guards alone

	// Guard config
	AllowlistPath string
}

func Load() *Config {
	cfg := &Config{
		Network: getEnv("NETWORK", "mainnet"),

		CandyMachine:  getEnv("CANDY_MACHINE", ""),
		KeypairBase58: getEnv("KEYPAIR", ""),

		LookupTable:   getEnv("LOOKUP_TABLE", ""),
		DevFee:        getEnvBool("DEV_FEE", false),
		MaxMintAmount: getEnvUint("MAX_MINT_AMOUNT", 0),

		AllowlistPath: getEnv("ALLOWLIST_PATH", ""),
	}
	cfg.RPCURL = getEnv("RPC_URL", defaultRPCURL(cfg.Network))
	return cfg
}

func defaultRPCURL(network string) string {
	switch network {
	case "devnet":
		return "https://api.devnet.solana.com"
	case "testnet":
		return "https://api.testnet.solana.com"
	default:
		return "https://api.mainnet-beta.solana.com"
	}
}

// LoadAllowlists reads the allowlist membership file: a JSON object
// mapping group labels to wallet address arrays. An empty path yields an
// empty map.
func LoadAllowlists(path string) (candyguard.Allowlists, error) {
	if path == "" {
		return candyguard.Allowlists{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read allowlist file: %w", err)
	}
	var lists candyguard.Allowlists
	if err := json.Unmarshal(data, &lists); err != nil {
		return nil, fmt.Errorf("parse allowlist file %s: %w", path, err)
	}
	return lists, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvUint(key string, defaultVal uint64) uint64 {
	if val := os.Getenv(key); val != "" {
		if u, err := strconv.ParseUint(val, 10, 64); err == nil {
			return u
		}
	}
	return defaultVal
}
