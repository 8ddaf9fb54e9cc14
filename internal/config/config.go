// Package config loads the handful of environment variables this service
// recognises. There is no control API and no YAML file: the upstream and
// RPC endpoints, and the program to watch, are supplied by the operator's
// environment.
package config

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
)

// LamportsPerSOL is the fixed divisor between lamports and SOL.
const LamportsPerSOL = 1_000_000_000

// TokenDecimals is the fixed decimal scale of pump.fun token amounts.
const TokenDecimals = 6

// Config holds the environment-driven configuration for the dispatcher and
// monitor pipeline.
type Config struct {
	SolanaNodeWSSEndpoint string
	RPCHTTPEndpoint       string
	PumpProgram           solana.PublicKey
	LogLevel              string
}

// Load reads the recognised environment variables, optionally seeded from a
// dotenv file at path (a missing file is not an error — it mirrors the
// original pipeline's opportunistic ".private/env.conf" load). Required
// variables that are still unset after that return an error.
func Load(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if _, err := os.Stat(dotenvPath); err == nil {
			if err := godotenv.Load(dotenvPath); err != nil {
				return nil, fmt.Errorf("config: loading %s: %w", dotenvPath, err)
			}
		}
	}

	wss, err := requireEnv("SOLANA_NODE_WSS_ENDPOINT")
	if err != nil {
		return nil, err
	}
	rpc, err := requireEnv("RPC_HTTP_ENDPOINT")
	if err != nil {
		return nil, err
	}
	programAddr, err := requireEnv("PUMP_PROGRAM")
	if err != nil {
		return nil, err
	}

	program, err := solana.PublicKeyFromBase58(programAddr)
	if err != nil {
		return nil, fmt.Errorf("config: PUMP_PROGRAM is not a valid address: %w", err)
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	return &Config{
		SolanaNodeWSSEndpoint: wss,
		RPCHTTPEndpoint:       rpc,
		PumpProgram:           program,
		LogLevel:              level,
	}, nil
}

func requireEnv(name string) (string, error) {
	v := os.Getenv(name)
	if v == "" {
		return "", fmt.Errorf("config: required environment variable %s is not set", name)
	}
	return v, nil
}
