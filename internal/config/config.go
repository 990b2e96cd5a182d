package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Env  string
	Port string

	RedisURL  string
	RedisPass string
	RedisDB   int

	JWTSecret string

	ChainRPCURL string
	ChainID     int64

	ATMContractAddress  string
	GameContractAddress string
	ATMArtifactPath     string
	GameArtifactPath    string
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		RedisURL:  getEnv("REDIS_URL", "localhost:6379"),
		RedisPass: os.Getenv("REDIS_PASS"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		ChainRPCURL: getEnv("CHAIN_RPC_URL", "http://localhost:8545"),

		ATMContractAddress:  getEnv("ATM_CONTRACT_ADDRESS", "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"),
		GameContractAddress: os.Getenv("GAME_CONTRACT_ADDRESS"),
		ATMArtifactPath:     getEnv("ATM_ARTIFACT_PATH", "artifacts/contracts/Assessment.sol/Assessment.json"),
		GameArtifactPath:    getEnv("GAME_ARTIFACT_PATH", "artifacts/contracts/GuessingGame.sol/GuessingGame.json"),
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret-do-not-use-in-production"
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %v", err)
		}
		cfg.RedisDB = db
	}

	cfg.ChainID = 31337 // hardhat local network default
	if idStr := os.Getenv("CHAIN_ID"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid CHAIN_ID: %v", err)
		}
		cfg.ChainID = id
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
