package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

type artifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
}

// LoadArtifact parses a contract interface descriptor from disk. Accepts
// either a raw ABI JSON array or a Hardhat/Foundry build artifact wrapping
// one under an "abi" key.
func LoadArtifact(path string) (abi.ABI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("read artifact %s: %v", path, err)
	}
	return ParseArtifact(data)
}

func ParseArtifact(data []byte) (abi.ABI, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return abi.ABI{}, fmt.Errorf("empty artifact")
	}

	raw := trimmed
	if trimmed[0] == '{' {
		var art artifact
		if err := json.Unmarshal(trimmed, &art); err != nil {
			return abi.ABI{}, fmt.Errorf("parse artifact: %v", err)
		}
		if len(art.ABI) == 0 {
			return abi.ABI{}, fmt.Errorf("artifact has no abi field")
		}
		raw = art.ABI
	}

	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse abi: %v", err)
	}
	return parsed, nil
}
