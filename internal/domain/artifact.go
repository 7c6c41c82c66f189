package domain

import "encoding/json"

// Artifact is a compiled contract loaded from a Foundry or Hardhat build directory
type Artifact struct {
	Name            string
	SourcePath      string
	CompilerVersion string
	ABI             json.RawMessage
	Bytecode        []byte
	ArtifactPath    string
}
