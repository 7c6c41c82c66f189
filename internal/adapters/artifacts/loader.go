package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/samber/lo"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
	"github.com/arcvault/uups-cli/internal/usecase"
)

// Loader finds Foundry (out/) and Hardhat (artifacts/) contract artifacts
type Loader struct {
	projectRoot string
	dirs        []string
	log         *slog.Logger
}

// NewLoader creates a loader searching the configured artifact directory,
// falling back to foundry's out dir and hardhat's artifacts dir
func NewLoader(cfg *config.RuntimeConfig, log *slog.Logger) *Loader {
	var dirs []string
	if cfg.Project != nil && cfg.Project.Contracts.Artifacts != "" {
		dirs = append(dirs, cfg.Project.Contracts.Artifacts)
	}
	if cfg.FoundryConfig != nil && cfg.FoundryConfig.Out != "" {
		dirs = append(dirs, cfg.FoundryConfig.Out)
	}
	dirs = lo.Uniq(append(dirs, "out", "artifacts"))

	return &Loader{
		projectRoot: cfg.ProjectRoot,
		dirs:        dirs,
		log:         log.With("component", "artifacts"),
	}
}

// rawArtifact covers both Foundry and Hardhat layouts
type rawArtifact struct {
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     json.RawMessage `json:"bytecode"`
	Metadata     json.RawMessage `json:"metadata"`
}

type foundryBytecode struct {
	Object string `json:"object"`
}

type foundryMetadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
	} `json:"settings"`
}

// LoadArtifact loads a contract by name ("ERC1967Proxy") or by path:name ("src/Foo.sol:Foo")
func (l *Loader) LoadArtifact(ctx context.Context, ref string) (*domain.Artifact, error) {
	sourcePath, name := splitRef(ref)
	if name == "" {
		return nil, fmt.Errorf("%w: empty contract name", domain.ErrArtifactNotFound)
	}

	var matches []string
	for _, dir := range l.dirs {
		root := dir
		if !filepath.IsAbs(root) {
			root = filepath.Join(l.projectRoot, dir)
		}
		if _, err := os.Stat(root); err != nil {
			continue
		}
		found, err := findArtifacts(root, sourcePath, name)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			matches = found
			break
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s (searched %s)", domain.ErrArtifactNotFound, ref, strings.Join(l.dirs, ", "))
	case 1:
		l.log.Debug("loading artifact", "contract", ref, "path", matches[0])
		return ReadArtifact(matches[0], name)
	default:
		sort.Strings(matches)
		return nil, fmt.Errorf("multiple artifacts match %s, use path:Name to disambiguate:\n  - %s", ref, strings.Join(matches, "\n  - "))
	}
}

// ReadArtifact parses a single artifact file
func ReadArtifact(path, name string) (*domain.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var raw rawArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}

	bytecodeHex, err := parseBytecode(raw.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	if strings.Contains(bytecodeHex, "__") {
		return nil, fmt.Errorf("artifact %s has unlinked library references", path)
	}

	artifact := &domain.Artifact{
		Name:         name,
		SourcePath:   raw.SourceName,
		ABI:          raw.ABI,
		ArtifactPath: path,
	}
	if raw.ContractName != "" {
		artifact.Name = raw.ContractName
	}

	if bytecodeHex != "" && bytecodeHex != "0x" {
		if !strings.HasPrefix(bytecodeHex, "0x") {
			bytecodeHex = "0x" + bytecodeHex
		}
		artifact.Bytecode, err = hexutil.Decode(bytecodeHex)
		if err != nil {
			return nil, fmt.Errorf("decode bytecode in %s: %w", path, err)
		}
	}

	// Foundry keeps the source path and compiler version in the metadata object
	var meta foundryMetadata
	if len(raw.Metadata) > 0 && json.Unmarshal(raw.Metadata, &meta) == nil {
		if meta.Compiler.Version != "" {
			artifact.CompilerVersion = meta.Compiler.Version
		}
		for source, contract := range meta.Settings.CompilationTarget {
			if contract == artifact.Name && artifact.SourcePath == "" {
				artifact.SourcePath = source
			}
		}
	}

	return artifact, nil
}

func parseBytecode(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var obj foundryBytecode
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fmt.Errorf("unrecognised bytecode field: %w", err)
	}
	return obj.Object, nil
}

// findArtifacts returns <Name>.json files under root that live in a <File>.sol directory
func findArtifacts(root, sourcePath, name string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != name+".json" {
			return nil
		}

		parent := filepath.Dir(path)
		if !strings.HasSuffix(parent, ".sol") {
			return nil
		}
		if sourcePath != "" && !matchesSource(root, parent, sourcePath) {
			return nil
		}
		matches = append(matches, path)
		return nil
	})
	return matches, err
}

// matchesSource accepts foundry's flat out/Foo.sol/ and hardhat's mirrored artifacts/contracts/Foo.sol/
func matchesSource(root, dir, sourcePath string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	sourcePath = filepath.ToSlash(sourcePath)
	return rel == sourcePath || rel == filepath.Base(sourcePath) && !strings.Contains(rel, "/")
}

func splitRef(ref string) (string, string) {
	ref = strings.TrimSpace(ref)
	if idx := strings.LastIndex(ref, ":"); idx != -1 {
		return ref[:idx], ref[idx+1:]
	}
	return "", ref
}

var _ usecase.ArtifactLoader = (*Loader)(nil)
