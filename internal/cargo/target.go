// Package cargo queries cargo for project layout.
package cargo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/raphi011/cleanart/internal/cmd"
)

// EnvTargetDir is the variable that redirects every project's output to
// one shared directory.
const EnvTargetDir = "CARGO_TARGET_DIR"

// Metadata is the subset of `cargo metadata` output cleanart needs.
type Metadata struct {
	TargetDirectory string `json:"target_directory"`
	WorkspaceRoot   string `json:"workspace_root"`
}

// LoadMetadata runs `cargo metadata` in dir.
func LoadMetadata(ctx context.Context, dir string) (*Metadata, error) {
	out, err := cmd.OutputContext(ctx, dir, "cargo", "metadata", "--format-version", "1", "--no-deps")
	if err != nil {
		return nil, fmt.Errorf("cargo metadata: %w", err)
	}
	return parseMetadata(out)
}

// TargetDir returns the target directory of the project in dir.
func TargetDir(ctx context.Context, dir string) (string, error) {
	md, err := LoadMetadata(ctx, dir)
	if err != nil {
		return "", err
	}
	return md.TargetDirectory, nil
}

func parseMetadata(data []byte) (*Metadata, error) {
	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("parse cargo metadata: %w", err)
	}
	if md.TargetDirectory == "" {
		return nil, errors.New("cargo metadata: no target_directory")
	}
	return &md, nil
}

// SharedTargetDir returns the value of CARGO_TARGET_DIR, if set.
func SharedTargetDir() (string, bool) {
	v, ok := os.LookupEnv(EnvTargetDir)
	return v, ok && v != ""
}
