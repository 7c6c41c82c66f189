package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"

	"github.com/arcvault/uups-cli/internal/domain"
	"github.com/arcvault/uups-cli/internal/domain/config"
	"github.com/arcvault/uups-cli/internal/usecase"
)

// SelectorAdapter handles interactive network selection and confirmation prompts
type SelectorAdapter struct {
	nonInteractive bool
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{nonInteractive: cfg.NonInteractive}
}

// SelectNetwork asks the user to pick one of the configured networks
func (s *SelectorAdapter) SelectNetwork(ctx context.Context, networks []string) (string, error) {
	if len(networks) == 0 {
		return "", &domain.ConfigError{Field: "network", Err: domain.ErrNoNetwork}
	}
	if len(networks) == 1 {
		return networks[0], nil
	}
	if s.nonInteractive {
		return "", &domain.ConfigError{
			Field: "network",
			Err:   fmt.Errorf("%w: pass --network (one of %s)", domain.ErrNoNetwork, strings.Join(networks, ", ")),
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, type to filter, Enter to select"),
	}

	prompt := promptui.Select{
		Label:     "Select network",
		Items:     networks,
		Templates: templates,
		Size:      10,
		Searcher:  fuzzySearcher(networks),
	}

	index, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return networks[index], nil
}

// Confirm asks a yes/no question. Non-interactive runs never block and answer yes;
// the caller decides whether a prompt is needed at all.
func (s *SelectorAdapter) Confirm(ctx context.Context, label string) (bool, error) {
	if s.nonInteractive {
		return true, nil
	}

	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		if errors.Is(err, promptui.ErrInterrupt) {
			return false, domain.ErrCancelled
		}
		return false, err
	}
	return true, nil
}

// fuzzySearcher matches by substring first, then fuzzily
func fuzzySearcher(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}
		input = strings.ToLower(input)
		item := strings.ToLower(items[index])
		if strings.Contains(item, input) {
			return true
		}
		return len(fuzzy.Find(input, []string{item})) > 0
	}
}

var (
	_ usecase.NetworkSelector = (*SelectorAdapter)(nil)
	_ usecase.Confirmer       = (*SelectorAdapter)(nil)
)
