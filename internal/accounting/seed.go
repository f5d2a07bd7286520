package accounting

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/rudraroyaltypython/inventory-sys/internal/shared"
)

// Chart is the YAML layout for a chart-of-accounts seed file.
//
//	accounts:
//	  - code: "1000"
//	    name: Cash
type Chart struct {
	Accounts []AccountInput `yaml:"accounts"`
}

// ChartResult reports what LoadChart changed.
type ChartResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// ParseChart decodes and validates a chart file.
func ParseChart(r io.Reader) (Chart, error) {
	var chart Chart
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&chart); err != nil {
		return Chart{}, fmt.Errorf("%w: chart of accounts: %v", shared.ErrValidation, err)
	}
	seen := make(map[string]struct{}, len(chart.Accounts))
	for i, acc := range chart.Accounts {
		acc = acc.Normalize()
		if err := acc.Validate(); err != nil {
			return Chart{}, fmt.Errorf("chart entry %d: %w", i+1, err)
		}
		if _, dup := seen[acc.Code]; dup {
			return Chart{}, shared.Invalid("chart entry %d: code %s repeated", i+1, acc.Code)
		}
		seen[acc.Code] = struct{}{}
		chart.Accounts[i] = acc
	}
	return chart, nil
}

// LoadChart upserts accounts by code. Existing balances are left untouched.
func (s *Service) LoadChart(ctx context.Context, r io.Reader) (ChartResult, error) {
	chart, err := ParseChart(r)
	if err != nil {
		return ChartResult{}, err
	}
	var result ChartResult
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		result = ChartResult{}
		for _, acc := range chart.Accounts {
			created, err := tx.UpsertAccountByCode(ctx, acc)
			if err != nil {
				return fmt.Errorf("accounting: load %s: %w", acc.Code, err)
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
		return nil
	})
	return result, err
}
