package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tally/internal/core"
)

// WarehouseSource declares one warehouse root: where its bills live, which
// bill family parses them, and the currency the warehouse settles in.
type WarehouseSource struct {
	Name     string
	Family   core.SourceKind
	Currency string
	Root     string
}

type Config struct {
	// PlatformRoot is scanned recursively; files are routed to platform
	// adapters by name.
	PlatformRoot string

	// Warehouses come from TALLY_WAREHOUSES as
	// "name|family|currency|root" entries separated by ";".
	Warehouses []WarehouseSource

	// ReportPath is where the Excel report is written.
	ReportPath string

	// Workers bounds concurrent document parsing.
	Workers int

	// ReferenceYear resolves month-only folder tokens like "7月". Zero
	// leaves such files unattributable.
	ReferenceYear int

	// DisplayCurrency is the report's common-currency column.
	DisplayCurrency string

	// RateOverrides patch the fixed exchange-rate table, in CNY per unit.
	RateOverrides map[string]decimal.Decimal

	LogLevel string

	// malformed env entries, reported by Validate
	warehouseErrs parseErrs
	rateErrs      parseErrs
}

var warehouseFamilies = map[string]core.SourceKind{
	"itemized":  core.SourceWarehouseItemized,
	"coverbill": core.SourceWarehouseCoverBill,
	"summary":   core.SourceWarehouseSummary,
	"costbill":  core.SourceWarehouseCostBill,
	"bookkept":  core.SourceWarehouseBookkept,
}

func Load() *Config {
	cfg := &Config{
		PlatformRoot:    getEnv("TALLY_PLATFORM_ROOT", "./data/platforms"),
		ReportPath:      getEnv("TALLY_REPORT_PATH", "./out/monthly-report.xlsx"),
		Workers:         getEnvInt("TALLY_WORKERS", 4),
		ReferenceYear:   getEnvInt("TALLY_REFERENCE_YEAR", 0),
		DisplayCurrency: getEnv("TALLY_DISPLAY_CURRENCY", "CNY"),
		LogLevel:        getEnv("TALLY_LOG_LEVEL", "info"),
	}
	cfg.Warehouses, cfg.warehouseErrs = parseWarehouses(getEnv("TALLY_WAREHOUSES", ""))
	cfg.RateOverrides, cfg.rateErrs = parseRates(getEnv("TALLY_RATES", ""))
	return cfg
}

// Validate checks the whole configuration and reports every problem at
// once.
func (c *Config) Validate() error {
	var errs []string

	if c.PlatformRoot == "" && len(c.Warehouses) == 0 {
		errs = append(errs, "no inputs: set TALLY_PLATFORM_ROOT and/or TALLY_WAREHOUSES")
	}
	if c.ReportPath == "" {
		errs = append(errs, "report path cannot be empty")
	}
	if c.Workers < 1 || c.Workers > 64 {
		errs = append(errs, fmt.Sprintf("invalid worker count %d: must be between 1 and 64", c.Workers))
	}
	if c.ReferenceYear != 0 && (c.ReferenceYear < 2000 || c.ReferenceYear > 2100) {
		errs = append(errs, fmt.Sprintf("invalid reference year %d", c.ReferenceYear))
	}
	if c.DisplayCurrency == "" {
		errs = append(errs, "display currency cannot be empty")
	}

	seen := make(map[string]bool, len(c.Warehouses))
	for _, w := range c.Warehouses {
		if seen[w.Name] {
			errs = append(errs, fmt.Sprintf("duplicate warehouse %q", w.Name))
		}
		seen[w.Name] = true
	}

	errs = append(errs, c.warehouseErrs...)
	errs = append(errs, c.rateErrs...)

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// parse errors are collected at Load and surfaced by Validate, so a single
// run reports everything wrong with the environment.
type parseErrs = []string

func parseWarehouses(raw string) ([]WarehouseSource, parseErrs) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var (
		out  []WarehouseSource
		errs parseErrs
	)
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, "|")
		if len(parts) != 4 {
			errs = append(errs, fmt.Sprintf("warehouse entry %q: want name|family|currency|root", entry))
			continue
		}
		family, ok := warehouseFamilies[strings.ToLower(strings.TrimSpace(parts[1]))]
		if !ok {
			errs = append(errs, fmt.Sprintf("warehouse %q: unknown family %q", parts[0], parts[1]))
			continue
		}
		w := WarehouseSource{
			Name:     strings.TrimSpace(parts[0]),
			Family:   family,
			Currency: strings.ToUpper(strings.TrimSpace(parts[2])),
			Root:     strings.TrimSpace(parts[3]),
		}
		if w.Name == "" || w.Currency == "" || w.Root == "" {
			errs = append(errs, fmt.Sprintf("warehouse entry %q: empty field", entry))
			continue
		}
		out = append(out, w)
	}
	return out, errs
}

func parseRates(raw string) (map[string]decimal.Decimal, parseErrs) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	out := make(map[string]decimal.Decimal)
	var errs parseErrs
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		currency, value, ok := strings.Cut(entry, "=")
		if !ok {
			errs = append(errs, fmt.Sprintf("rate entry %q: want CCY=rate", entry))
			continue
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil || !rate.IsPositive() {
			errs = append(errs, fmt.Sprintf("rate entry %q: not a positive number", entry))
			continue
		}
		out[strings.ToUpper(strings.TrimSpace(currency))] = rate
	}
	return out, errs
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
