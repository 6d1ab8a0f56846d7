// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package segment

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shopscope/internal/config"
)

// NoPurchaseHours is the time-to-purchase of visitors who never bought. It
// is larger than any sane Impulsive threshold.
const NoPurchaseHours = 9999.0

// Rules holds the thresholds of the three predicates.
type Rules struct {
	HesitantMinViews      int     `json:"hesitant_min_views"`
	HesitantMaxRatio      float64 `json:"hesitant_max_ratio"`
	ImpulsiveMinViews     int     `json:"impulsive_min_views"`
	ImpulsiveMinRatio     float64 `json:"impulsive_min_ratio"`
	ImpulsiveMaxHours     float64 `json:"impulsive_max_hours"`
	CollectorMinAddToCart int     `json:"collector_min_addtocart"`
	CollectorMinRatio     float64 `json:"collector_min_ratio"`
}

// DefaultRules returns the stock thresholds.
func DefaultRules() Rules {
	return Rules{
		HesitantMinViews:      10,
		HesitantMaxRatio:      0.05,
		ImpulsiveMinViews:     3,
		ImpulsiveMinRatio:     0.30,
		ImpulsiveMaxHours:     24,
		CollectorMinAddToCart: 5,
		CollectorMinRatio:     0.10,
	}
}

// RulesFromConfig copies the thresholds out of the segmentation config.
func RulesFromConfig(c *config.SegmentationConfig) Rules {
	return Rules{
		HesitantMinViews:      c.HesitantMinViews,
		HesitantMaxRatio:      c.HesitantMaxRatio,
		ImpulsiveMinViews:     c.ImpulsiveMinViews,
		ImpulsiveMinRatio:     c.ImpulsiveMinRatio,
		ImpulsiveMaxHours:     c.ImpulsiveMaxHours,
		CollectorMinAddToCart: c.CollectorMinAddToCart,
		CollectorMinRatio:     c.CollectorMinRatio,
	}
}

// Fingerprint is a SHA-256 over the canonical JSON of the full threshold
// set. Struct field order keeps the encoding stable.
func (r Rules) Fingerprint() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal rules: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// IsHesitant reports whether s matches the Hesitant predicate.
func (r *Rules) IsHesitant(s *UserStats) bool {
	return s.Views >= int64(r.HesitantMinViews) && s.PurchaseRatio() <= r.HesitantMaxRatio
}

// IsImpulsive reports whether s matches the Impulsive predicate.
func (r *Rules) IsImpulsive(s *UserStats) bool {
	return s.Transactions > 0 &&
		s.Views >= int64(r.ImpulsiveMinViews) &&
		s.PurchaseRatio() >= r.ImpulsiveMinRatio &&
		s.HoursToPurchase() <= r.ImpulsiveMaxHours
}

// IsCollector reports whether s matches the Collector predicate.
func (r *Rules) IsCollector(s *UserStats) bool {
	return s.Transactions > 0 &&
		s.AddToCarts >= int64(r.CollectorMinAddToCart) &&
		s.PurchaseRatio() >= r.CollectorMinRatio
}
