// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Key builds the canonical cache key of an operation: the operation name
// followed by name=value pairs sorted by name. Nil values render as None,
// so keys do not depend on argument order or on absent versus nil.
func Key(op string, params map[string]any) string {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(op)
	for _, k := range names {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(render(params[k]))
	}
	return b.String()
}

func render(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case *string:
		if x == nil {
			return "None"
		}
		return *x
	case *int:
		if x == nil {
			return "None"
		}
		return fmt.Sprint(*x)
	case *int64:
		if x == nil {
			return "None"
		}
		return fmt.Sprint(*x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// StorageKey hashes a logical key into a token safe for backends with a
// restricted key charset.
func StorageKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
