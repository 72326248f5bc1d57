package cache

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
)

// NetworkHash fingerprints a network for cache keys. The value must be
// stable across runs for identical networks, so map-ordered JSON is not
// enough: the marshaled bytes of Go maps are key-sorted by encoding/json,
// which gives the required canonical form.
func NetworkHash(marshalable any) (string, error) {
	data, err := json.Marshal(marshalable)
	if err != nil {
		return "", fmt.Errorf("hash network: %w", err)
	}
	h := fnv.New64a()
	_, _ = h.Write(data)
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// ParamsFingerprint folds a free-form parameter map into a stable string
// by sorting its keys.
func ParamsFingerprint(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h := fnv.New64a()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%v;", k, params[k])
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// BuildResultKey composes the cache key for one optimization run.
func BuildResultKey(networkHash, algorithm, settingsFingerprint, paramsFingerprint string) string {
	return fmt.Sprintf("result:%s:%s:%s:%s", networkHash, algorithm, settingsFingerprint, paramsFingerprint)
}
