package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// parseID parses a positive entity id argument.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a valid id", errUsage, s)
	}
	return id, nil
}

// parseIDs parses a comma-separated id list.
func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		id, err := parseID(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseKeyValue splits key=value. The value is decoded as JSON when it
// parses, so pages=412 is a number and tags=["a","b"] a list; anything else
// stays a string.
func parseKeyValue(s string) (string, any, error) {
	key, raw, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return "", nil, fmt.Errorf("%w: %q is not key=value", errUsage, s)
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return key, raw, nil
	}
	return key, v, nil
}

// parseTermFilter parses taxonomy=id[,id...].
func parseTermFilter(s string) (string, []int64, error) {
	taxonomy, list, ok := strings.Cut(s, "=")
	if !ok || taxonomy == "" || list == "" {
		return "", nil, fmt.Errorf("%w: %q is not taxonomy=id[,id...]", errUsage, s)
	}
	ids, err := parseIDs(list)
	if err != nil {
		return "", nil, err
	}
	return taxonomy, ids, nil
}
