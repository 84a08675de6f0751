package repository

import (
	"strconv"
	"strings"
	"time"
)

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// joinSlots encodes a membership list for storage, e.g. "0,2".
func joinSlots(slots []int) string {
	parts := make([]string, len(slots))
	for i, s := range slots {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ",")
}

// splitSlots decodes a membership list written by joinSlots.
func splitSlots(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// formatFingerprint renders a fingerprint as fixed-width hex.
func formatFingerprint(fp uint64) string {
	return strconv.FormatUint(fp, 16)
}

func parseFingerprint(s string) (uint64, error) {
	return strconv.ParseUint(s, 16, 64)
}
