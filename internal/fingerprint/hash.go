package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/rowfilter/internal/value"
)

// DomainJob prefixes job fingerprints. The version suffix allows the hash
// input to change without colliding with older fingerprints.
const DomainJob = "rowfilter/job/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data) as hex.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Job computes the fingerprint of a filter job. Input and output paths are
// not part of the identity.
func Job(expression string, types []value.Type, skipLines int) (string, error) {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	obj := map[string]any{
		"expression": expression,
		"types":      names,
		"skip_lines": skipLines,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("job fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainJob, canonical), nil
}

// MustJob is like Job but panics on error.
func MustJob(expression string, types []value.Type, skipLines int) string {
	id, err := Job(expression, types, skipLines)
	if err != nil {
		panic(err)
	}
	return id
}
