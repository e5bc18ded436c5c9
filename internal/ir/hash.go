package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/stepsolver/internal/steps"
)

// DomainTransformation prefixes the hashed bytes of a transformation. The
// version suffix leaves room for a future encoding.
const DomainTransformation = "stepsolver/transformation/v1"

// hashWithDomain is SHA256(domain + 0x00 + data), hex encoded. The null
// separator keeps the domain and data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TransformationHash is the content address of t: the hash of its
// canonical encoding.
func TransformationHash(t *steps.Transformation) (string, error) {
	data, err := Marshal(EncodeTransformation(t))
	if err != nil {
		return "", fmt.Errorf("TransformationHash: %w", err)
	}
	return HashCanonical(data), nil
}

// HashCanonical hashes bytes already produced by Marshal for a
// transformation. It lets a stored result be checked without decoding it.
func HashCanonical(data []byte) string {
	return hashWithDomain(DomainTransformation, data)
}
