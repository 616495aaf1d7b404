package record

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashing.
// Version suffix enables future algorithm migration.
const (
	DomainObject = "cdo/object/v1"
)

// digestWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func digestWithDomain(domain string, data []byte) []byte {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return h.Sum(nil)
}

// ContentHash returns the hex-encoded content hash of an object. The hash
// covers everything Equal compares, so equal objects share a content hash.
func ContentHash(o *Object) (string, error) {
	canonical, err := MarshalCanonical(o.contentMap())
	if err != nil {
		return "", fmt.Errorf("ContentHash: failed to marshal: %w", err)
	}
	return hex.EncodeToString(digestWithDomain(DomainObject, canonical)), nil
}

// contentHash32 truncates the content digest to 32 bits.
func contentHash32(o *Object) (int32, error) {
	canonical, err := MarshalCanonical(o.contentMap())
	if err != nil {
		return 0, err
	}
	sum := digestWithDomain(DomainObject, canonical)
	return int32(binary.BigEndian.Uint32(sum[:4])), nil
}
