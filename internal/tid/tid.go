// Package tid mints opaque thought identifiers. An identifier is derived
// from a content hash plus its creation time, so ids are unique across the
// feed and sort roughly by age when compared as strings of equal length.
package tid

import (
	"encoding/base32"
	"encoding/binary"
	"strings"
	"time"

	"github.com/zeebo/xxh3"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// New returns an identifier for a thought authored by userID with the given
// content at time t. The caller supplies a nonce to disambiguate identical
// submissions within the same timestamp.
func New(userID, content string, t time.Time, nonce uint64) string {
	h := xxh3.HashString(userID + "\x00" + content)

	buf := make([]byte, 24)
	binary.BigEndian.PutUint64(buf[0:8], uint64(t.UnixMilli()))
	binary.BigEndian.PutUint64(buf[8:16], h)
	binary.BigEndian.PutUint64(buf[16:24], nonce)

	return "t" + strings.ToLower(encoding.EncodeToString(buf))
}
