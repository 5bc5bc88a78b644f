// Package idgen produces the human-facing identifiers of the platform: class
// join codes and live room names.
package idgen

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ClassCodeAlphabet omits characters that are easy to confuse (0/O, 1/I/L).
// Its length is 32, so byte%len keeps the distribution uniform.
const ClassCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DefaultClassCodeLength is the length of codes handed to teachers.
const DefaultClassCodeLength = 6

// ClassCode returns a random join code of the given length.
func ClassCode(length int) string {
	if length <= 0 {
		length = DefaultClassCodeLength
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}
	var b strings.Builder
	b.Grow(length)
	for _, v := range buf {
		b.WriteByte(ClassCodeAlphabet[int(v)%len(ClassCodeAlphabet)])
	}
	return b.String()
}

// RoomName returns a globally unique room name derived from now and a random
// suffix, e.g. ROOM_M2K9ZQ1C_3F9A1B7C0D2E.
func RoomName(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 36)
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper("room_" + ts + "_" + random[:12])
}

// NormalizeClassCode trims and upper-cases a code typed by a user.
func NormalizeClassCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
