package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"
)

const codeDigits = 6

// CodeIssuer derives short numeric codes from a server secret, the
// subject and the current time window. A code stays valid for the window it
// was issued in and the following one, so nothing has to be stored.
type CodeIssuer struct {
	secret []byte
	period time.Duration
	now    func() time.Time
}

func NewCodeIssuer(secret string, period time.Duration) *CodeIssuer {
	return &CodeIssuer{
		secret: []byte(secret),
		period: period,
		now:    time.Now,
	}
}

func (i *CodeIssuer) window(t time.Time) uint64 {
	return uint64(t.Unix() / int64(i.period/time.Second))
}

func (i *CodeIssuer) code(subject, purpose string, window uint64) string {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write([]byte(purpose))
	mac.Write([]byte{0})
	mac.Write([]byte(subject))

	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], window)
	mac.Write(counter[:])
	sum := mac.Sum(nil)

	// Dynamic truncation as in HOTP.
	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff
	return fmt.Sprintf("%0*d", codeDigits, value%1000000)
}

// Generate returns the code of subject for the current window.
func (i *CodeIssuer) Generate(subject, purpose string) string {
	return i.code(subject, purpose, i.window(i.now()))
}

// Verify accepts codes of the current and the previous window.
func (i *CodeIssuer) Verify(subject, purpose, code string) bool {
	if len(code) != codeDigits {
		return false
	}
	current := i.window(i.now())
	for _, w := range []uint64{current, current - 1} {
		if hmac.Equal([]byte(i.code(subject, purpose, w)), []byte(code)) {
			return true
		}
	}
	return false
}
