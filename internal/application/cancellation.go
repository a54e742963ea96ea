package application

import "strings"

// cancellationCodeLength is the number of characters handed to the caller.
// Codes are short enough to read back over the phone while still giving
// 16^8 possibilities per booking.
const cancellationCodeLength = 8

// newCancellationCode derives a human-enterable code from a generated ID.
// With a UUID generator the result is eight uppercase hex characters.
func newCancellationCode(idGenerator func() string) string {
	raw := strings.ReplaceAll(idGenerator(), "-", "")
	if len(raw) > cancellationCodeLength {
		raw = raw[:cancellationCodeLength]
	}
	return strings.ToUpper(raw)
}
