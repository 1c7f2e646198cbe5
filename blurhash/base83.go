package blurhash

import "fmt"

// alphabet is part of the wire format; the order must never change.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz#$%*+,-.:;=?@[]^_{|}~"

// digitValue maps a byte to its base-83 digit plus one; zero means the byte
// is not in the alphabet.
var digitValue = func() (t [256]uint8) {
	for i := 0; i < len(alphabet); i++ {
		t[alphabet[i]] = uint8(i + 1)
	}
	return t
}()

// EncodeBase83 returns value as exactly length base-83 digits, most
// significant first.  Digits above the requested length are dropped.
func EncodeBase83(value, length int) string {
	return string(AppendBase83(make([]byte, 0, length), value, length))
}

// AppendBase83 appends length base-83 digits of value to dst.
func AppendBase83(dst []byte, value, length int) []byte {
	divisor := 1
	for i := 0; i < length-1; i++ {
		divisor *= 83
	}
	for i := 0; i < length; i++ {
		dst = append(dst, alphabet[(value/divisor)%83])
		divisor /= 83
	}
	return dst
}

// DecodeBase83 parses s as a base-83 number.  Any character outside the
// alphabet fails the whole decode with ErrMalformedHash.
func DecodeBase83(s string) (int, error) {
	return decodeBase83(s, 0, len(s))
}

// decodeBase83 parses s[start:end].  Offsets in errors are relative to s so
// that callers decoding a slice of a hash report the real position.
func decodeBase83(s string, start, end int) (int, error) {
	value := 0
	for i := start; i < end; i++ {
		d := digitValue[s[i]]
		if d == 0 {
			return 0, fmt.Errorf("%w: invalid character %q at offset %d", ErrMalformedHash, s[i], i)
		}
		value = value*83 + int(d-1)
	}
	return value, nil
}
