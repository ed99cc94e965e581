package wire

import "errors"

// RoastPassword toggles password obfuscation using the channel-1 signon
// roasting algorithm (spec.md §6). The first call obfuscates the clear
// password into TLV 0x02's value, and applying it again recovers the
// clear password -- it's its own inverse.
func RoastPassword(pass []byte) []byte {
	var roastTable = [16]byte{
		0xF3, 0x26, 0x81, 0xC4, 0x39, 0x86, 0xDB, 0x92,
		0x71, 0xA3, 0xB9, 0xE6, 0x53, 0x7A, 0x95, 0x7C,
	}
	out := make([]byte, len(pass))
	for i := range pass {
		out[i] = pass[i] ^ roastTable[i%len(roastTable)]
	}
	return out
}

// ValidateICQHandle returns an error if UIN is outside the valid ICQ
// number range.
func ValidateICQHandle(uin uint32) error {
	if uin < 10000 || uin > 2147483646 {
		return errors.New("wire: UIN must be between 10000 and 2147483646")
	}
	return nil
}

// ValidateICQPassword returns an error if pass is outside the length the
// classic ICQ signon flow accepts.
func ValidateICQPassword(pass string) error {
	if len(pass) < 1 || len(pass) > 8 {
		return errors.New("wire: password must be between 1 and 8 characters")
	}
	return nil
}
