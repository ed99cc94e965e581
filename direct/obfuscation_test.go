package direct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	plain := BuildDataPacket(CommandStart, 42, []byte("hello, peer"))
	size := uint32(len(plain))

	encrypted := Encrypt(plain, size)
	decrypted, ok := Decrypt(encrypted, size)
	require.True(t, ok)

	cmd, seq, body, ok := ParseDataPacket(decrypted)
	require.True(t, ok)
	assert.Equal(t, CommandStart, cmd)
	assert.Equal(t, uint16(42), seq)
	assert.Equal(t, []byte("hello, peer"), body)
}

func TestDecrypt_RejectsTamperedBody(t *testing.T) {
	plain := BuildDataPacket(CommandAck, 7, []byte("ack payload"))
	size := uint32(len(plain))
	encrypted := Encrypt(plain, size)

	// Flip the byte the checksum directly covers (offset 6, part of the
	// command/constant field) -- corrupting it desyncs the decrypted
	// value from what the checksum was computed against.
	encrypted[6] ^= 0xFF

	_, ok := Decrypt(encrypted, size)
	assert.False(t, ok)
}

func TestBuildAndParseDataPacket(t *testing.T) {
	body := BuildDataPacket(CommandStart, 99, []byte("payload"))
	cmd, seq, sub, ok := ParseDataPacket(body)
	require.True(t, ok)
	assert.Equal(t, CommandStart, cmd)
	assert.Equal(t, uint16(99), seq)
	assert.Equal(t, []byte("payload"), sub)
}
