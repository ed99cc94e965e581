package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilityList_Has(t *testing.T) {
	list := CapabilityList{CapICQRTF, CapTyping}
	assert.True(t, list.Has(CapICQRTF))
	assert.False(t, list.Has(CapUTF8))
}

func TestCapabilityList_AcceptsAdvancedMessages(t *testing.T) {
	assert.False(t, DefaultICQ2000Capabilities.AcceptsAdvancedMessages())
	assert.True(t, DefaultICQ2002Capabilities.AcceptsAdvancedMessages())
}

func TestCapabilityList_BytesRoundTrip(t *testing.T) {
	b := DefaultICQ2002Capabilities.Bytes()
	assert.Len(t, b, len(DefaultICQ2002Capabilities)*CapabilityLen)

	parsed := ParseCapabilityList(b)
	assert.Equal(t, DefaultICQ2002Capabilities, parsed)
}

func TestParseCapabilityList_DropsTrailingPartial(t *testing.T) {
	b := append(CapICQRTF[:], 0x01, 0x02, 0x03) // trailing partial GUID
	parsed := ParseCapabilityList(b)
	assert.Equal(t, CapabilityList{CapICQRTF}, parsed)
}
