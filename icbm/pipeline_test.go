package icbm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_SendAndAck(t *testing.T) {
	var results []AckResult
	p := NewPipeline(func(r AckResult) { results = append(results, r) })

	_, cookie := p.SendAdvanced(123456, NormalMessage{Text: "hi"})
	assert.Equal(t, 1, p.Pending())

	pending, ok := p.HandleAck(cookie, "")
	require.True(t, ok)
	assert.Equal(t, uint32(123456), pending.ToUIN)
	assert.Equal(t, 0, p.Pending())

	require.Len(t, results, 1)
	assert.True(t, results[0].Delivered)
}

func TestPipeline_UnmatchedAckIsNoop(t *testing.T) {
	var results []AckResult
	p := NewPipeline(func(r AckResult) { results = append(results, r) })

	_, ok := p.HandleAck([8]byte{1, 2, 3, 4, 5, 6, 7, 8}, "")
	assert.False(t, ok)
	assert.Empty(t, results)
}

func TestPipeline_ExpiryFinalizesUndelivered(t *testing.T) {
	var results []AckResult
	p := NewPipeline(func(r AckResult) { results = append(results, r) })

	clock := time.Unix(1000, 0)
	p.SetClock(func() time.Time { return clock })

	p.SendAdvanced(123456, NormalMessage{Text: "hi"})
	clock = clock.Add(31 * time.Second)

	p.Sweep()

	require.Len(t, results, 1)
	assert.False(t, results[0].Delivered)
	assert.Equal(t, 0, p.Pending())
}

func TestSMSReceipt_PreservesMisspelledXMLTag(t *testing.T) {
	xmlBody := []byte(`<sms_delivery_receipt><delivered>Yes</delivered><message_id>42</message_id><submition_time>2026-07-30T00:00:00</submition_time></sms_delivery_receipt>`)

	receipt, err := ParseSMSReceiptXML(xmlBody)
	require.NoError(t, err)
	assert.True(t, receipt.Delivered)
	assert.Equal(t, "42", receipt.MessageID)
	assert.Equal(t, "2026-07-30T00:00:00", receipt.SubmissionTime)

	roundTripped, err := EncodeSMSReceiptXML(receipt)
	require.NoError(t, err)
	assert.Contains(t, string(roundTripped), "<submition_time>")
}
