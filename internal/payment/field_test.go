package payment

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_String(t *testing.T) {
	f := Keys("transaction_id", "transactionId", "data.id")

	t.Run("First candidate wins", func(t *testing.T) {
		got := f.String(map[string]any{"transaction_id": "a", "transactionId": "b"})
		require.NotNil(t, got)
		assert.Equal(t, "a", *got)
	})

	t.Run("Null and empty candidates are skipped", func(t *testing.T) {
		got := f.String(map[string]any{"transaction_id": nil, "transactionId": "", "data": map[string]any{"id": "c"}})
		require.NotNil(t, got)
		assert.Equal(t, "c", *got)
	})

	t.Run("Numbers are rendered", func(t *testing.T) {
		got := f.String(map[string]any{"transaction_id": json.Number("12345678901234")})
		require.NotNil(t, got)
		assert.Equal(t, "12345678901234", *got)

		got = f.String(map[string]any{"transaction_id": float64(987)})
		require.NotNil(t, got)
		assert.Equal(t, "987", *got)
	})

	t.Run("Non-scalar is skipped", func(t *testing.T) {
		got := f.String(map[string]any{"transaction_id": map[string]any{"x": 1}, "transactionId": "b"})
		require.NotNil(t, got)
		assert.Equal(t, "b", *got)
	})

	t.Run("Path through non-object", func(t *testing.T) {
		assert.Nil(t, f.String(map[string]any{"data": "flat"}))
	})

	t.Run("Missing", func(t *testing.T) {
		assert.Nil(t, f.String(map[string]any{}))
		assert.Nil(t, f.String(nil))
	})
}

func TestField_Number(t *testing.T) {
	f := Keys("fee", "data.fee")

	cases := []struct {
		name    string
		payload map[string]any
		want    *float64
	}{
		{"float", map[string]any{"fee": 1.5}, ptr(1.5)},
		{"json number", map[string]any{"fee": json.Number("2.25")}, ptr(2.25)},
		{"numeric string", map[string]any{"fee": " 3.10 "}, ptr(3.10)},
		{"comma decimal", map[string]any{"fee": "4,5"}, ptr(4.5)},
		{"nested", map[string]any{"data": map[string]any{"fee": 7}}, ptr(7)},
		{"not a number", map[string]any{"fee": "abc"}, nil},
		{"NaN string", map[string]any{"fee": "NaN"}, nil},
		{"infinity", map[string]any{"fee": math.Inf(1)}, nil},
		{"bool", map[string]any{"fee": true}, nil},
		{"missing", map[string]any{}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := f.Number(tc.payload)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tc.want, *got, 1e-9)
		})
	}
}

func TestResultFields_Result(t *testing.T) {
	rf := ResultFields{
		TransactionID: Keys("id", "data.id"),
		Status:        Keys("status"),
		QRCode:        Keys("pix.qrcode"),
	}

	t.Run("Defaults status to PENDING", func(t *testing.T) {
		raw := map[string]any{"data": map[string]any{"id": "tx-1"}, "pix": map[string]any{"qrcode": "000201"}}
		res := rf.Result("pixhub", "ord-1", raw)

		assert.Equal(t, "pixhub", res.Provider)
		assert.Equal(t, "ord-1", res.ExternalID)
		require.NotNil(t, res.TransactionID)
		assert.Equal(t, "tx-1", *res.TransactionID)
		assert.Equal(t, DefaultStatus, res.Status)
		require.NotNil(t, res.QRCode)
		assert.Equal(t, "000201", *res.QRCode)
		assert.Equal(t, raw, res.Raw)
	})

	t.Run("Non-object response", func(t *testing.T) {
		res := rf.Result("pixhub", "ord-2", "ok")
		assert.Nil(t, res.TransactionID)
		assert.Nil(t, res.QRCode)
		assert.Equal(t, DefaultStatus, res.Status)
		assert.Equal(t, "ord-2", res.ExternalID)
	})
}

func TestWebhookFields_Normalize(t *testing.T) {
	wf := WebhookFields{
		TransactionID: Keys("id"),
		ExternalID:    Keys("external_id"),
		Status:        Keys("status"),
		Fee:           Keys("fee"),
		NetAmount:     Keys("net_amount"),
		Total:         Keys("total"),
		EndToEnd:      Keys("end_to_end_id"),
	}

	assert.NotPanics(t, func() {
		ev := wf.Normalize(map[string]any{})
		assert.Nil(t, ev.TransactionID)
		assert.Nil(t, ev.ExternalID)
		assert.Nil(t, ev.Status)
		assert.Nil(t, ev.Fee)
		assert.Nil(t, ev.NetAmount)
		assert.Nil(t, ev.Total)
		assert.Nil(t, ev.EndToEnd)
	})

	assert.NotPanics(t, func() {
		ev := wf.Normalize(nil)
		assert.Nil(t, ev.Status)
	})
}

func TestStatusSet(t *testing.T) {
	paid := PaidStatuses("paid", "COMPLETED")

	assert.True(t, paid.Match(" paid "))
	assert.True(t, paid.Match("PAID"))
	assert.True(t, paid.Match("Completed"))
	assert.False(t, paid.Match("pending"))
	assert.False(t, paid.Match(""))
}

func ptr(f float64) *float64 { return &f }
