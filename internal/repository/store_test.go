package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadCodec_PreservesOrderAndPrecision(t *testing.T) {
	fetchedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	table := sampleTable(t, fetchedAt)

	data, err := encodePayload(table)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rate":"0.9123"`)

	got, err := decodePayload(data, fetchedAt)
	require.NoError(t, err)
	require.Equal(t, table.Len(), got.Len())
	for i, r := range table.Rates() {
		g := got.Rates()[i]
		assert.Equal(t, r.Code, g.Code)
		assert.True(t, r.Rate.Equal(g.Rate))
	}
}

func TestPayloadCodec_RejectsInvalidRecords(t *testing.T) {
	now := time.Now().UTC()

	_, err := decodePayload([]byte(`{"pivot":"USD","rates":[{"code":"EUR","rate":"0"}]}`), now)
	assert.Error(t, err)

	_, err = decodePayload([]byte(`{"pivot":"USD","rates":[{"code":"EUR","rate":"1"},{"code":"EUR","rate":"2"}]}`), now)
	assert.Error(t, err)
}
