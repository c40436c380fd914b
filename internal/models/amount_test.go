package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type amountHolder struct {
	Amount Amount `bson:"amount"`
}

func TestAmountDecodesLegacyBSONTypes(t *testing.T) {
	d128, err := primitive.ParseDecimal128("99.95")
	require.NoError(t, err)

	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"string", "1500.50", "1500.5"},
		{"blank string", "  ", "0"},
		{"double", 250.25, "250.25"},
		{"int32", int32(40), "40"},
		{"int64", int64(7000), "7000"},
		{"decimal128", d128, "99.95"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.M{"amount": tt.value})
			require.NoError(t, err)

			var got amountHolder
			require.NoError(t, bson.Unmarshal(raw, &got))
			assert.Equal(t, tt.want, got.Amount.String())
		})
	}
}

func TestAmountRejectsNonNumericString(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"amount": "abc"})
	require.NoError(t, err)

	var got amountHolder
	assert.Error(t, bson.Unmarshal(raw, &got))
}

func TestAmountStoredAsDecimal128(t *testing.T) {
	raw, err := bson.Marshal(amountHolder{Amount: NewAmount(decimal.RequireFromString("12.30"))})
	require.NoError(t, err)

	value := bson.Raw(raw).Lookup("amount")
	assert.Equal(t, bson.TypeDecimal128, value.Type)
}

func TestAmountJSON(t *testing.T) {
	out, err := json.Marshal(NewAmount(decimal.NewFromInt(1500)))
	require.NoError(t, err)
	assert.Equal(t, `"1500.00"`, string(out))

	var back Amount
	require.NoError(t, json.Unmarshal([]byte(`"1500.5"`), &back))
	assert.True(t, back.Equal(decimal.RequireFromString("1500.5")))

	require.NoError(t, json.Unmarshal([]byte(`42`), &back))
	assert.True(t, back.Equal(decimal.NewFromInt(42)))
}
