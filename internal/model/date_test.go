package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    Date
		wantErr bool
	}{
		{input: "01/02/24", want: NewDate(2024, time.February, 1)},
		{input: "1-2-2024", want: NewDate(2024, time.February, 1)},
		{input: "01.02.24", want: NewDate(2024, time.February, 1)},
		{input: "05 01 24", want: NewDate(2024, time.January, 5)},
		{input: "2024-03-05", want: NewDate(2024, time.March, 5)},
		{input: " 29/02/24 ", want: NewDate(2024, time.February, 29)},
		{input: "31/02/24", wantErr: true},
		{input: "13/13/24", wantErr: true},
		{input: "00/01/24", wantErr: true},
		{input: "ayer", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDatePtr(t *testing.T) {
	assert.Nil(t, ParseDatePtr("no es fecha"))
	d := ParseDatePtr("15/01/24")
	require.NotNil(t, d)
	assert.Equal(t, "15/01/24", d.String())
}

func TestDateJSON(t *testing.T) {
	record := ExpenseRecord{
		Date:        ParseDatePtr("2024-01-15"),
		Description: "Devoto",
		Currency:    CurrencyUYU,
		Category:    CategoryFood,
		Amount:      450,
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"15/01/24","description":"Devoto","currency":"UYU","category":"Alimentación","amount":450}`, string(data))

	var decoded ExpenseRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, record, decoded)

	var bad Date
	assert.Error(t, json.Unmarshal([]byte(`20240115`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`"31/02/24"`), &bad))
}

func TestExpenseRecordWithoutDate(t *testing.T) {
	data, err := json.Marshal(ExpenseRecord{Description: "Taxi", Currency: CurrencyUYU, Category: CategoryTransport, Amount: 300})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "date")
}
