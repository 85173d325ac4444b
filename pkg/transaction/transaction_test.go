package transaction

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_Add(t *testing.T) {
	l := &List{}

	r := Record{
		ID:    1,
		Name:  "Coffee",
		Price: decimal.RequireFromString("3.50"),
		Date:  "01 Jan 2024",
	}

	l.Add(r)

	assert.Equal(t, 1, len(l.Records))
	assert.Equal(t, int64(1), l.Records[0].ID)
	assert.Equal(t, "Coffee", l.Records[0].Name)
}

func TestList_FindAndRemove(t *testing.T) {
	l := NewList([]Record{
		{ID: 1, Name: "Coffee", Price: decimal.RequireFromString("3.50"), Date: "d1"},
		{ID: 2, Name: "Bread", Price: decimal.RequireFromString("2.25"), Date: "d2"},
		{ID: 3, Name: "Milk", Price: decimal.RequireFromString("1.10"), Date: "d3"},
	})

	r, ok := l.Find(2)
	require.True(t, ok)
	r.Name = "Rye bread"
	assert.Equal(t, "Rye bread", l.Records[1].Name)

	_, ok = l.Find(9)
	assert.False(t, ok)

	assert.True(t, l.Remove(2))
	assert.False(t, l.Remove(2))
	require.Len(t, l.Records, 2)
	assert.Equal(t, int64(1), l.Records[0].ID)
	assert.Equal(t, int64(3), l.Records[1].ID)
}

func TestList_MaxIDAndTotal(t *testing.T) {
	l := &List{}
	assert.Equal(t, int64(0), l.MaxID())
	assert.True(t, l.Total().IsZero())

	l.Add(Record{ID: 7, Price: decimal.RequireFromString("0.10")})
	l.Add(Record{ID: 3, Price: decimal.RequireFromString("0.20")})

	assert.Equal(t, int64(7), l.MaxID())
	assert.Equal(t, "0.3", l.Total().String())

	negative := NewList([]Record{{ID: -8}, {ID: -5}})
	assert.Equal(t, int64(-5), negative.MaxID())
}

func TestList_Snapshot(t *testing.T) {
	l := NewList([]Record{{ID: 1, Name: "Coffee"}})

	snap := l.Snapshot()
	snap[0].Name = "changed"

	assert.Equal(t, "Coffee", l.Records[0].Name)
}
