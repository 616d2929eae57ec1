package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ersonp/lineage-core/internal/domain/entities"
)

func TestDateSortKey(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"", 0},
		{"unknown", 0},
		{"1850", 18500000},
		{"abt 1850", 18500000},
		{"May 1850", 18500500},
		{"5 May 1850", 18500505},
		{"bef 12 JAN 1901", 19010112},
		{"1850-05-05", 18500505},
		{"1850-05", 18500500},
		{"Sept. 3, 1799", 17990903},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, dateSortKey(tt.date))
		})
	}
}

func TestByDate(t *testing.T) {
	early := &entities.FactHandle{Date: "1 Jan 1800"}
	late := &entities.FactHandle{Date: "1900"}
	undated := &entities.FactHandle{}

	assert.True(t, ByDate(early, late))
	assert.False(t, ByDate(late, early))
	assert.True(t, ByDate(late, undated))
	assert.False(t, ByDate(undated, late))
	assert.False(t, ByDate(undated, undated))
}
