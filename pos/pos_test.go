package pos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Position_ShiftColumn(t *testing.T) {
	testCases := []struct {
		name    string
		start   Position
		delta   int
		expect  Position
		wantErr bool
	}{
		{name: "shift right", start: Position{Byte: 4, Line: 1, Col: 5}, delta: 2, expect: Position{Byte: 6, Line: 1, Col: 7}},
		{name: "shift left", start: Position{Byte: 4, Line: 1, Col: 5}, delta: -2, expect: Position{Byte: 2, Line: 1, Col: 3}},
		{name: "underflow", start: Position{Byte: 0, Line: 1, Col: 1}, delta: -1, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := tc.start.ShiftColumn(tc.delta)
			if tc.wantErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.True(tc.expect.Equal(actual), "expected %s, got %s", tc.expect, actual)
		})
	}
}

func Test_Span_Merge(t *testing.T) {
	assert := assert.New(t)

	a := Span{Start: Position{Byte: 2, Line: 1, Col: 3}, Length: 3} // [2,5)
	b := Span{Start: Position{Byte: 4, Line: 1, Col: 5}, Length: 4} // [4,8)

	merged := Merge(a, b)
	assert.Equal(2, merged.Start.Byte)
	assert.Equal(6, merged.Length)
	assert.Equal(8, merged.End())
}

func Test_Span_Contains(t *testing.T) {
	assert := assert.New(t)

	s := Span{Start: Position{Byte: 10, Line: 2, Col: 1}, Length: 5}
	assert.True(s.Contains(10))
	assert.True(s.Contains(14))
	assert.False(s.Contains(15))
	assert.False(s.Contains(9))
}

func Test_PositionAt(t *testing.T) {
	assert := assert.New(t)

	// "ab\ncd\nef" -> newlines at byte offsets 2 and 5
	newlineOffsets := []int{2, 5}

	assert.Equal(Position{Byte: 0, Line: 1, Col: 1}, PositionAt(0, newlineOffsets))
	assert.Equal(Position{Byte: 1, Line: 1, Col: 2}, PositionAt(1, newlineOffsets))
	assert.Equal(Position{Byte: 3, Line: 2, Col: 1}, PositionAt(3, newlineOffsets))
	assert.Equal(Position{Byte: 4, Line: 2, Col: 2}, PositionAt(4, newlineOffsets))
	assert.Equal(Position{Byte: 6, Line: 3, Col: 1}, PositionAt(6, newlineOffsets))
}
