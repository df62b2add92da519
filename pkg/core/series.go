package core

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"golang.org/x/exp/constraints"
)

// Series is a time series of ordered values
type Series[T constraints.Ordered] []T

// Values returns the underlying slice of values
func (s Series[T]) Values() []T {
	return s
}

// Length returns the number of values in the series
func (s Series[T]) Length() int {
	return len(s)
}

// Last returns the value at a specified position from the end
// position 0 is the last value, 1 is the second-to-last, etc.
func (s Series[T]) Last(position int) T {
	return s[len(s)-1-position]
}

// LastValues returns a slice with the last 'size' values
// If size exceeds the length, returns the entire series
func (s Series[T]) LastValues(size int) Series[T] {
	if l := len(s); l > size {
		return s[l-size:]
	}
	return s
}

// NullFloat is a measurement that may be absent
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a present value
func Float(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// Null returns an absent value
func Null() NullFloat {
	return NullFloat{}
}

// Usable reports whether the value is present and is a number
func (n NullFloat) Usable() bool {
	return n.Valid && !math.IsNaN(n.Float64)
}

// Ptr returns the value as a pointer, nil when absent
func (n NullFloat) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// FromPtr converts a nullable pointer into a NullFloat
func FromPtr(v *float64) NullFloat {
	if v == nil {
		return Null()
	}
	return Float(*v)
}

// MarshalJSON encodes absent values as null
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Usable() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.Float64, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a number or null
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = Null()
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*n = Float(v)
	return nil
}

// NullSeries is a sequence of samples where absent positions carry no value
type NullSeries []NullFloat

// NullSeriesOf builds a series of length n with every position absent
func NullSeriesOf(n int) NullSeries {
	return make(NullSeries, n)
}

// Valid returns the usable values together with their original positions
func (s NullSeries) Valid() (values []float64, positions []int) {
	values = make([]float64, 0, len(s))
	positions = make([]int, 0, len(s))
	for i, v := range s {
		if v.Usable() {
			values = append(values, v.Float64)
			positions = append(positions, i)
		}
	}
	return values, positions
}

// Count returns the number of usable values
func (s NullSeries) Count() int {
	count := 0
	for _, v := range s {
		if v.Usable() {
			count++
		}
	}
	return count
}
