package brew

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"
	"time"
)

type orderClass int

const (
	classNone orderClass = iota
	classInt
	classFloat
	classString
	classTime
)

var (
	timeType   = reflect.TypeFor[time.Time]()
	bigIntType = reflect.TypeFor[*big.Int]()
)

func classify(v any) orderClass {
	if v == nil {
		return classNone
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return classInt
	case reflect.Float32, reflect.Float64:
		return classFloat
	case reflect.String:
		return classString
	}
	switch rv.Type() {
	case timeType:
		return classTime
	case bigIntType:
		if rv.IsNil() {
			return classNone
		}
		return classInt
	}
	return classNone
}

func isOrderable(v any) bool {
	return classify(v) != classNone
}

// compare orders a against b. ordered is false when either side is NaN.
// Operands of different classes (other than int against float) are a type
// error reported as ErrIncomparable.
func compare(a, b any) (c int, ordered bool, err error) {
	ca, cb := classify(a), classify(b)
	numeric := func(c orderClass) bool { return c == classInt || c == classFloat }

	switch {
	case numeric(ca) && numeric(cb):
		return compareNumbers(a, b, ca, cb)
	case ca == classString && cb == classString:
		return strings.Compare(reflect.ValueOf(a).String(), reflect.ValueOf(b).String()), true, nil
	case ca == classTime && cb == classTime:
		return a.(time.Time).Compare(b.(time.Time)), true, nil
	default:
		return 0, false, fmt.Errorf("%w: cannot order %T against %T", ErrIncomparable, a, b)
	}
}

func compareNumbers(a, b any, ca, cb orderClass) (int, bool, error) {
	if ca == classInt && cb == classInt {
		return toBigInt(a).Cmp(toBigInt(b)), true, nil
	}
	fa, fb := toBigFloat(a, ca), toBigFloat(b, cb)
	if fa == nil || fb == nil {
		return 0, false, nil
	}
	return fa.Cmp(fb), true, nil
}

func toBigInt(v any) *big.Int {
	if x, ok := v.(*big.Int); ok {
		return x
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int())
	default:
		return new(big.Int).SetUint64(rv.Uint())
	}
}

// toBigFloat returns nil for NaN. Infinities are kept.
func toBigFloat(v any, c orderClass) *big.Float {
	if c == classInt {
		return new(big.Float).SetInt(toBigInt(v))
	}
	f := reflect.ValueOf(v).Float()
	if math.IsNaN(f) {
		return nil
	}
	return big.NewFloat(f)
}
