package acl

import "github.com/Kyz7/limitless/internal/models"

// Reducer folds two permission values into one. Reducers must be
// commutative and associative so the role order never matters.
type Reducer func(a, b int) int

// Greater lets the strongest grant win.
func Greater(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// GreaterOrZero is Greater for limits where 0 means "no limit": any role
// granting 0 overrides every numeric limit.
func GreaterOrZero(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return Greater(a, b)
}

// Lower lets the most restrictive value win.
func Lower(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Reduce folds key of every fragment into acc. Fragments without the key
// don't take part.
func Reduce(acc int, fragments []models.ACLFragment, key string, reducer Reducer) int {
	for _, f := range fragments {
		if v, ok := f[key]; ok {
			acc = reducer(acc, v)
		}
	}
	return acc
}

// ReduceFound folds key across the fragments that carry it, starting from
// the first carrier. found is false when no fragment carries key, so
// reducers without a neutral element such as GreaterOrZero never see a
// seed value.
func ReduceFound(fragments []models.ACLFragment, key string, reducer Reducer) (value int, found bool) {
	for _, f := range fragments {
		v, ok := f[key]
		if !ok {
			continue
		}
		if !found {
			value, found = v, true
			continue
		}
		value = reducer(value, v)
	}
	return value, found
}
