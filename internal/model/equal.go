package model

import (
	"bytes"
	"encoding/json"
)

// Equal reports whether two reviews are semantically equal: same field
// values and same activity order, independent of formatting. It
// compares canonical JSON images, which collapses the distinctions the
// wire forms do not preserve (nil versus empty collections, integral
// versus floating metadata scalars, map key order).
func Equal(a, b *Review) bool {
	return canonEqual(a, b)
}

// ActivityEqual is Equal over a single activity, replies included.
func ActivityEqual(a, b *Activity) bool {
	return canonEqual(a, b)
}

// PayloadEqual compares two activities ignoring their replies. Replies
// are independent log entries, so the merge engine treats them
// separately from the parent's own immutable payload.
func PayloadEqual(a, b *Activity) bool {
	ca, cb := *a, *b
	ca.Replies, cb.Replies = nil, nil
	return canonEqual(&ca, &cb)
}

func canonEqual(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}
