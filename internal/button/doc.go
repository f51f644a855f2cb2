// Package button defines the closed set of pad buttons and the Set value
// that represents which of them are held during one tick.
//
// Key constraints:
//   - Buttons are symbolic. No transport bit layout is exposed here.
//   - Set is a value type; every operation returns a new Set.
//   - Holding an already-held button is a no-op, never a toggle.
package button
