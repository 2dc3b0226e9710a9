// Package format renders sizes and short lists for human-readable output.
//
// Sizes use binary units with two decimals ("1.50 MiB"); anything below one
// KiB is printed as a whole number of bytes.
package format
