// Package utils holds the low-level helpers shared by the codec, dispatch
// and server packages: provider HTTP sends ([DoSync], [DoStream]), the
// Server-Sent Events reader ([SSEScanner]) and small string and pointer
// helpers.
package utils
