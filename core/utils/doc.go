// Package utils holds loose value conversions shared by the HTTP handlers and
// the sheets client: query parameters to int or bool, grid cells to text.
package utils
