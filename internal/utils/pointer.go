package utils

// Ptr returns a pointer to v, for filling optional fields from literals.
//
//	params := ai.Params{Temperature: utils.Ptr(0.2)}
func Ptr[T any](v T) *T {
	return &v
}
