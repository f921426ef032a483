package utils

// IfErrReturn runs fns in order and stops at the first error.
func IfErrReturn(fns ...func() error) error {
	for _, fn := range fns {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}
