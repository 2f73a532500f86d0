package utils

func Must(err error) {
	if err != nil {
		panic(err)
	}
}

func PointerOf[T any](v T) *T {
	return &v
}
