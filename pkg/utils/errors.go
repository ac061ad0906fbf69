package utils

// PanicIfNeeded hands err to the Recovery middleware, which renders it.
func PanicIfNeeded(err any) {
	if err != nil {
		panic(err)
	}
}
