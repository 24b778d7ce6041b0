package errs

func BuilderClosed(err error) error {
	return newError(err, "builder already closed")
}

func DuplicateMember(err error, key string) error {
	return newError(err, "member '%s' already archived", key)
}

func WriteMember(err error, key string) error {
	return newError(err, "unable to write member '%s'", key)
}

func CatalogUnavailable(err error, name string) error {
	return newError(err, "catalog '%s' unavailable", name)
}

func SinkUnavailable(err error, name string) error {
	return newError(err, "sink '%s' unavailable", name)
}
