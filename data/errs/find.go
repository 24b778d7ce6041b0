package errs

func InvalidPath(err error, path string) error {
	return newError(err, "invalid path '%s' detected", path)
}

func OpenDirectory(err error, path string) error {
	return newError(err, "unable to open directory '%s'", path)
}

func StatPath(err error, path string) error {
	return newError(err, "unable to stat '%s'", path)
}

func VisitorAborted(err error, path string) error {
	return newError(err, "visitor aborted traversal at '%s'", path)
}
