package stockexception

import "errors"

var ErrNotFound = errors.New("stock exception not found")
