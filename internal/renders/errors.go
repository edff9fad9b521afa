package renders

import "errors"

// ErrBadRequest means the request carried no usable HTML.
var ErrBadRequest = errors.New("HTML content missing")
