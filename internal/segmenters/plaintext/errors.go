package plaintext

import "errors"

var errInvalidUTF8 = errors.New("file is not valid UTF-8 text")
