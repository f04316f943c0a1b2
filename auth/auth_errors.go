package auth

import "errors"

var (
	MissingTokensErr = errors.New("auth response did not include an access token")
)
