package siteprofit

import "errors"

var (
	ErrSiteProfitUnavailable = errors.New("site profit could not be computed")
)
