package dashboard

import "errors"

var (
	ErrSiteNotFound     = errors.New("site not found")
	ErrInvalidDateRange = errors.New("from date must not be after to date")
)
