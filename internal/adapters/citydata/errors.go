package citydata

import "errors"

// Sentinel kinds for city dataset errors.
var (
	ErrReadDataset  = errors.New("read city dataset")
	ErrQueryDataset = errors.New("query city dataset")
)
