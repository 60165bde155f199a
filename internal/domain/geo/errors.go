package geo

import (
	"errors"
	"fmt"

	"github.com/okian/meetglobe/internal/domain/model"
)

// Sentinel kinds for resolver errors.
var (
	ErrCityNotFound = fmt.Errorf("city %w", model.ErrNotFound)
	ErrLoadCities   = errors.New("load city dataset failed")
)
