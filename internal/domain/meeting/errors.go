package meeting

import (
	"errors"
	"fmt"

	"github.com/okian/meetglobe/internal/domain/model"
)

// Sentinel kinds for meeting registry errors.
var (
	ErrMeetingNotFound = fmt.Errorf("meeting %w", model.ErrNotFound)
	ErrIDExhausted     = errors.New("meeting id suffixes exhausted")
)
