package member

import (
	"errors"
	"fmt"

	"github.com/okian/meetglobe/internal/domain/model"
)

// Sentinel kinds for member registry errors.
var (
	ErrMemberNotFound = fmt.Errorf("member %w", model.ErrNotFound)
	ErrCorruptRecord  = errors.New("corrupt members record")
)
