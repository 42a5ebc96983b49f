package app

import (
	"time"

	"github.com/ringside-hq/ringside/internal/domain"
)

// systemClock reads the wall clock in UTC.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the production clock.
func SystemClock() domain.Clock { return systemClock{} }
