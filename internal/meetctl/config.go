package meetctl

import (
	"fmt"
	"time"
)

// Config holds the settings of a load run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Meetings int           // Number of meetings to create
	Size     int           // Participants per meeting
	Workers  int           // Concurrent requests
	Timeout  time.Duration // HTTP request timeout
	Seed     uint64        // Roster generator seed
	Cleanup  bool          // Delete created meetings afterwards
	Verbose  bool
}

// Validate checks the run settings.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: url is required", ErrUsage)
	case c.Meetings < 1:
		return fmt.Errorf("%w: meetings must be positive", ErrUsage)
	case c.Size < 1:
		return fmt.Errorf("%w: size must be positive", ErrUsage)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be positive", ErrUsage)
	}
	return nil
}

// Stats holds load run statistics.
type Stats struct {
	MeetingsCreated int
	MeetingsFailed  int
	Warnings        int
	Visualizations  int
	Points          int
	Arcs            int
	MeetingsDeleted int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
