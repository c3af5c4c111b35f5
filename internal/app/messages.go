package app

import "time"

// TickMsg triggers a frame update.
type TickMsg time.Time
