package service

import "time"

// nowFunc is swapped in tests to pin the clock.
var nowFunc = time.Now
