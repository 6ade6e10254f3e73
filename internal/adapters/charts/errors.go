package charts

import "errors"

// ErrNothingToRender is returned when a dashboard has no data to draw.
var ErrNothingToRender = errors.New("nothing to render")
