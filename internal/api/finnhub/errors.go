package finnhub

import "fmt"

// DataShapeError reports a payload that decoded but did not carry the
// expected keys, or did not decode at all. Retrying the identical request
// cannot fix it, so callers treat it as permanent and skip the ticker.
type DataShapeError struct {
	Endpoint string
	Detail   string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("unexpected payload from %s: %s", e.Endpoint, e.Detail)
}
