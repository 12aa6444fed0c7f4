package match

import "errors"

var (
	// ErrRequestShape means the caller sent malformed input.
	ErrRequestShape = errors.New("request shape error")
	// ErrDataSource means the job title store could not be read.
	ErrDataSource = errors.New("data source error")
	// ErrMatchOracle means the oracle call failed or returned a non-conforming answer.
	ErrMatchOracle = errors.New("match oracle error")
)

// Kind returns the taxonomy error wrapped by err, or nil when err is not classified.
func Kind(err error) error {
	for _, kind := range []error{ErrRequestShape, ErrDataSource, ErrMatchOracle} {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return nil
}
