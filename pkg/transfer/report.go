package transfer

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Skip records an attribute that could not be copied.
type Skip struct {
	Attribute string
	Err       error
}

// Report describes what a transfer did. A transfer that returns a Report
// has matched types; individual attributes may still have been skipped.
type Report struct {
	// Type is the full name of the transferred type.
	Type string

	// Copied lists the attributes written on the destination, by the name
	// of the attribute that was actually written.
	Copied []string

	// Renamed maps source attribute names to the replacement used.
	Renamed map[string]string

	// Skipped lists attributes whose read or write failed.
	Skipped []Skip
}

// OK reports whether every copyable attribute was written.
func (r *Report) OK() bool {
	return r != nil && len(r.Skipped) == 0
}

// Err returns the skipped attributes as one aggregated error, or nil.
func (r *Report) Err() error {
	if r == nil || len(r.Skipped) == 0 {
		return nil
	}
	var result *multierror.Error
	for _, s := range r.Skipped {
		result = multierror.Append(result, s.Err)
	}
	return result.ErrorOrNil()
}

// String summarises the report.
func (r *Report) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: copied %d, renamed %d, skipped %d", r.Type, len(r.Copied), len(r.Renamed), len(r.Skipped))
}

func (r *Report) skip(attribute string, err error) {
	r.Skipped = append(r.Skipped, Skip{Attribute: attribute, Err: err})
}

func (r *Report) rename(from, to string) {
	if r.Renamed == nil {
		r.Renamed = make(map[string]string)
	}
	r.Renamed[from] = to
}
