package checks

import (
	"context"

	"food-index/feature/foods/attributes"
)

// DefaultsSource reads the global attribute defaults. nil means no row.
type DefaultsSource interface {
	Defaults(ctx context.Context) (*attributes.InheritableAttributes, error)
}

// DefaultsReport tells whether attribute resolution can terminate.
type DefaultsReport struct {
	Present  bool                              `json:"present"`
	Rows     int64                             `json:"rows"`
	Unique   bool                              `json:"unique"`
	Defaults *attributes.InheritableAttributes `json:"defaults,omitempty"`
}

// CheckDefaults reads the attribute defaults row. Sources that can count rows
// also report whether exactly one exists.
func CheckDefaults(ctx context.Context, src DefaultsSource) (*DefaultsReport, error) {
	d, err := src.Defaults(ctx)
	if err != nil {
		return nil, err
	}
	report := &DefaultsReport{Present: d != nil, Defaults: d}
	if d != nil {
		report.Rows = 1
	}
	if counter, ok := src.(attributes.DefaultsCounter); ok {
		if report.Rows, err = counter.CountDefaults(ctx); err != nil {
			return nil, err
		}
	}
	report.Unique = report.Rows == 1
	return report, nil
}
