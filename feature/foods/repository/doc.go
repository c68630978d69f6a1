// Package repository reads the food database through GORM.
//
// Repository implements index.DataLoader for the worker, attributes.Source for
// the attribute resolver and index.LocaleResolver for the gateway. Multi-query
// reads run in one transaction so a rebuild sees a single snapshot per call.
package repository
