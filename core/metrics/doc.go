// Package metrics declares the Prometheus collectors of the food index service.
//
// Collectors are package-level vectors so any component can record without
// plumbing a registry through constructors. Register attaches them to a registry;
// the start command exposes that registry on /metrics.
package metrics
