// Package models contains the GORM models of the food database read by the
// index and the attribute resolver.
//
// Ids are numeric in the database and travel as decimal strings through the
// index and the API.
package models
