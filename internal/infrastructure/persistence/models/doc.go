// Package models contains the GORM persistence models of the point-of-sale
// tables. Domain aggregates stay free of ORM tags; the models convert to and
// from the aggregates' snapshots.
//
//   - base.go: common aggregate columns
//   - catalog.go: products
//   - partner.go: customers
//   - invoicing.go: invoices, invoice lines and payments
//   - sequence.go: identifier sequences
package models
