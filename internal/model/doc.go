// Package model defines the core domain types for bsmiweb.
//
// The central types are:
//   - Mark: an immutable value object for a BSMI registration mark code
//     (e.g. "R45879"), with validation and normalization
//   - Registration: a vendor record scraped from the BSMI lookup service,
//     owning zero or more Certificates
//   - Certificate: a product certificate belonging to one Registration
//   - Authorization: a resale authorization record from the BSMI open-data
//     feed, loosely referencing a Certificate by certificate number
//
// Types in this package carry no persistence or network behavior; they are
// shared between the scraper, the store, and the HTTP surface.
package model
