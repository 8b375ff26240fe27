// Package importer loads the resale authorization open-data feed into the
// local store.
//
// The feed is one large XML document downloaded from the government
// open-data portal. Each <row> element carries the authorization fields as
// Chinese-named child tags; rows missing the mandatory authorization
// certificate number are dropped. The store's authorization table is
// replaced in full on every run, so an import is an all-or-nothing
// snapshot swap.
package importer
