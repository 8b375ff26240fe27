package model

import "time"

// Authorization is a resale authorization record from the BSMI open-data
// feed. The whole table is replaced on each import run; rows are never
// updated individually.
//
// CertificateID references a Certificate by number only. The feed and the
// registration pages are maintained independently, so the reference is not
// enforced as a foreign key.
type Authorization struct {
	// ID is the authorization certificate number (授權證號).
	// Rows without an ID are invalid and dropped at import time.
	ID string `json:"id"`

	// CertificateID is the referenced certificate number (證書編號).
	CertificateID string `json:"certificateId"`

	// AuthorizerName is the authorizing vendor's name (授權人名稱).
	AuthorizerName string `json:"authorizerName"`

	// MainModel is the authorized main model number (主型式).
	MainModel string `json:"mainModel"`

	// AuthorizeeTaxID is the authorizee's unified business number (被授權人統編).
	AuthorizeeTaxID string `json:"authorizeeTaxId"`

	// AuthorizeeName is the authorizee's name (被授權人名稱).
	AuthorizeeName string `json:"authorizeeName"`

	// AuthorizeeAddr is the authorizee's address (被授權人地址).
	AuthorizeeAddr string `json:"authorizeeAddr"`

	// AuthorizeePhone is the authorizee's phone number (被授權人電話).
	AuthorizeePhone string `json:"authorizeePhone"`

	// ValidDate is the authorization validity period exactly as printed
	// by the source (授權有效時間).
	ValidDate string `json:"validDate"`

	// CreatedAt is when the row was imported.
	CreatedAt time.Time `json:"createdAt"`
}

// IsValid reports whether the record carries the mandatory authorization
// certificate number.
func (a *Authorization) IsValid() bool {
	return a.ID != ""
}
