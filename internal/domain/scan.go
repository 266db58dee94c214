package domain

import "time"

// ScanRecord is one analytics event capturing a single resolution of a short
// link. It is write-only from the redirect path: built after a successful
// lookup, handed to the scan store, never read back.
//
// DestinationURL is denormalized on purpose: it records where the visitor
// was actually sent, independent of any later change to the link record.
type ScanRecord struct {
	LinkID             string    `json:"link_id"`
	OccurredAt         time.Time `json:"occurred_at"`
	SourceAddress      string    `json:"source_address,omitempty"`
	RawClientSignature string    `json:"user_agent,omitempty"`
	Referrer           string    `json:"referrer,omitempty"`
	DestinationURL     string    `json:"destination_url"`

	// Geo and Client are nil when the corresponding enrichment produced
	// no data. A nil substructure is the single "no data" state; it is
	// persisted as NULL columns.
	Geo    *GeoInfo         `json:"geo,omitempty"`
	Client *ClientSignature `json:"client_signature,omitempty"`
}

// GeoInfo is an approximate location derived from the source address.
// Individual fields may be empty when the provider omits them.
type GeoInfo struct {
	Country   string  `json:"country,omitempty"`
	Region    string  `json:"region,omitempty"`
	City      string  `json:"city,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// ClientSignature is the parsed form of a raw User-Agent string. Fields the
// parser cannot determine are empty strings and persist as NULL.
type ClientSignature struct {
	BrowserName    string `json:"browser_name,omitempty"`
	BrowserVersion string `json:"browser_version,omitempty"`
	OSName         string `json:"os_name,omitempty"`
	OSVersion      string `json:"os_version,omitempty"`
	DeviceType     string `json:"device_type,omitempty"`
	DeviceVendor   string `json:"device_vendor,omitempty"`
	DeviceModel    string `json:"device_model,omitempty"`
}
