package anvil

import (
	"encoding/json"
)

// Cast is a PDF template and its field metadata.
type Cast struct {
	Eid       string          `json:"eid"`
	Title     string          `json:"title"`
	Name      string          `json:"name,omitempty"`
	FieldInfo json.RawMessage `json:"fieldInfo,omitempty"`
}

// Forge is a single webform inside a weld.
type Forge struct {
	Eid  string `json:"eid"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// Weld is a workflow grouping one or more forges.
type Weld struct {
	Eid    string  `json:"eid"`
	Slug   string  `json:"slug"`
	Name   string  `json:"name,omitempty"`
	Title  string  `json:"title,omitempty"`
	Forges []Forge `json:"forges,omitempty"`
}

// Organization groups casts and welds under one account.
type Organization struct {
	Eid   string `json:"eid"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Casts []Cast `json:"casts,omitempty"`
	Welds []Weld `json:"welds,omitempty"`
}

// User is the credential's owning account.
type User struct {
	Eid           string         `json:"eid"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Role          string         `json:"role,omitempty"`
	Organizations []Organization `json:"organizations,omitempty"`
}

// PacketSigner is a signer as reported by the API after packet creation.
type PacketSigner struct {
	Eid            string `json:"eid"`
	AliasID        string `json:"aliasId,omitempty"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Status         string `json:"status,omitempty"`
	RoutingOrder   int    `json:"routingOrder,omitempty"`
	SignActionType string `json:"signActionType,omitempty"`
}

// DocumentGroup is the set of documents produced by a packet or fill.
type DocumentGroup struct {
	ID      string          `json:"id"`
	Eid     string          `json:"eid"`
	Status  string          `json:"status,omitempty"`
	Files   json.RawMessage `json:"files,omitempty"`
	Signers []PacketSigner  `json:"signers,omitempty"`
}

// EtchPacket is a created signature packet.
type EtchPacket struct {
	Eid           string         `json:"eid"`
	Name          string         `json:"name"`
	Status        string         `json:"status,omitempty"`
	DetailsURL    string         `json:"detailsURL,omitempty"`
	CreatedAt     Timestamp      `json:"createdAt,omitempty"`
	DocumentGroup *DocumentGroup `json:"documentGroup,omitempty"`
}

// ForgeSubmission is a created or updated webform submission.
type ForgeSubmission struct {
	Eid       string          `json:"eid"`
	Status    string          `json:"status,omitempty"`
	CreatedAt Timestamp       `json:"createdAt,omitempty"`
	Payload   json.RawMessage `json:"payloadValue,omitempty"`
}

// FileDownload is a binary response: raw bytes plus the content type the
// server declared, never re-encoded.
type FileDownload struct {
	Data        []byte
	ContentType string
}

// PageInfo is the cursor state of a paginated list. The cursor is opaque
// and only valid for the query that produced it.
type PageInfo struct {
	EndCursor   string `json:"endCursor"`
	HasNextPage bool   `json:"hasNextPage"`
}

// EtchPacketPage is one page of a packet listing.
type EtchPacketPage struct {
	Packets  []EtchPacket `json:"items"`
	PageInfo PageInfo     `json:"pageInfo"`

	// options that produced this page, replayed to fetch the next one.
	opts ListEtchPacketsOptions
}

// HasNextPage reports whether the server claims more pages exist.
func (p *EtchPacketPage) HasNextPage() bool {
	return p.PageInfo.HasNextPage
}
