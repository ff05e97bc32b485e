// Package domain – activity projection and wire enumerations.
//
// The activity log is a derived, read-only union of the query and error
// event tables. Rows are merged at read time and never written directly;
// ActivityRecord is the tagged wire shape a merged row is rendered as.
package domain

// Transport identifies how a DNS request reached the resolver. The
// numeric values are part of the wire and storage format and must not be
// reordered.
type Transport int

// Transport wire values.
const (
	TransportUDP Transport = iota
	TransportTCP
	TransportDoT
	TransportDoH
	TransportDoQ
)

// String returns the conventional short name for the transport.
func (t Transport) String() string {
	switch t {
	case TransportUDP:
		return "UDP"
	case TransportTCP:
		return "TCP"
	case TransportDoT:
		return "DoT"
	case TransportDoH:
		return "DoH"
	case TransportDoQ:
		return "DoQ"
	default:
		return "unknown"
	}
}

// Valid reports whether t is one of the defined transport values.
func (t Transport) Valid() bool { return t >= TransportUDP && t <= TransportDoQ }

// Activity record kinds.
const (
	ActivityKindQuery = "query"
	ActivityKindError = "error"
)

// ActivityRow is one row of the activity_log database view: the superset
// of both event tables plus the kind discriminator. Columns absent from a
// row's source table are NULL.
type ActivityRow struct {
	TS           int64     `gorm:"column:ts_ms"`
	Kind         string    `gorm:"column:kind"`
	SourceID     int64     `gorm:"column:source_id"`
	Transport    Transport `gorm:"column:transport"`
	Client       string    `gorm:"column:client"`
	DurMS        int64     `gorm:"column:dur_ms"`
	QName        *string   `gorm:"column:qname"`
	QType        *int      `gorm:"column:qtype"`
	RCode        *int      `gorm:"column:rcode"`
	Blocked      *bool     `gorm:"column:blocked"`
	CacheHit     *bool     `gorm:"column:cache_hit"`
	ErrorType    *int      `gorm:"column:error_type"`
	ErrorMessage *string   `gorm:"column:error_message"`
}

// TableName maps ActivityRow onto the activity_log view.
func (ActivityRow) TableName() string { return "activity_log" }

// ActivityRecord is the normalized wire shape of one activity row: shared
// base fields plus a kind-specific payload under "d" (either
// *ActivityQuery or *ActivityError, matching Kind).
type ActivityRecord struct {
	Timestamp int64     `json:"timestamp"`
	Transport Transport `json:"transport"`
	Client    string    `json:"client,omitempty"`
	Duration  int64     `json:"duration"`
	QName     *string   `json:"qname,omitempty"`
	QType     *int      `json:"qtype,omitempty"`
	Kind      string    `json:"kind"`
	D         any       `json:"d"`
}

// ActivityQuery is the payload of a kind=query record.
type ActivityQuery struct {
	SourceID int64 `json:"source_id"`
	RCode    int   `json:"rcode"`
	Blocked  bool  `json:"blocked"`
	CacheHit bool  `json:"cache_hit"`
}

// ActivityError is the payload of a kind=error record.
type ActivityError struct {
	SourceID  int64  `json:"source_id"`
	ErrorType int    `json:"error_type"`
	Message   string `json:"message"`
}
