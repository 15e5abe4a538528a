package model

// Body record types
const (
	BodyTypeWeight = "weight"
)

// IntakeRecord is one day of water intake. There is at most one per day per user.
type IntakeRecord struct {
	ID    string       `json:"id"`
	Date  string       `json:"date"` // YYYY-MM-DD
	Value float64      `json:"value"`
	Goal  float64      `json:"goal"`
	Times []IntakeTime `json:"times,omitempty"`
}

// IntakeTime is a single drink logged within an intake day.
type IntakeTime struct {
	ID        string  `json:"id"`
	Value     float64 `json:"value"`
	CreatedAt string  `json:"createdAt"`
}

// FastingRecord is a completed fasting session. Sessions are append-only.
type FastingRecord struct {
	ID             string `json:"id"`
	StartTimeStamp int64  `json:"startTimeStamp"` // epoch milliseconds
	EndTimeStamp   int64  `json:"endTimeStamp"`   // epoch milliseconds
	PlanName       string `json:"planName"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

// BodyRecord is a body measurement. Weight records are kept one per day.
type BodyRecord struct {
	ID        string  `json:"id"`
	Value     float64 `json:"value"`
	Type      string  `json:"type"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// Metadata is the user's locally cached profile and record collections.
type Metadata struct {
	CurrentWeight  float64         `json:"currentWeight"`
	Height         float64         `json:"height,omitempty"` // centimetres
	WaterRecords   []IntakeRecord  `json:"waterRecords"`
	BodyRecords    []BodyRecord    `json:"bodyRecords"`
	FastingRecords []FastingRecord `json:"fastingRecords"`
}

// Clone returns a deep copy so callers can read without holding the store lock.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return &Metadata{}
	}
	out := *m
	out.WaterRecords = make([]IntakeRecord, len(m.WaterRecords))
	for i, r := range m.WaterRecords {
		r.Times = append([]IntakeTime(nil), r.Times...)
		out.WaterRecords[i] = r
	}
	out.BodyRecords = append([]BodyRecord(nil), m.BodyRecords...)
	out.FastingRecords = append([]FastingRecord(nil), m.FastingRecords...)
	return &out
}

// MetadataPatch is a partial metadata update; nil fields are left untouched.
type MetadataPatch struct {
	CurrentWeight  *float64
	Height         *float64
	WaterRecords   []IntakeRecord
	BodyRecords    []BodyRecord
	FastingRecords []FastingRecord
}

// Apply merges the non-nil fields of p into m.
func (p MetadataPatch) Apply(m *Metadata) {
	if p.CurrentWeight != nil {
		m.CurrentWeight = *p.CurrentWeight
	}
	if p.Height != nil {
		m.Height = *p.Height
	}
	if p.WaterRecords != nil {
		m.WaterRecords = p.WaterRecords
	}
	if p.BodyRecords != nil {
		m.BodyRecords = p.BodyRecords
	}
	if p.FastingRecords != nil {
		m.FastingRecords = p.FastingRecords
	}
}

// Session identifies the signed-in user.
type Session struct {
	UserID string `json:"userId"`
	Token  string `json:"token,omitempty"`
}
