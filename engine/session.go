package engine

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DateFormat is the date stamp used in data file names and the date column.
const DateFormat = "2006-01-02_15h04.05.000"

// Session identifies one run of the experiment.
type Session struct {
	ID          uuid.UUID
	ExpName     string
	Participant string
	Session     string
	Date        time.Time
	FrameRate   float64
}

// NewSession fills in a random six digit participant id when none is given.
func NewSession(expName, participant, session string, rng *rand.Rand) Session {
	if participant == "" {
		participant = fmt.Sprintf("%06d", rng.IntN(1_000_000))
	}
	return Session{
		ID:          uuid.New(),
		ExpName:     expName,
		Participant: participant,
		Session:     session,
		Date:        time.Now(),
	}
}

func (s Session) DateString() string { return s.Date.Format(DateFormat) }

// Info is appended to every output row.
func (s Session) Info() Row {
	return Row{
		{"participant", s.Participant},
		{"session", s.Session},
		{"date", s.DateString()},
		{"expName", s.ExpName},
		{"frameRate", s.FrameRate},
		{"run_id", s.ID.String()},
	}
}

// DataFileName is the results path without extension.
func (s Session) DataFileName(dataDir string) string {
	return filepath.Join(dataDir, fmt.Sprintf("%s_%s_%s", s.Participant, s.ExpName, s.DateString()))
}
