package models

// Scoreboard is the full state snapshot exchanged with the server. Every
// request to /api/update carries the whole record; missing JSON fields decode
// to zero values and are treated as absent, never as errors.
type Scoreboard struct {
	HomeName  string `json:"homeName"`
	HomeLogo  string `json:"homeLogo"`
	HomeScore int    `json:"homeScore"`
	HomeFouls int    `json:"homeFouls"`
	AwayName  string `json:"awayName"`
	AwayLogo  string `json:"awayLogo"`
	AwayScore int    `json:"awayScore"`
	AwayFouls int    `json:"awayFouls"`

	HomeShort      string `json:"homeShort"`
	AwayShort      string `json:"awayShort"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	Theme          string `json:"theme"`

	// Timer fields are owned by the server's timer engine. The controller
	// mirrors them for display but never writes them through the edit flow.
	Timer        string `json:"timer"`
	Running      bool   `json:"running"`
	HalfLength   int    `json:"halfLength"` // minutes
	Half         int    `json:"half"`
	SidesFlipped bool   `json:"sidesFlipped"`

	QREvery    int `json:"qrEvery"`    // minutes between QR appearances
	QRDuration int `json:"qrDuration"` // seconds the QR stays visible

	// Legacy aliases kept readable for snapshots written by older builds.
	// ResolveLegacy folds them into QREvery/QRDuration once, at load time.
	LegacyQREvery    int `json:"QRShowEveryMinutes,omitempty"`
	LegacyQRDuration int `json:"QRShowDurationSeconds,omitempty"`
}

// MaxFouls is the per-side foul cap shown on the board.
const MaxFouls = 5

// Side identifies one team slot on the board.
type Side string

const (
	Home Side = "home"
	Away Side = "away"
)

// ResolveLegacy applies the legacy QR field aliases as fallback and clears
// them, so the rest of the code only ever reads the current names.
func (s *Scoreboard) ResolveLegacy() {
	if s.QREvery <= 0 && s.LegacyQREvery > 0 {
		s.QREvery = s.LegacyQREvery
	}
	if s.QRDuration <= 0 && s.LegacyQRDuration > 0 {
		s.QRDuration = s.LegacyQRDuration
	}
	s.LegacyQREvery = 0
	s.LegacyQRDuration = 0
}

// Clamp forces score and foul counters back into their legal ranges.
func (s *Scoreboard) Clamp() {
	if s.HomeScore < 0 {
		s.HomeScore = 0
	}
	if s.AwayScore < 0 {
		s.AwayScore = 0
	}
	s.HomeFouls = clampFouls(s.HomeFouls)
	s.AwayFouls = clampFouls(s.AwayFouls)
	if s.Half <= 0 {
		s.Half = 1
	}
}

func clampFouls(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxFouls {
		return MaxFouls
	}
	return n
}

// Name returns the team name for a side.
func (s *Scoreboard) Name(side Side) string {
	if side == Home {
		return s.HomeName
	}
	return s.AwayName
}

// Short returns the short code for a side.
func (s *Scoreboard) Short(side Side) string {
	if side == Home {
		return s.HomeShort
	}
	return s.AwayShort
}

// SetShort assigns the short code for a side.
func (s *Scoreboard) SetShort(side Side, code string) {
	if side == Home {
		s.HomeShort = code
	} else {
		s.AwayShort = code
	}
}

// Logo returns the logo URL for a side.
func (s *Scoreboard) Logo(side Side) string {
	if side == Home {
		return s.HomeLogo
	}
	return s.AwayLogo
}

// BrandColor returns the derived brand color slot for a side: primary for
// home, secondary for away, mirroring how the overlay themes consume them.
func (s *Scoreboard) BrandColor(side Side) string {
	if side == Home {
		return s.PrimaryColor
	}
	return s.SecondaryColor
}

// SetBrandColor assigns the brand color slot for a side.
func (s *Scoreboard) SetBrandColor(side Side, hex string) {
	if side == Home {
		s.PrimaryColor = hex
	} else {
		s.SecondaryColor = hex
	}
}

// Default returns the snapshot a fresh server starts with.
func Default() Scoreboard {
	return Scoreboard{
		HomeName:       "Domácí",
		AwayName:       "Hosté",
		HomeShort:      "DOM",
		AwayShort:      "HOS",
		Timer:          "00:00",
		HalfLength:     45,
		Half:           1,
		Theme:          "pill",
		PrimaryColor:   "#1e3a8a",
		SecondaryColor: "#2563eb",
	}
}
